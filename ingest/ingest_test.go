package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/rliebert/renaissance-ink/svgdoc"
)

func TestInlineSVGFromPage(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head><title>t</title></head><body>
<p>intro</p>
<svg viewBox="0 0 100 100"><circle id="a" cx="50" cy="50" r="10"></circle></svg>
<p>outro</p>
</body></html>`

	out, err := InlineSVG(page)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<svg") {
		t.Fatalf("output does not start with <svg: %q", out)
	}
	if strings.Contains(out, "<p>") {
		t.Errorf("surrounding html leaked: %q", out)
	}
	// The extracted text must feed straight into the pipeline.
	doc, err := svgdoc.Parse(out)
	if err != nil {
		t.Fatalf("extracted svg does not parse: %v", err)
	}
	if doc.FindByID("a") == nil {
		t.Error("circle id lost in extraction")
	}
	// Foreign-content attribute casing survives the HTML parser.
	if !strings.Contains(out, "viewBox") {
		t.Errorf("viewBox casing mangled: %q", out)
	}
}

func TestInlineSVGBareDocument(t *testing.T) {
	out, err := InlineSVG(`<svg viewBox="0 0 5 5"><rect id="r" width="1" height="1"></rect></svg>`)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := svgdoc.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if doc.FindByID("r") == nil {
		t.Error("rect lost")
	}
}

func TestInlineSVGAbsent(t *testing.T) {
	_, err := InlineSVG(`<html><body><p>no vector art here</p></body></html>`)
	if !errors.Is(err, ErrNoSVG) {
		t.Fatalf("err = %v, want ErrNoSVG", err)
	}
}
