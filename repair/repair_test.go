package repair

import (
	"errors"
	"strings"
	"testing"
)

const decl = `<?xml version="1.0" encoding="UTF-8"?>`

func TestVerifyComplete(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "complete document",
			text: decl + `<svg viewBox="0 0 10 10"><g><rect width="1" height="1"/></g></svg>`,
			want: true,
		},
		{
			name: "missing declaration",
			text: `<svg viewBox="0 0 10 10"></svg>`,
			want: false,
		},
		{
			name: "missing closing svg",
			text: decl + `<svg viewBox="0 0 10 10"><g></g>`,
			want: false,
		},
		{
			name: "unclosed group",
			text: decl + `<svg viewBox="0 0 10 10"><g><rect width="1" height="1"/></svg>`,
			want: false,
		},
		{
			name: "self closing tags do not count as opens",
			text: decl + `<svg><circle r="1"/><rect width="1"/><path d="M0 0"/></svg>`,
			want: true,
		},
		{
			name: "comments ignored",
			text: decl + `<svg><!-- <g> looks like a tag --><rect width="1"/></svg>`,
			want: true,
		},
		{
			name: "no svg at all",
			text: decl + `<html></html>`,
			want: false,
		},
	}
	for _, tt := range tests {
		if got := VerifyComplete(tt.text); got != tt.want {
			t.Errorf("%s: VerifyComplete = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReconcileRestoresDeclarationAndNamespace(t *testing.T) {
	original := decl + "\n" + `<svg xmlns="http://www.w3.org/2000/svg" xmlns:custom="http://example.com/ns" viewBox="0 0 100 100"><rect id="r" width="5" height="5"/></svg>`
	// Model output: no declaration, dropped the custom namespace, kept body.
	candidate := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><rect id="r" width="5" height="5"><animate attributeName="x" to="20" dur="1s"/></rect></svg>`

	out, err := ReconcileRootAttributes(candidate, original)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, decl) {
		t.Errorf("declaration not restored: %q", out[:40])
	}
	if !strings.Contains(out, `xmlns:custom="http://example.com/ns"`) {
		t.Error("custom namespace not restored")
	}
	if !strings.Contains(out, "<animate") {
		t.Error("animated body lost")
	}
}

func TestReconcileOriginalWinsOnSharedKeys(t *testing.T) {
	original := `<svg viewBox="0 0 100 100" width="400"><g/></svg>`
	candidate := `<svg viewBox="0 0 50 50" data-anim="pulse"><g/></svg>`

	out, err := ReconcileRootAttributes(candidate, original)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `viewBox="0 0 100 100"`) {
		t.Errorf("original viewBox did not win: %s", out)
	}
	if strings.Contains(out, `viewBox="0 0 50 50"`) {
		t.Errorf("candidate viewBox survived: %s", out)
	}
	if !strings.Contains(out, `width="400"`) {
		t.Error("original-only attribute dropped")
	}
	if !strings.Contains(out, `data-anim="pulse"`) {
		t.Error("candidate-only attribute dropped")
	}
}

func TestReconcileAppendsClosingTag(t *testing.T) {
	original := `<svg viewBox="0 0 10 10"><rect width="1" height="1"/></svg>`
	candidate := `<svg viewBox="0 0 10 10"><rect width="1" height="1"/>`

	out, err := ReconcileRootAttributes(candidate, original)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, "</svg>") {
		t.Errorf("closing tag not appended: %q", out)
	}
}

func TestReconcileNoOpeningTag(t *testing.T) {
	_, err := ReconcileRootAttributes("I could not generate an animation.", `<svg></svg>`)
	if !errors.Is(err, ErrUnrepairable) {
		t.Fatalf("err = %v, want ErrUnrepairable", err)
	}
}

func TestReconcileSingleQuotedAttrs(t *testing.T) {
	original := `<svg viewBox='0 0 9 9'></svg>`
	candidate := `<svg viewBox='0 0 1 1'></svg>`
	out, err := ReconcileRootAttributes(candidate, original)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `viewBox="0 0 9 9"`) {
		t.Errorf("single-quoted original attr not merged: %s", out)
	}
}

func TestReconcileAttrValuesPassThroughVerbatim(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		candidate string
		want      string
		reject    string
	}{
		{
			name:      "backslash kept",
			original:  `<svg viewBox="0 0 10 10" data-path="C:\icons"></svg>`,
			candidate: `<svg viewBox="0 0 10 10"></svg>`,
			want:      `data-path="C:\icons"`,
			reject:    `C:\\icons`,
		},
		{
			name:      "entity not double escaped",
			original:  `<svg viewBox="0 0 10 10" aria-label="ink &amp; paper"></svg>`,
			candidate: `<svg viewBox="0 0 10 10"></svg>`,
			want:      `aria-label="ink &amp; paper"`,
			reject:    `&amp;amp;`,
		},
		{
			name:      "quote in single-quoted source escaped for double quotes",
			original:  `<svg viewBox="0 0 10 10" data-title='say "hi"'></svg>`,
			candidate: `<svg viewBox="0 0 10 10"></svg>`,
			want:      `data-title="say &quot;hi&quot;"`,
			reject:    `\"`,
		},
	}
	for _, tt := range tests {
		out, err := ReconcileRootAttributes(tt.candidate, tt.original)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: missing %q in %s", tt.name, tt.want, out)
		}
		if strings.Contains(out, tt.reject) {
			t.Errorf("%s: corrupted value %q in %s", tt.name, tt.reject, out)
		}
	}
}

func TestRepairUnclosedGroupIsUnrepairable(t *testing.T) {
	original := decl + `<svg viewBox="0 0 10 10"><rect width="1" height="1"/></svg>`
	candidate := `<svg viewBox="0 0 10 10"><g><rect width="1" height="1"/></svg>`

	_, err := Repair(candidate, original)
	if !errors.Is(err, ErrUnrepairable) {
		t.Fatalf("err = %v, want ErrUnrepairable", err)
	}
}

func TestRepairRoundTripOnGoodOutput(t *testing.T) {
	original := decl + `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect id="r" width="1" height="1"/></svg>`
	candidate := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect id="r" width="1" height="1"><animate attributeName="opacity" to="0" dur="1s"/></rect></svg>`

	out, err := Repair(candidate, original)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyComplete(out) {
		t.Errorf("repaired output does not verify: %s", out)
	}
}

func TestRepairToleratesOriginalWithoutDeclaration(t *testing.T) {
	original := `<svg viewBox="0 0 10 10"><rect id="r" width="1" height="1"/></svg>`
	candidate := `<svg viewBox="0 0 10 10"><rect id="r" width="1" height="1"/></svg>`

	out, err := Repair(candidate, original)
	if err != nil {
		t.Fatalf("repair of declaration-less original failed: %v", err)
	}
	if strings.Contains(out, "<?xml") {
		t.Errorf("declaration invented from nowhere: %s", out)
	}
}
