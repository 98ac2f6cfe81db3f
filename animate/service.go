// Package animate orchestrates the generation pipeline: preview extraction,
// model calls, fragment splicing, output repair and record persistence. It is
// the only package that sees the whole round trip; everything below it is a
// pure transformation.
package animate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rliebert/renaissance-ink/extract"
	"github.com/rliebert/renaissance-ink/kit"
	"github.com/rliebert/renaissance-ink/llm"
	"github.com/rliebert/renaissance-ink/observability"
	"github.com/rliebert/renaissance-ink/record"
	"github.com/rliebert/renaissance-ink/repair"
	"github.com/rliebert/renaissance-ink/splice"
	"github.com/rliebert/renaissance-ink/svgdoc"
)

// Service runs preview and generation requests over an injected Generator.
type Service struct {
	cfg       Config
	generator llm.Generator
	records   *record.Store
	events    *observability.EventLogger
}

// New creates a Service. records is required; events may be nil to disable
// event logging.
func New(generator llm.Generator, records *record.Store, events *observability.EventLogger, cfg Config) *Service {
	cfg.defaults()
	return &Service{
		cfg:       cfg,
		generator: generator,
		records:   records,
		events:    events,
	}
}

// PreviewRequest asks for a minimal standalone document containing only the
// selected elements.
type PreviewRequest struct {
	SVG         string   `json:"svg"`
	SelectedIDs []string `json:"selected_ids"`
}

// PreviewResponse carries the preview document and the geometry decisions
// behind it.
type PreviewResponse struct {
	SVG       string        `json:"svg"`
	Debug     extract.Debug `json:"debug"`
	InputSize int           `json:"input_size"`
}

// GenerateRequest asks for animation of the named elements per the free-text
// description. ReferenceIDs are kept static and serve only as spatial anchors.
type GenerateRequest struct {
	SVG          string     `json:"svg"`
	Description  string     `json:"description"`
	AnimateIDs   []string   `json:"animate_ids"`
	ReferenceIDs []string   `json:"reference_ids,omitempty"`
	History      []llm.Turn `json:"history,omitempty"`
}

// GenerateResponse is a successful generation.
type GenerateResponse struct {
	RecordID    string         `json:"record_id"`
	SVG         string         `json:"svg"`
	Explanation string         `json:"explanation,omitempty"`
	Parameters  llm.Parameters `json:"parameters"`
	Report      *splice.Report `json:"report,omitempty"`
	InputSize   int            `json:"input_size"`
}

// Preview parses and sanitizes the document, then extracts the selection into
// a standalone preview.
func (s *Service) Preview(ctx context.Context, req *PreviewRequest) (*PreviewResponse, error) {
	start := time.Now()

	doc, err := svgdoc.Parse(req.SVG)
	if err != nil {
		s.logEvent(ctx, "preview", "", req.SelectedIDs, start, err)
		return nil, err
	}
	svgdoc.Sanitize(doc)

	res, err := extract.Extract(doc, req.SelectedIDs, extract.Options{Padding: s.cfg.Padding})
	if err != nil {
		s.logEvent(ctx, "preview", "", req.SelectedIDs, start, err)
		return nil, err
	}

	s.logEvent(ctx, "preview", "", req.SelectedIDs, start, nil)
	return &PreviewResponse{
		SVG:       res.SVG,
		Debug:     res.Debug,
		InputSize: doc.InputSize(),
	}, nil
}

// Generate runs the full pipeline: sanitize the original, extract the subset,
// call the model, splice or repair the result, persist a record. A failed
// generation still persists a record carrying the error and the untouched
// original, then returns the error.
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	doc, err := svgdoc.Parse(req.SVG)
	if err != nil {
		s.logEvent(ctx, "generate", "", req.AnimateIDs, start, err)
		return nil, err
	}
	svgdoc.Sanitize(doc)
	originalText, err := doc.Serialize()
	if err != nil {
		rec := &record.Record{
			OriginalSVG:  req.SVG,
			Description:  req.Description,
			SelectedIDs:  req.AnimateIDs,
			ReferenceIDs: req.ReferenceIDs,
			Transcript:   appendTurn(req.History, "user", req.Description),
		}
		return nil, s.fail(ctx, rec, req.AnimateIDs, start, err)
	}

	// The model sees only the selection, never the full upload.
	subsetIDs := append(append([]string{}, req.AnimateIDs...), req.ReferenceIDs...)
	subset, err := extract.Extract(doc, subsetIDs, extract.Options{Padding: s.cfg.Padding})
	if err != nil {
		s.logEvent(ctx, "generate", "", req.AnimateIDs, start, err)
		return nil, err
	}

	rec := &record.Record{
		OriginalSVG:  originalText,
		Description:  req.Description,
		SelectedIDs:  req.AnimateIDs,
		ReferenceIDs: req.ReferenceIDs,
		Transcript:   appendTurn(req.History, "user", req.Description),
	}

	resp, err := s.generator.Generate(ctx, &llm.Request{
		SubsetSVG:    subset.SVG,
		Description:  req.Description,
		AnimateIDs:   req.AnimateIDs,
		ReferenceIDs: req.ReferenceIDs,
		History:      req.History,
	})
	if err != nil {
		return nil, s.fail(ctx, rec, req.AnimateIDs, start, err)
	}

	var animated string
	var report *splice.Report
	if resp.FullSVG != "" {
		// The model ignored the structured contract and returned a whole
		// document; salvage it against the original envelope.
		animated, err = repair.Repair(resp.FullSVG, originalText)
		if err != nil {
			return nil, s.fail(ctx, rec, req.AnimateIDs, start, err)
		}
	} else {
		var spliced string
		spliced, report, err = splice.Splice(originalText, resp.Animations)
		if err != nil {
			return nil, s.fail(ctx, rec, req.AnimateIDs, start, err)
		}
		animated, err = repair.Repair(spliced, originalText)
		if err != nil {
			return nil, s.fail(ctx, rec, req.AnimateIDs, start, err)
		}
	}

	rec.AnimatedSVG = animated
	rec.Parameters = resp.Parameters
	rec.Transcript = appendTurn(rec.Transcript, "model", resp.Explanation)
	if err := s.records.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("animate: persist record: %w", err)
	}

	s.logEvent(ctx, "generate", rec.RecordID, req.AnimateIDs, start, nil)
	return &GenerateResponse{
		RecordID:    rec.RecordID,
		SVG:         animated,
		Explanation: resp.Explanation,
		Parameters:  resp.Parameters,
		Report:      report,
		InputSize:   doc.InputSize(),
	}, nil
}

// Latest returns the most recent generation record.
func (s *Service) Latest(ctx context.Context) (*record.Record, error) {
	return s.records.Latest(ctx)
}

// fail persists a failure record with the original intact and returns err.
func (s *Service) fail(ctx context.Context, rec *record.Record, ids []string, start time.Time, err error) error {
	rec.Error = err.Error()
	if saveErr := s.records.Save(ctx, rec); saveErr != nil {
		s.cfg.Logger.Error("failure record not persisted", "error", saveErr)
	}
	s.logEvent(ctx, "generate", rec.RecordID, ids, start, err)
	return err
}

func (s *Service) logEvent(ctx context.Context, stage, recordID string, ids []string, start time.Time, err error) {
	if s.events == nil {
		return
	}
	ev := observability.GenerationEvent{
		RecordID:   recordID,
		Stage:      stage,
		Transport:  kit.GetTransport(ctx),
		ElementIDs: strings.Join(ids, ","),
		Duration:   time.Since(start),
		Success:    err == nil,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	s.events.LogEvent(ctx, ev)
}

func appendTurn(history []llm.Turn, role, content string) []llm.Turn {
	if content == "" {
		return history
	}
	out := append(append([]llm.Turn{}, history...), llm.Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	})
	return out
}
