package animate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rliebert/renaissance-ink/extract"
	"github.com/rliebert/renaissance-ink/ingest"
	"github.com/rliebert/renaissance-ink/llm"
	"github.com/rliebert/renaissance-ink/record"
	"github.com/rliebert/renaissance-ink/repair"
	"github.com/rliebert/renaissance-ink/splice"
	"github.com/rliebert/renaissance-ink/svgdoc"
)

// RegisterHTTP registers the service endpoints on the router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Post("/api/v1/preview", s.handlePreview)
	r.Post("/api/v1/animate", s.handleAnimate)
	r.Get("/api/v1/animations/latest", s.handleLatest)
	r.Get("/healthz", s.handleHealthz)
}

func (s *Service) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.SVG == "" {
		writeError(w, http.StatusBadRequest, "svg required")
		return
	}
	if len(req.SelectedIDs) == 0 {
		writeError(w, http.StatusBadRequest, "selected_ids required")
		return
	}
	if !s.inlineIfHTML(w, &req.SVG) {
		return
	}

	resp, err := s.Preview(r.Context(), &req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleAnimate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.SVG == "" {
		writeError(w, http.StatusBadRequest, "svg required")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description required")
		return
	}
	if len(req.AnimateIDs) == 0 {
		writeError(w, http.StatusBadRequest, "animate_ids required")
		return
	}
	if !s.inlineIfHTML(w, &req.SVG) {
		return
	}

	resp, err := s.Generate(r.Context(), &req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleLatest(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Latest(r.Context())
	if errors.Is(err, record.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no animations recorded")
		return
	}
	if err != nil {
		s.cfg.Logger.Error("latest record lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, latestResponse(rec))
}

func (s *Service) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes the JSON request body with the configured size cap.
func (s *Service) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxSVGBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// inlineIfHTML replaces a pasted HTML page with its first inline SVG. Text
// already starting with SVG markup passes through untouched.
func (s *Service) inlineIfHTML(w http.ResponseWriter, svg *string) bool {
	if _, err := svgdoc.Parse(*svg); err == nil {
		return true
	}
	inlined, err := ingest.InlineSVG(*svg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no svg element found in input")
		return false
	}
	*svg = inlined
	return true
}

func latestResponse(rec *record.Record) map[string]any {
	return map[string]any{
		"record_id":     rec.RecordID,
		"created_at":    rec.CreatedAt.Unix(),
		"description":   rec.Description,
		"selected_ids":  rec.SelectedIDs,
		"reference_ids": rec.ReferenceIDs,
		"animated_svg":  rec.AnimatedSVG,
		"error":         rec.Error,
		"parameters":    rec.Parameters,
		"transcript":    rec.Transcript,
	}
}

// writeFailure maps pipeline sentinels to HTTP statuses: malformed input is
// the caller's fault (400), an empty selection is a lookup miss (404),
// unusable model output that we could not salvage is 422, and an undecodable
// model response is an upstream failure (502).
func (s *Service) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svgdoc.ErrParse), errors.Is(err, svgdoc.ErrStructure),
		errors.Is(err, ingest.ErrNoSVG):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, extract.ErrNoElements):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, splice.ErrFragment), errors.Is(err, repair.ErrUnrepairable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, llm.ErrDecode):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.cfg.Logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
