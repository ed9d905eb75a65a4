package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/logging"
	"github.com/dygy/codegroove/internal/playback"
	"github.com/dygy/codegroove/internal/render"
	"github.com/dygy/codegroove/internal/strudel"
)

// composeRequest is the body accepted by every compose/render endpoint.
type composeRequest struct {
	Source string `json:"source"`
	Scale  string `json:"scale,omitempty"`
	Kit    string `json:"kit,omitempty"`
	Style  string `json:"style,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type scaleResponse struct {
	Name  string   `json:"name"`
	Notes []string `json:"notes"`
}

// optionsResponse lists the values accepted by the render endpoints.
type optionsResponse struct {
	Kits       []optionEntry `json:"kits"`
	DefaultKit string        `json:"defaultKit"`
	Styles     []optionEntry `json:"styles"`
	Formats    []formatEntry `json:"formats"`
}

type optionEntry struct {
	Name        string `json:"name"`
	Bank        string `json:"bank,omitempty"`
	Description string `json:"description"`
}

type formatEntry struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Extension   string `json:"extension"`
}

type sessionResponse struct {
	ID          string             `json:"id"`
	State       playback.State     `json:"state"`
	BPM         int                `json:"bpm"`
	StepSeconds float64            `json:"stepSeconds"`
	LoopEnd     string             `json:"loopEnd"`
	LoopSeconds float64            `json:"loopSeconds"`
	Triggers    []playback.Trigger `json:"triggers"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScales lists the registered scales
func (s *Server) handleScales(w http.ResponseWriter, r *http.Request) {
	all := s.scales.All()
	out := make([]scaleResponse, len(all))
	for i, sc := range all {
		out[i] = scaleResponse{Name: sc.Name, Notes: sc.Notes}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleKits lists drum kits, melody styles and render formats
func (s *Server) handleKits(w http.ResponseWriter, r *http.Request) {
	out := optionsResponse{DefaultKit: string(strudel.ParseDrumKit(s.config.DrumKit))}
	for _, k := range strudel.DrumKits() {
		out.Kits = append(out.Kits, optionEntry{Name: string(k), Bank: k.Bank(), Description: k.Description()})
	}
	for _, st := range strudel.Styles() {
		out.Styles = append(out.Styles, optionEntry{Name: string(st), Description: st.Description()})
	}
	for _, f := range render.Formats() {
		out.Formats = append(out.Formats, formatEntry{Name: string(f), ContentType: f.ContentType(), Extension: f.Extension()})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCompose returns the composition as JSON
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	_, c, err := s.compose(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRenderStrudel(w http.ResponseWriter, r *http.Request) {
	s.handleRender(w, r, render.FormatStrudel)
}

func (s *Server) handleRenderMIDI(w http.ResponseWriter, r *http.Request) {
	s.handleRender(w, r, render.FormatMIDI)
}

// handleRender renders the composition in the requested format
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request, format render.Format) {
	req, c, err := s.compose(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kit := req.Kit
	if kit == "" {
		kit = s.config.DrumKit
	}
	opts := render.Options{
		Kit:   strudel.ParseDrumKit(kit),
		Style: strudel.SoundStyle(req.Style),
	}

	// Render into a buffer so a failure can still produce an error status.
	var buf bytes.Buffer
	if err := render.Render(&buf, format, c, opts); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == render.FormatMIDI {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"codegroove%s\"", format.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleCreateSession composes the source and registers a playback session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	_, c, err := s.compose(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.sessions.Create(c)
	logging.FromContext(r.Context()).Info("session created",
		"session_id", sess.ID, "bpm", sess.BPM(), "events", len(c.Events))

	resp, err := newSessionResponse(sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, resp)
}

// handleGetSession returns a session's trigger plan
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := newSessionResponse(sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteSession stops and disposes a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("session stopped", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// compose decodes the request body and runs the composition.
func (s *Server) compose(r *http.Request) (composeRequest, compose.Composition, error) {
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, compose.Composition{}, fmt.Errorf("%w: limit is %d bytes", cgerrors.ErrSourceTooLarge, maxErr.Limit)
		}
		return req, compose.Composition{}, badRequest{fmt.Errorf("invalid JSON body: %w", err)}
	}

	scale, err := s.scales.Lookup(req.Scale)
	if err != nil {
		return req, compose.Composition{}, err
	}
	return req, compose.Compose(req.Source, scale), nil
}

func newSessionResponse(sess *playback.Session) (sessionResponse, error) {
	triggers, err := sess.Triggers()
	if err != nil {
		return sessionResponse{}, err
	}
	return sessionResponse{
		ID:          sess.ID,
		State:       sess.State(),
		BPM:         sess.BPM(),
		StepSeconds: sess.StepDuration().Seconds(),
		LoopEnd:     sess.LoopEnd().String(),
		LoopSeconds: sess.LoopDuration().Seconds(),
		Triggers:    triggers,
		CreatedAt:   sess.CreatedAt.UTC(),
	}, nil
}

// badRequest marks malformed input that has no sentinel of its own.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.Is(err, cgerrors.ErrSourceTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, cgerrors.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, cgerrors.ErrSessionStopped):
		return http.StatusGone
	case cgerrors.IsClientError(err), errors.As(err, &br):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it as a JSON error body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.FromContext(r.Context())

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "error", err)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	} else {
		logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		RequestID: w.Header().Get(requestIDHeader),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
