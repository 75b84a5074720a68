package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gemini_chat/pkg/chat"
)

type sendRequest struct {
	Content string `json:"content"`
}

type sendResponse struct {
	Messages []chat.Message `json:"messages"`
	Error    string         `json:"error,omitempty"`
}

type settingsResponse struct {
	chat.Settings
	Models []string `json:"models"`
}

type statusResponse struct {
	State         string `json:"state"`
	InFlight      bool   `json:"inFlight"`
	Error         string `json:"error,omitempty"`
	HasCredential bool   `json:"hasCredential"`
	Attachment    string `json:"attachment,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("http_write_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// sendStatus maps the precondition errors of a send to HTTP status codes.
func sendStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrEmptyDraft):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, chat.ErrMissingCredential):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, _ *http.Request) {
	msgs := s.session.Messages()
	if msgs == nil {
		msgs = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	turn, err := s.session.BeginWith(req.Content)
	if err != nil {
		writeError(w, sendStatus(err), err.Error())
		return
	}

	// A client that goes away does not cancel the request.
	reply, err := s.session.Resolve(context.WithoutCancel(r.Context()), turn)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := sendResponse{Messages: []chat.Message{turn.User, reply}}
	if reply.Content == chat.FallbackReply {
		if lastErr := s.session.LastError(); lastErr != nil {
			resp.Error = lastErr.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearMessages(w http.ResponseWriter, _ *http.Request) {
	if err := s.session.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes)
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, `missing "file" field`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if kind := http.DetectContentType(data); !strings.HasPrefix(kind, "image/") {
		writeError(w, http.StatusUnsupportedMediaType, "file is not an image: "+kind)
		return
	}
	if err := s.session.Attach(header.Filename, data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": header.Filename})
}

func (s *Server) handleDetach(w http.ResponseWriter, _ *http.Request) {
	s.session.Detach()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{Settings: s.session.Settings(), Models: s.session.Models()})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	// Missing fields keep their current value.
	next := s.session.Settings()
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.session.ApplySettings(next); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("settings_applied", "model", next.Model, "temperature", next.Temperature, "dark_mode", next.DarkMode)
	writeJSON(w, http.StatusOK, settingsResponse{Settings: s.session.Settings(), Models: s.session.Models()})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		State:         s.session.State().String(),
		InFlight:      s.session.InFlight(),
		HasCredential: s.session.HasCredential(),
	}
	if err := s.session.LastError(); err != nil {
		resp.Error = err.Error()
	}
	if name, ok := s.session.Attachment(); ok {
		resp.Attachment = name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDismissError(w http.ResponseWriter, _ *http.Request) {
	s.session.DismissError()
	w.WriteHeader(http.StatusNoContent)
}
