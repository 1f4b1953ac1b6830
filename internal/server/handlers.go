package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/insight/internal/dataset"
	"github.com/roach88/insight/internal/insight"
	"github.com/roach88/insight/internal/ir"
)

type resultResponse struct {
	Result any `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAddDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind, err := ir.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	records, err := dataset.Decode(kind, body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ids, err := s.facade.AddDataset(r.Context(), id, kind, records)
	if err != nil {
		s.writeError(w, statusFor(err, http.StatusBadRequest), err)
		return
	}
	s.writeJSON(w, http.StatusOK, resultResponse{Result: ids})
}

func (s *Server) handleRemoveDataset(w http.ResponseWriter, r *http.Request) {
	removed, err := s.facade.RemoveDataset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err, http.StatusNotFound), err)
		return
	}
	s.writeJSON(w, http.StatusOK, resultResponse{Result: removed})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := s.facade.ListDatasets(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resultResponse{Result: infos})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("malformed query JSON: %w", err))
		return
	}

	rows, err := s.facade.PerformQuery(r.Context(), raw)
	if err != nil {
		// Unknown datasets are a bad query, not a missing resource.
		s.writeError(w, statusFor(err, http.StatusBadRequest), err)
		return
	}
	if rows == nil {
		rows = []ir.Record{}
	}
	s.writeJSON(w, http.StatusOK, resultResponse{Result: rows})
}

func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	msg := chi.URLParam(r, "msg")
	s.writeJSON(w, http.StatusOK, resultResponse{Result: msg + "..." + msg})
}

// statusFor maps an error class to an HTTP status. notFound is the status
// used for ClassNotFound, which differs between routes.
func statusFor(err error, notFound int) int {
	switch insight.Classify(err) {
	case insight.ClassInvalid, insight.ClassTooLarge:
		return http.StatusBadRequest
	case insight.ClassNotFound:
		return notFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.New("request body is empty")
	}
	return body, nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}
