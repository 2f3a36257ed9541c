package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tutorials/internal/middleware"
	"tutorials/internal/model"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleList serves GET /api/tutorials. A title query parameter, even an
// empty one, switches to the title filter.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		tutorials []model.Tutorial
		err       error
	)
	if _, ok := r.URL.Query()["title"]; ok {
		tutorials, err = s.svc.ListByTitle(r.Context(), r.URL.Query().Get("title"))
	} else {
		tutorials, err = s.svc.List(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err, "Failed to list tutorials")
		return
	}

	writeList(w, tutorials)
}

// handlePublished serves GET /api/tutorials/published[?published=false].
func (s *Server) handlePublished(w http.ResponseWriter, r *http.Request) {
	published := true
	if raw := r.URL.Query().Get("published"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "published must be a boolean"})
			return
		}
		published = v
	}

	tutorials, err := s.svc.ListByPublished(r.Context(), published)
	if err != nil {
		s.writeError(w, r, err, "Failed to list tutorials")
		return
	}

	writeList(w, tutorials)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tutorial, found, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "Failed to fetch tutorial")
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "tutorial not found"})
		return
	}

	writeJSON(w, http.StatusOK, tutorial)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	tutorial, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, "Failed to create tutorial")
		return
	}

	writeJSON(w, http.StatusCreated, tutorial)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	tutorial, found, err := s.svc.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err, "Failed to update tutorial")
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "tutorial not found"})
		return
	}

	writeJSON(w, http.StatusOK, tutorial)
}

// handleDelete maps a failed delete to 404; the service does not say why.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if !s.svc.Delete(r.Context(), id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "tutorial not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAll(r.Context()); err != nil {
		s.writeError(w, r, err, "Failed to delete tutorials")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError logs err and answers 500 without leaking its text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	s.logger.Error(msg,
		zap.Error(err),
		zap.String("request_id", middleware.RequestIDFrom(r.Context())),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (model.TutorialInput, bool) {
	var in model.TutorialInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return model.TutorialInput{}, false
	}
	return in, true
}

// writeList answers 204 for an empty result, 200 with the array otherwise.
func writeList(w http.ResponseWriter, tutorials []model.Tutorial) {
	if len(tutorials) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, tutorials)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
