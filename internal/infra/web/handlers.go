package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainErr maps domain sentinels to HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, "store temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	users, err := s.userUC.Count(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	programs, err := s.catalogUC.ListPrograms(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"total_users":    users,
		"total_programs": len(programs),
	})
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.catalogUC.ListPrograms(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": programs})
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := s.adminUC.CreateProgram(r.Context(), req.Name, req.Position)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListDances(w http.ResponseWriter, r *http.Request) {
	dances, err := s.catalogUC.ListDances(r.Context(), chi.URLParam(r, "programID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": dances})
}

func (s *Server) handleCreateDance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProgramID string `json:"program_id"`
		Name      string `json:"name"`
		Position  int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	d, err := s.adminUC.CreateDance(r.Context(), req.ProgramID, req.Name, req.Position)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListFigures(w http.ResponseWriter, r *http.Request) {
	figures, err := s.catalogUC.ListFigures(r.Context(), chi.URLParam(r, "danceID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": figures})
}

func (s *Server) handleCreateFigure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DanceID  string `json:"dance_id"`
		Name     string `json:"name"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	f, err := s.adminUC.CreateFigure(r.Context(), req.DanceID, req.Name, req.Position)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.catalogUC.ListAuthors(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": authors})
}

func (s *Server) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	a, err := s.adminUC.CreateAuthor(r.Context(), req.Name, req.Source)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthorID string `json:"author_id"`
		Blocks   []struct {
			Kind     string `json:"kind"`
			Text     string `json:"text"`
			Position int    `json:"position"`
		} `json:"blocks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	blocks := make([]usecase.BlockInput, 0, len(req.Blocks))
	for _, b := range req.Blocks {
		blocks = append(blocks, usecase.BlockInput{Kind: b.Kind, Text: b.Text, Position: b.Position})
	}
	v, err := s.adminUC.CreateFigureVersion(r.Context(), chi.URLParam(r, "figureID"), req.AuthorID, blocks)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// handleSetSubscription flips a user's subscription flag. This is the
// manual activation step after an out-of-band payment.
func (s *Server) handleSetSubscription(w http.ResponseWriter, r *http.Request) {
	tgID, err := strconv.ParseInt(chi.URLParam(r, "tgID"), 10, 64)
	if err != nil || tgID <= 0 {
		http.Error(w, "invalid telegram id", http.StatusBadRequest)
		return
	}
	var req struct {
		Subscribed bool `json:"subscribed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.userUC.SetSubscribed(r.Context(), tgID, req.Subscribed); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
