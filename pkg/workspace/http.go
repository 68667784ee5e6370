package workspace

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	// Standard Methods
	mux.HandleFunc("GET /api/cases", s.handleListCases)
	mux.HandleFunc("GET /api/cases/{id}", s.handleGetCase)
	// Custom Methods - dispatched via POST /api/cases/{id} because {id}:suffix is not supported by ServeMux
	mux.HandleFunc("POST /api/cases/{id}", s.handleCaseOps)

	// Config and live updates
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("GET /api/ws", s.Hub.HandleWS)
}

func (s *Service) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.ListCases(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cases)
}

// handleGetCase handles GET /api/cases/{id}
func (s *Service) handleGetCase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "ID required", http.StatusBadRequest)
		return
	}

	c, err := s.GetCase(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// handleCaseOps dispatches custom POST methods
func (s *Service) handleCaseOps(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	id, op, _ := strings.Cut(id, ":")
	r.SetPathValue("id", id)

	switch op {
	case "grade":
		s.handleGradeCase(w, r)
	default:
		http.Error(w, "Unknown method", http.StatusNotFound)
	}
}

// handleGradeCase handles POST /api/cases/{id}:grade
func (s *Service) handleGradeCase(w http.ResponseWriter, r *http.Request) {
	run, err := s.Grade(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func (s *Service) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Config{
		Model:    s.Config.Model,
		FHIRBase: s.Backend.Base(),
		Tasks:    s.registry.Tasks(),
	})
}
