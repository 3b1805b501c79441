package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/orgvault/orgvault/pkg/model"
)

// Service is the part of the orgvault service the API exposes.
type Service interface {
	OrgStructure() model.OrgStructure
	Records() []model.TeamRecord
	TeamMembersForPath(path string) ([]model.MemberRecord, model.MemberBuckets, bool)
	Refresh(ctx context.Context) error
}

// Handler serves the JSON API over a Service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler builds a Handler and registers its routes on the server.
func NewHandler(s *Server, service Service, logger *slog.Logger) *Handler {
	h := &Handler{service: service, logger: logger}
	s.Router.HandleFunc("GET /api/structure", h.getStructure)
	s.Router.HandleFunc("GET /api/teams", h.getTeams)
	s.Router.HandleFunc("GET /api/members", h.getMembers)
	s.Router.HandleFunc("POST /api/refresh", h.postRefresh)
	return h
}

func (h *Handler) getStructure(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.OrgStructure())
}

func (h *Handler) getTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"teams": h.service.Records()})
}

type membersResponse struct {
	Members []model.MemberRecord `json:"members"`
	Buckets model.MemberBuckets  `json:"buckets"`
}

func (h *Handler) getMembers(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeError(w, http.StatusBadRequest, "missing path parameter")
		return
	}
	members, buckets, ok := h.service.TeamMembersForPath(p)
	if !ok {
		writeError(w, http.StatusNotFound, "no team owns this path")
		return
	}
	if members == nil {
		members = []model.MemberRecord{}
	}
	writeJSON(w, http.StatusOK, membersResponse{Members: members, Buckets: buckets})
}

func (h *Handler) postRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.logger.Error("refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
