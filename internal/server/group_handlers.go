package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/middleware"
	"github.com/nexoapp/nexo/internal/models"
)

type groupResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	OwnerID       int64           `json:"ownerId"`
	Members       []string        `json:"members"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	CreatedAt     int64           `json:"createdAt"`
}

func toGroupResponse(g *models.Group) groupResponse {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return groupResponse{
		ID:            g.ID,
		Name:          g.Name,
		OwnerID:       g.OwnerID,
		Members:       members,
		TotalExpenses: g.TotalExpenses,
		CreatedAt:     g.CreatedAt,
	}
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groups, err := s.services.Groups.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		MemberIDs []int64 `json:"memberIds"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	group, err := s.services.Groups.Create(r.Context(), userID, req.Name, req.MemberIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}
