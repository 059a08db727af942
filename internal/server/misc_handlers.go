package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/middleware"
	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/receipt"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notifications, err := s.services.Notifications.List(r.Context(), userID, 50)
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification id"})
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.services.Notifications.MarkRead(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "marked read"})
}

type budgetResponse struct {
	ID       int64           `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Spent    decimal.Decimal `json:"spent"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	budgets, err := s.services.Budgets.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = budgetResponse{ID: b.ID, Category: b.Category, Limit: b.Limit, Spent: b.Spent}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string          `json:"category"`
		Limit    decimal.Decimal `json:"limit"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	budget, err := s.services.Budgets.Create(r.Context(), &models.Budget{
		UserID:   userID,
		Category: req.Category,
		Limit:    req.Limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, budgetResponse{
		ID: budget.ID, Category: budget.Category, Limit: budget.Limit, Spent: budget.Spent,
	})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	badges, err := s.services.Badges.ForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if badges.Badges == nil {
		badges.Badges = []string{}
	}
	writeJSON(w, http.StatusOK, badges)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.services.Badges.Leaderboard(r.Context(), 10)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleScanReceipt parses OCR-extracted receipt text into expense fields.
// The client runs the OCR; we only get the text.
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}

	writeJSON(w, http.StatusOK, receipt.ParseText(req.Text))
}
