package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/middleware"
	"github.com/nexoapp/nexo/internal/models"
)

type reminderResponse struct {
	ID          int64           `json:"id"`
	FriendID    int64           `json:"friendId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	DueDate     string          `json:"dueDate,omitempty"`
	Paid        bool            `json:"paid"`
	CreatedAt   int64           `json:"createdAt"`
}

func toReminderResponse(r *models.Reminder) reminderResponse {
	return reminderResponse{
		ID:          r.ID,
		FriendID:    r.FriendID,
		Amount:      r.Amount,
		Description: r.Description,
		DueDate:     r.DueDate,
		Paid:        r.Paid,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	reminders, err := s.services.Reminders.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]reminderResponse, len(reminders))
	for i, rem := range reminders {
		out[i] = toReminderResponse(rem)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FriendID    int64           `json:"friendId"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		DueDate     string          `json:"dueDate"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	reminder, err := s.services.Reminders.Create(r.Context(), &models.Reminder{
		UserID:      userID,
		FriendID:    req.FriendID,
		Amount:      req.Amount,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReminderResponse(reminder))
}

func (s *Server) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reminder id"})
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.services.Reminders.Send(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reminder sent"})
}

func (s *Server) handlePayReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reminder id"})
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := s.services.Reminders.Pay(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	updated := result.SplitsUpdated
	if updated == nil {
		updated = []models.SplitUpdate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"newBalance":    result.NewBalance,
		"splitsUpdated": updated,
	})
}

func (s *Server) handleMarkReminderPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reminder id"})
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.services.Reminders.MarkPaid(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reminder marked paid"})
}
