package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/middleware"
	"github.com/nexoapp/nexo/internal/models"
)

type splitRequest struct {
	UserID int64           `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	PaidBy      int64           `json:"paidBy"`
	GroupID     *int64          `json:"groupId"`
	BudgetID    *int64          `json:"budgetId"`
	Splits      []splitRequest  `json:"splits"`
}

func (req expenseRequest) toModel(defaultPayer int64) *models.Expense {
	expense := &models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
		PaidBy:      req.PaidBy,
		GroupID:     req.GroupID,
		BudgetID:    req.BudgetID,
	}
	if expense.PaidBy == 0 {
		expense.PaidBy = defaultPayer
	}
	for _, split := range req.Splits {
		expense.Splits = append(expense.Splits, models.Split{
			UserID:     split.UserID,
			AmountOwed: split.Amount,
		})
	}
	return expense
}

type splitResponse struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Username   string          `json:"username,omitempty"`
	AmountOwed decimal.Decimal `json:"amountOwed"`
	Original   decimal.Decimal `json:"originalAmount"`
}

type expenseResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	PaidBy      int64           `json:"paidBy"`
	GroupID     *int64          `json:"groupId,omitempty"`
	BudgetID    *int64          `json:"budgetId,omitempty"`
	Splits      []splitResponse `json:"splits"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	out := expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		PaidBy:      e.PaidBy,
		GroupID:     e.GroupID,
		BudgetID:    e.BudgetID,
		Splits:      make([]splitResponse, len(e.Splits)),
	}
	for i, split := range e.Splits {
		out.Splits[i] = splitResponse{
			ID:         split.ID,
			UserID:     split.UserID,
			Username:   split.Username,
			AmountOwed: split.AmountOwed,
			Original:   split.Original,
		}
	}
	return out
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	expenses, err := s.services.Expenses.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	expense, err := s.services.Expenses.Create(r.Context(), req.toModel(userID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense id"})
		return
	}

	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	expense := req.toModel(userID)
	expense.ID = id

	updated, err := s.services.Expenses.Update(r.Context(), expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense id"})
		return
	}

	if err := s.services.Expenses.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	summary, err := s.services.Expenses.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalPaid": summary.TotalPaid,
		"totalOwed": summary.TotalOwed,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	dashboard, err := s.services.Expenses.GetDashboard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	recent := make([]expenseResponse, len(dashboard.RecentExpenses))
	for i, e := range dashboard.RecentExpenses {
		recent[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"friendCount":    dashboard.FriendCount,
		"groupCount":     dashboard.GroupCount,
		"recentExpenses": recent,
	})
}
