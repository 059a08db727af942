package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/middleware"
	"github.com/nexoapp/nexo/internal/models"
)

type transactionResponse struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	CreatedAt   int64           `json:"createdAt"`
}

func toTransactionResponse(t *models.WalletTransaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		Reference:   t.Reference,
		CreatedAt:   t.CreatedAt,
	}
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	view, err := s.services.Wallet.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	transactions := make([]transactionResponse, len(view.Transactions))
	for i, t := range view.Transactions {
		transactions[i] = toTransactionResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":      view.Balance,
		"currency":     view.Currency,
		"transactions": transactions,
	})
}

func (s *Server) handleWalletTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	transactions, err := s.services.Wallet.Transactions(r.Context(), userID, 50)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]transactionResponse, len(transactions))
	for i, t := range transactions {
		out[i] = toTransactionResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	wallet, txn, err := s.services.Wallet.Credit(r.Context(), userID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":     wallet.Balance,
		"transaction": toTransactionResponse(txn),
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	wallet, txn, err := s.services.Wallet.Debit(r.Context(), userID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":     wallet.Balance,
		"transaction": toTransactionResponse(txn),
	})
}

func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		FriendID    int64           `json:"friendId"`
		Description string          `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := s.services.Wallet.PayDebt(r.Context(), userID, req.FriendID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	updated := result.SplitsUpdated
	if updated == nil {
		updated = []models.SplitUpdate{}
	}
	body := map[string]any{
		"newBalance":    result.NewBalance,
		"splitsUpdated": updated,
	}
	if result.Transaction != nil {
		body["transaction"] = toTransactionResponse(result.Transaction)
	}
	writeJSON(w, http.StatusOK, body)
}
