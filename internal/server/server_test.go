package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/nexoapp/nexo/internal/auth"
	"github.com/nexoapp/nexo/internal/events"
	"github.com/nexoapp/nexo/internal/service"
	"github.com/nexoapp/nexo/internal/storage/sqlite"
	"github.com/nexoapp/nexo/internal/ws"
)

// newTestServer stands up the full router over a real sqlite store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	hub := ws.NewHub(slog.Default(), func(*http.Request) bool { return true })

	notifications := service.NewNotificationService(store, events.Discard{})
	wallet := service.NewWalletService(store, notifications)

	services := Services{
		Auth:          service.NewAuthService(authenticator, jwtManager, store, slog.Default()),
		Expenses:      service.NewExpenseService(store, notifications),
		Wallet:        wallet,
		Friends:       service.NewFriendService(store),
		Groups:        service.NewGroupService(store),
		Reminders:     service.NewReminderService(store, wallet, notifications),
		Notifications: notifications,
		Budgets:       service.NewBudgetService(store),
		Badges:        service.NewBadgeService(store),
	}

	server := httptest.NewServer(New(services, jwtManager, hub, []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		// Array bodies are wrapped so callers always get a map.
		if raw[0] == '[' {
			var list []any
			if err := json.Unmarshal(raw, &list); err != nil {
				t.Fatalf("bad array response %s: %v", raw, err)
			}
			decoded = map[string]any{"items": list}
		} else if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("bad response %s: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func signup(t *testing.T, server *httptest.Server, username, email string) (int64, string) {
	t.Helper()
	status, body := doJSON(t, server, http.MethodPost, "/api/signup", "", map[string]any{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %v", status, body)
	}
	user := body["user"].(map[string]any)
	return int64(user["id"].(float64)), body["token"].(string)
}

func TestAPI_AuthFlow(t *testing.T) {
	server := newTestServer(t)

	_, token := signup(t, server, "alice", "alice@api.test")

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodGet, "/api/wallet", "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/signup", "", map[string]any{
			"username": "alice2", "email": "alice@api.test", "password": "password123",
		})
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/login", "", map[string]any{
			"email": "alice@api.test", "password": "wrong-password",
		})
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("check-session returns the user", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/check-session", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		user := body["user"].(map[string]any)
		if user["email"] != "alice@api.test" {
			t.Errorf("email = %v, want alice@api.test", user["email"])
		}
	})
}

func TestAPI_SettlementFlow(t *testing.T) {
	server := newTestServer(t)

	aliceID, aliceToken := signup(t, server, "alice", "alice@settle.test")
	bobID, bobToken := signup(t, server, "bob", "bob@settle.test")

	// Alice fronts two expenses for bob: 50 on Jan 1, 30 on Jan 5.
	for _, exp := range []map[string]any{
		{"description": "groceries", "amount": 50, "date": "2025-01-01",
			"splits": []map[string]any{{"userId": bobID, "amount": 50}}},
		{"description": "dinner", "amount": 30, "date": "2025-01-05",
			"splits": []map[string]any{{"userId": bobID, "amount": 30}}},
	} {
		status, body := doJSON(t, server, http.MethodPost, "/api/expenses", aliceToken, exp)
		if status != http.StatusCreated {
			t.Fatalf("create expense status = %d, body = %v", status, body)
		}
	}

	status, _ := doJSON(t, server, http.MethodPost, "/api/wallet/add-funds", bobToken, map[string]any{
		"amount": 100,
	})
	if status != http.StatusOK {
		t.Fatalf("add-funds status = %d", status)
	}

	t.Run("balance shows bob owes alice", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet,
			fmt.Sprintf("/api/friends/%d/balance", bobID), aliceToken, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if body["netBalance"] != "80" {
			t.Errorf("netBalance = %v, want 80", body["netBalance"])
		}
	})

	t.Run("pay-debt settles oldest first", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodPost, "/api/wallet/pay-debt", bobToken, map[string]any{
			"amount": 60, "friendId": aliceID,
		})
		if status != http.StatusOK {
			t.Fatalf("status = %d, body = %v", status, body)
		}
		if body["newBalance"] != "40" {
			t.Errorf("newBalance = %v, want 40", body["newBalance"])
		}
		updated := body["splitsUpdated"].([]any)
		if len(updated) != 2 {
			t.Fatalf("splitsUpdated = %v, want 2 entries", updated)
		}
		first := updated[0].(map[string]any)
		if first["newAmount"] != "0" {
			t.Errorf("oldest split newAmount = %v, want 0", first["newAmount"])
		}
	})

	t.Run("overpayment rejected with 400", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/wallet/pay-debt", bobToken, map[string]any{
			"amount": 21, "friendId": aliceID,
		})
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("insufficient balance rejected with 400", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/wallet/pay-debt", aliceToken, map[string]any{
			"amount": 1000,
		})
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("summary reflects remaining debt", func(t *testing.T) {
		status, body := doJSON(t, server, http.MethodGet, "/api/expenses/summary", bobToken, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
		if body["totalOwed"] != "20" {
			t.Errorf("totalOwed = %v, want 20", body["totalOwed"])
		}
	})
}

func TestAPI_ExpenseConflictAndNotFound(t *testing.T) {
	server := newTestServer(t)

	_, aliceToken := signup(t, server, "alice", "alice@conflict.api")
	bobID, bobToken := signup(t, server, "bob", "bob@conflict.api")

	status, body := doJSON(t, server, http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"description": "rent", "amount": 50, "date": "2025-02-01",
		"splits": []map[string]any{{"userId": bobID, "amount": 50}},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	expenseID := int64(body["id"].(float64))

	doJSON(t, server, http.MethodPost, "/api/wallet/add-funds", bobToken, map[string]any{"amount": 20})
	status, _ = doJSON(t, server, http.MethodPost, "/api/wallet/pay-debt", bobToken, map[string]any{
		"amount": 20, "friendId": int64(body["paidBy"].(float64)),
	})
	if status != http.StatusOK {
		t.Fatalf("pay-debt status = %d", status)
	}

	t.Run("edit after repayment conflicts", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPut,
			fmt.Sprintf("/api/expenses/%d", expenseID), aliceToken, map[string]any{
				"description": "rent edited", "amount": 50, "date": "2025-02-01",
				"splits": []map[string]any{{"userId": bobID, "amount": 50}},
			})
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})

	t.Run("deleting a missing expense is 404", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodDelete, "/api/expenses/424242", aliceToken, nil)
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})
}
