// Package server wires the HTTP API: routing, CORS, auth, and the JSON
// handlers over the service layer.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexoapp/nexo/internal/auth"
	"github.com/nexoapp/nexo/internal/middleware"
	"github.com/nexoapp/nexo/internal/service"
	"github.com/nexoapp/nexo/internal/ws"
)

// Services bundles everything the handlers call.
type Services struct {
	Auth          *service.AuthService
	Expenses      *service.ExpenseService
	Wallet        *service.WalletService
	Friends       *service.FriendService
	Groups        *service.GroupService
	Reminders     *service.ReminderService
	Notifications *service.NotificationService
	Budgets       *service.BudgetService
	Badges        *service.BadgeService
}

// Server holds the routing state.
type Server struct {
	services Services
	jwt      *auth.JWTManager
	hub      *ws.Hub
}

// New builds the API router.
func New(services Services, jwtManager *auth.JWTManager, hub *ws.Hub, allowedOrigins []string) http.Handler {
	s := &Server{services: services, jwt: jwtManager, hub: hub}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt))

			r.Get("/check-session", s.handleCheckSession)
			r.Get("/user/{email}", s.handleFindUser)
			r.Get("/dashboard", s.handleDashboard)

			r.Get("/friends", s.handleListFriends)
			r.Post("/friends", s.handleAddFriend)
			r.Get("/friends/{id}/balance", s.handleFriendBalance)

			r.Get("/groups", s.handleListGroups)
			r.Post("/groups", s.handleCreateGroup)

			r.Get("/expenses", s.handleListExpenses)
			r.Post("/expenses", s.handleCreateExpense)
			r.Get("/expenses/summary", s.handleExpenseSummary)
			r.Put("/expenses/{id}", s.handleUpdateExpense)
			r.Delete("/expenses/{id}", s.handleDeleteExpense)

			r.Get("/wallet", s.handleGetWallet)
			r.Get("/wallet/transactions", s.handleWalletTransactions)
			r.Post("/wallet/add-funds", s.handleAddFunds)
			r.Post("/wallet/credit", s.handleAddFunds)
			r.Post("/wallet/debit", s.handleWithdraw)
			r.Post("/wallet/pay-debt", s.handlePayDebt)

			r.Get("/reminders", s.handleListReminders)
			r.Post("/reminders", s.handleCreateReminder)
			r.Post("/reminders/{id}/send", s.handleSendReminder)
			r.Post("/reminders/{id}/pay", s.handlePayReminder)
			r.Put("/reminders/{id}", s.handleMarkReminderPaid)

			r.Get("/notifications", s.handleListNotifications)
			r.Put("/notifications/{id}/read", s.handleMarkNotificationRead)

			r.Get("/budgets", s.handleListBudgets)
			r.Post("/budgets", s.handleCreateBudget)

			r.Get("/badges", s.handleBadges)
			r.Get("/leaderboard", s.handleLeaderboard)

			r.Post("/scan-receipt", s.handleScanReceipt)

			r.Get("/ws", s.handleWebsocket)
		})
	})

	return r
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	s.hub.Serve(w, r, userID)
}
