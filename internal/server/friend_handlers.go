package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nexoapp/nexo/internal/middleware"
)

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (s *Server) handleFindUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	user, err := s.services.Friends.FindByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	friends, err := s.services.Friends.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]userResponse, len(friends))
	for i, f := range friends {
		out[i] = toUserResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FriendID int64 `json:"friendId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.services.Friends.Add(r.Context(), userID, req.FriendID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "friend added"})
}

func (s *Server) handleFriendBalance(w http.ResponseWriter, r *http.Request) {
	friendID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid friend id"})
		return
	}

	userID := middleware.GetUserID(r.Context())
	balance, err := s.services.Friends.Balance(r.Context(), userID, friendID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"netBalance": balance})
}
