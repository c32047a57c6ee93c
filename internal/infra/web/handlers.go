package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/infra/redis"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

type sessionInfo struct {
	token string
	sess  *model.Session
}

func withSession(ctx context.Context, token string, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sessionInfo{token: token, sess: sess})
}

func sessionFrom(ctx context.Context) (sessionInfo, bool) {
	info, ok := ctx.Value(sessionCtxKey).(sessionInfo)
	return info, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type submitRequest struct {
	SessionToken string `json:"sessionToken"`
	OwnerID      string `json:"ownerId"`
	Prompt       string `json:"prompt"`
}

// submitHandler acknowledges with a request id before any generation runs.
func (s *Server) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SessionToken == "" || req.OwnerID == "" || req.Prompt == "" {
			writeError(w, http.StatusBadRequest, "sessionToken, ownerId and prompt are required")
			return
		}

		if s.limiter != nil {
			key := redis.OwnerOpKey(req.OwnerID, "chat.submit")
			allowed, err := s.limiter.Allow(ctx, key, submitRateLimit, submitRateWindow)
			if err != nil {
				// Fail open; the limiter is protection, not a dependency.
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
			} else if !allowed {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
		}

		requestID, err := s.chatUC.Submit(ctx, req.OwnerID, req.SessionToken, req.Prompt)
		if err != nil {
			writeError(w, statusFor(err), "could not accept prompt")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"requestId": requestID,
		})
	}
}

func (s *Server) resultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		info, ok := sessionFrom(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		requestID := chi.URLParam(r, "requestID")
		ownerID := r.URL.Query().Get("ownerId")
		if ownerID == "" {
			ownerID = info.sess.UserID
		}

		res, err := s.chatUC.Poll(ctx, ownerID, info.token, requestID)
		if err != nil {
			writeError(w, statusFor(err), "could not fetch result")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type verifyTokenRequest struct {
	GoogleToken string `json:"googleToken"`
}

// verifyTokenHandler exchanges a Google ID token for an app session.
func (s *Server) verifyTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GoogleToken == "" {
			writeError(w, http.StatusBadRequest, "googleToken is required")
			return
		}

		token, sess, err := s.authUC.Login(r.Context(), req.GoogleToken)
		if err != nil {
			writeError(w, statusFor(err), "token verification failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"session": token,
			"uid":     sess.UserID,
			"email":   sess.Email,
			"name":    sess.Name,
		})
	}
}

type verifySessionRequest struct {
	Token string `json:"token"`
}

func (s *Server) verifySessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifySessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		sess, err := s.authUC.VerifySession(r.Context(), req.Token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"valid": false})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"valid": true,
			"uid":   sess.UserID,
			"email": sess.Email,
		})
	}
}

type messageView struct {
	ID         string `json:"id,omitempty"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Role       string `json:"role"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

func (s *Server) getMessagesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		info, ok := sessionFrom(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		history, err := s.chatUC.History(ctx, info.sess.UserID, info.token)
		if err != nil {
			writeError(w, statusFor(err), "could not load messages")
			return
		}

		views := make([]messageView, 0, len(history))
		for _, m := range history {
			views = append(views, messageView{
				ID:         m.ID,
				SenderID:   m.SenderID,
				SenderName: m.SenderName,
				Role:       m.Role,
				Message:    m.Message,
				Timestamp:  m.Timestamp.UnixMilli(),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": views})
	}
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) sendMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		info, ok := sessionFrom(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		if err := s.chatUC.SendMessage(ctx, info.sess.UserID, info.token, req.Message); err != nil {
			writeError(w, statusFor(err), "could not store message")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
