package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShadesStore/pkg/kit"
)

const msgInvalidLogin = "Invalid username or password"

type Server struct {
	Log     *zap.Logger
	Issuer  *Issuer
	Limiter *kit.IPRateLimiter
}

func (s *Server) Routes(r chi.Router) {
	if s.Limiter != nil {
		r.With(s.Limiter.Middleware).Post("/login", s.handleLogin)
		return
	}
	r.Post("/login", s.handleLogin)
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// handleLogin answers with the token as a bare JSON string. An empty body
// counts as missing credentials.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, kit.ErrEmptyBody) {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := kit.Validate(req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Missing username or password", map[string]any{"cause": err.Error()})
		return
	}

	tok, err := s.Issuer.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeLoginError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, tok)
}

func (s *Server) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		kit.WriteError(w, r, http.StatusBadRequest, "Missing username or password", nil)
	case errors.Is(err, ErrAccountLocked), errors.Is(err, ErrInvalidCredentials):
		kit.WriteError(w, r, http.StatusUnauthorized, msgInvalidLogin, nil)
	default:
		if s.Log != nil {
			s.Log.Error("login failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
