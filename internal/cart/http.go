package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShadesStore/internal/auth"
	"ShadesStore/pkg/kit"
)

type Server struct {
	Manager  *Manager
	Resolver auth.Resolver
	Log      *zap.Logger
}

// Routes registers the cart endpoints of the logged-in user on r. Every
// route requires a valid accessToken query parameter.
func (s *Server) Routes(r chi.Router) {
	r.With(auth.RequireToken(s.Resolver, "You need to log in to see cart")).Get("/", s.get)
	r.With(auth.RequireToken(s.Resolver, "You need to log in to add item to cart")).Post("/", s.add)
	r.With(auth.RequireToken(s.Resolver, "You need to log in to update item in cart")).Put("/{productId}", s.update)
	r.With(auth.RequireToken(s.Resolver, "You need to log in to remove item from cart")).Delete("/{productId}", s.remove)
}

type productRef struct {
	ID string `json:"id"`
}

// addReq names the product by id, or by product.id when id is absent.
type addReq struct {
	ID      string      `json:"id" validate:"required"`
	Product *productRef `json:"product,omitempty"`
}

type updateReq struct {
	Quantity int `json:"quantity"`
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return
	}

	lines, err := s.Manager.Get(r.Context(), sess.Username)
	if err != nil {
		s.writeCartError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, lines)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return
	}

	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, kit.ErrEmptyBody) {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.ID == "" && req.Product != nil {
		req.ID = req.Product.ID
	}
	if err := kit.Validate(req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	lines, err := s.Manager.Add(r.Context(), sess.Username, req.ID)
	if err != nil {
		s.writeCartError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, lines)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return
	}

	// An unreadable quantity counts as zero; the manager checks for an empty
	// cart before it looks at the quantity.
	var req updateReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		if s.Log != nil && !errors.Is(err, kit.ErrEmptyBody) {
			s.Log.Debug("cart update body unreadable", zap.Error(err))
		}
		req.Quantity = 0
	}

	lines, err := s.Manager.UpdateQuantity(r.Context(), sess.Username, chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		s.writeCartError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, lines)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return
	}

	lines, err := s.Manager.Remove(r.Context(), sess.Username, chi.URLParam(r, "productId"))
	if err != nil {
		s.writeCartError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, lines)
}

func (s *Server) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		kit.WriteError(w, r, http.StatusForbidden, "ERROR: Your cart is empty", nil)
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusMethodNotAllowed, "Invalid request. Quantity can't be Zero", nil)
	case errors.Is(err, ErrDuplicateItem):
		kit.WriteError(w, r, http.StatusMethodNotAllowed, "That product is already in cart", nil)
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "That product cannot be found", nil)
	default:
		if s.Log != nil {
			s.Log.Error("cart operation failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
