package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShadesStore/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

// Routes registers the public catalog endpoints on r. No authentication.
func (s *Server) Routes(r chi.Router) {
	r.Get("/brands", s.listBrands)
	r.Get("/brands/{id}/products", s.listBrandProducts)
	r.Get("/products", s.listProducts)
}

func (s *Server) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.Store.ListBrands(r.Context())
	if err != nil {
		s.serverError(w, r, "list brands failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, brands)
}

func (s *Server) listBrandProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	products, err := s.Store.ProductsByBrand(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "list brand products failed", err, zap.String("brand_id", id))
		return
	}
	if len(products) == 0 {
		kit.WriteError(w, r, http.StatusNotFound, "Brand ID could not be found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListProducts(r.Context())
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	if s.Log != nil {
		s.Log.Error(msg, append(fields, zap.Error(err))...)
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
