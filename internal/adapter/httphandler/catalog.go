package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/service"
	"github.com/shopspring/decimal"
)

// GET v1/products?category=slug&sort=key&brands=a&brands=b&minPrice=100 (200 OK, 422)
// GET v1/products/featured?limit=n
// GET v1/products/{id} (200 OK, 404 Not found)
// GET v1/products/{id}/recommendations
// GET v1/search?q=term
// GET v1/filters

type CatalogService interface {
	Browse(
		ctx context.Context,
		slug string,
		filters domain.ActiveFilters,
		sortKey domain.SortKey,
	) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Featured(ctx context.Context, n int) ([]domain.Product, error)
	Product(ctx context.Context, id int) (domain.Product, error)
	Recommendations(ctx context.Context, p domain.Product) []domain.Product
	FilterOptions(ctx context.Context) domain.FilterOptions
}

var _ CatalogService = service.CatalogService{}

type CatalogHandler struct {
	catalog CatalogService
}

func RegisterCatalog(mux *http.ServeMux, catalog CatalogService) {
	h := CatalogHandler{catalog}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/featured", h.GetFeatured)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/products/{id}/recommendations", h.GetRecommendations)
	mux.HandleFunc("GET /v1/search", h.GetSearch)
	mux.HandleFunc("GET /v1/filters", h.GetFilters)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	q := r.URL.Query()
	filters, err := parseFilters(q)
	if err != nil {
		writeError(w, err)
		return
	}

	ps, err := h.catalog.Browse(
		r.Context(), q.Get("category"), filters, domain.ParseSortKey(q.Get("sort")),
	)
	if err != nil {
		log.Error("failed to browse products", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetFeatured"
	log := slog.With("op", op)

	var n int
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, domain.NewValidationError("limit", "must be an integer"))
			return
		}
		n = v
	}

	ps, err := h.catalog.Featured(r.Context(), n)
	if err != nil {
		log.Error("failed to get featured products", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.product(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProduct(p))
}

func (h CatalogHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	p, err := h.product(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProducts(h.catalog.Recommendations(r.Context(), p)))
}

func (h CatalogHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetSearch"
	log := slog.With("op", op)

	ps, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Error("failed to search products", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProducts(ps))
}

func (h CatalogHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFilterOptions(h.catalog.FilterOptions(r.Context())))
}

func (h CatalogHandler) product(r *http.Request) (domain.Product, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return domain.Product{}, err
	}
	return h.catalog.Product(r.Context(), id)
}

func parseFilters(q url.Values) (domain.ActiveFilters, error) {
	var f domain.ActiveFilters
	for _, key := range []domain.FilterKey{
		domain.FilterCategories,
		domain.FilterBrands,
		domain.FilterSizes,
		domain.FilterColors,
		domain.FilterDiscounts,
	} {
		for _, v := range q[string(key)] {
			if !slices.Contains(f.Selected(key), v) {
				f.Toggle(key, v)
			}
		}
	}

	for _, key := range []domain.FilterKey{domain.FilterMinPrice, domain.FilterMaxPrice} {
		s := q.Get(string(key))
		if s == "" {
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return domain.ActiveFilters{}, domain.NewValidationError(
				string(key), "must be a decimal number",
			)
		}
		f.SetBound(key, decimal.NewNullDecimal(d))
	}
	return f, nil
}
