package httphandler

import (
	"context"
	"net/http"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/service"
)

// GET v1/wishlist (200 OK)
// POST v1/wishlist JSON {"productId"} (201 Created, 404)
// DELETE v1/wishlist (200 OK)
// GET v1/wishlist/{productID} (200 OK)
// DELETE v1/wishlist/{productID} (200 OK)
// POST v1/wishlist/{productID}/toggle (200 OK, 404)

type WishlistService interface {
	AddToWishlist(ctx context.Context, p domain.Product) error
	RemoveFromWishlist(ctx context.Context, productID int) error
	Toggle(ctx context.Context, p domain.Product) (bool, error)
	ClearWishlist(ctx context.Context) error
	IsInWishlist(productID int) bool
	Items() []domain.Product
}

var _ WishlistService = (*service.WishlistStore)(nil)

type WishlistHandler struct {
	products ProductFinder
	wishlist WishlistService
}

func RegisterWishlist(
	mux *http.ServeMux, products ProductFinder, wishlist WishlistService,
) {
	h := WishlistHandler{products, wishlist}
	mux.HandleFunc("GET /v1/wishlist", h.GetWishlist)
	mux.HandleFunc("POST /v1/wishlist", h.PostItem)
	mux.HandleFunc("DELETE /v1/wishlist", h.DeleteWishlist)
	mux.HandleFunc("GET /v1/wishlist/{productID}", h.GetStatus)
	mux.HandleFunc("DELETE /v1/wishlist/{productID}", h.DeleteItem)
	mux.HandleFunc("POST /v1/wishlist/{productID}/toggle", h.PostToggle)
}

func (h WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view())
}

func (h WishlistHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	var req AddWishlistItem
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.products.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.wishlist.AddToWishlist(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view())
}

func (h WishlistHandler) DeleteWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.wishlist.ClearWishlist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h WishlistHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WishlistStatus{
		ProductID:  id,
		InWishlist: h.wishlist.IsInWishlist(id),
	})
}

func (h WishlistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.wishlist.RemoveFromWishlist(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h WishlistHandler) PostToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.products.Product(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	saved, err := h.wishlist.Toggle(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WishlistStatus{ProductID: id, InWishlist: saved})
}

func (h WishlistHandler) view() Wishlist {
	items := toProducts(h.wishlist.Items())
	return Wishlist{Items: items, Count: len(items)}
}
