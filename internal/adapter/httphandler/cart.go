package httphandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/service"
)

// GET v1/cart (200 OK)
// DELETE v1/cart (200 OK)
// POST v1/cart/items JSON {"productId", "quantity", "size", "color"} (201 Created, 404, 409, 422)
// PATCH v1/cart/items/{productID} JSON {"quantity"}, zero removes the product (200 OK, 422)
// DELETE v1/cart/items/{productID} (200 OK)

type CartService interface {
	AddProduct(
		ctx context.Context, p domain.Product, quantity int, size, color string,
	) error
	UpdateQuantity(ctx context.Context, productID, quantity int) error
	RemoveFromCart(ctx context.Context, productID int) error
	ClearCart(ctx context.Context) error
	Items() []domain.LineItem
	Summary() domain.CartSummary
}

// ProductFinder resolves the product a client refers to by id.
type ProductFinder interface {
	Product(ctx context.Context, id int) (domain.Product, error)
}

var _ CartService = (*service.CartStore)(nil)

type CartHandler struct {
	products ProductFinder
	cart     CartService
}

func RegisterCart(mux *http.ServeMux, products ProductFinder, cart CartService) {
	h := CartHandler{products, cart}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("DELETE /v1/cart", h.DeleteCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("PATCH /v1/cart/items/{productID}", h.PatchItem)
	mux.HandleFunc("DELETE /v1/cart/items/{productID}", h.DeleteItem)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view())
}

func (h CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.ClearCart(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req AddCartItem
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeError(w, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := h.products.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.cart.AddProduct(r.Context(), p, quantity, req.Size, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Info("added to cart", "productID", p.ID, "quantity", quantity)
	writeJSON(w, http.StatusCreated, h.view())
}

func (h CartHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PatchItem"
	log := slog.With("op", op)

	id, err := pathID(r, "productID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateCartItem
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeError(w, err)
		return
	}

	if req.Quantity == 0 {
		err = h.cart.RemoveFromCart(r.Context(), id)
	} else {
		err = h.cart.UpdateQuantity(r.Context(), id, req.Quantity)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.cart.RemoveFromCart(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h CartHandler) view() Cart {
	return Cart{
		Items:   toLineItems(h.cart.Items()),
		Summary: toSummary(h.cart.Summary()),
	}
}
