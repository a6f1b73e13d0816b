package httphandler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/service"
)

// POST v1/checkout starts a new checkout over the cart (201 Created, 409 empty cart)
// GET v1/checkout (200 OK, 404)
// PUT v1/checkout/shipping JSON shipping info (200 OK, 409)
// PUT v1/checkout/payment JSON payment info (200 OK, 409)
// POST v1/checkout/next (200 OK, 409, 422)
// POST v1/checkout/previous (200 OK, 409)
// POST v1/checkout/order (201 Created, 402, 409, 422)

type CheckoutSession interface {
	SetShipping(info domain.ShippingInfo) error
	SetPayment(info domain.PaymentInfo) error
	Next() (domain.Step, error)
	Previous() (domain.Step, error)
	PlaceOrder(ctx context.Context) (domain.Order, error)
	Snapshot() service.CheckoutSnapshot
}

var _ CheckoutSession = (*service.Checkout)(nil)

// StartCheckoutFn opens a checkout over the current cart.
type StartCheckoutFn func() (CheckoutSession, error)

type CheckoutHandler struct {
	start StartCheckoutFn

	mu      sync.Mutex
	session CheckoutSession
}

func RegisterCheckout(mux *http.ServeMux, start StartCheckoutFn) {
	h := &CheckoutHandler{start: start}
	mux.HandleFunc("POST /v1/checkout", h.PostCheckout)
	mux.HandleFunc("GET /v1/checkout", h.GetCheckout)
	mux.HandleFunc("PUT /v1/checkout/shipping", h.PutShipping)
	mux.HandleFunc("PUT /v1/checkout/payment", h.PutPayment)
	mux.HandleFunc("POST /v1/checkout/next", h.PostNext)
	mux.HandleFunc("POST /v1/checkout/previous", h.PostPrevious)
	mux.HandleFunc("POST /v1/checkout/order", h.PostOrder)
}

func (h *CheckoutHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostCheckout"
	log := slog.With("op", op)

	s, err := h.start()
	if err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	h.session = s
	h.mu.Unlock()

	log.Info("checkout started")
	writeJSON(w, http.StatusCreated, toCheckout(s.Snapshot()))
}

func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckout(s.Snapshot()))
}

func (h *CheckoutHandler) PutShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingInfo
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.update(w, func(s CheckoutSession) error {
		return s.SetShipping(req.toDomain())
	})
}

func (h *CheckoutHandler) PutPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentInfo
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.update(w, func(s CheckoutSession) error {
		return s.SetPayment(req.toDomain())
	})
}

func (h *CheckoutHandler) PostNext(w http.ResponseWriter, r *http.Request) {
	h.update(w, func(s CheckoutSession) error {
		_, err := s.Next()
		return err
	})
}

func (h *CheckoutHandler) PostPrevious(w http.ResponseWriter, r *http.Request) {
	h.update(w, func(s CheckoutSession) error {
		_, err := s.Previous()
		return err
	})
}

func (h *CheckoutHandler) PostOrder(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostOrder"
	log := slog.With("op", op)

	s, err := h.current()
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := s.PlaceOrder(r.Context())
	if err != nil {
		log.Warn("failed to place order", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrder(order))
}

func (h *CheckoutHandler) update(
	w http.ResponseWriter, fn func(CheckoutSession) error,
) {
	s, err := h.current()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := fn(s); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckout(s.Snapshot()))
}

func (h *CheckoutHandler) current() (CheckoutSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return nil, fmt.Errorf("checkout: %w", domain.ErrNotFound)
	}
	return h.session, nil
}
