package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/stylehub/internal/core/domain"
	"github.com/niksmo/stylehub/internal/core/port"
)

// checkoutCart is the part of the cart the checkout reads and empties.
type checkoutCart interface {
	IsEmpty() bool
	Items() []domain.LineItem
	Summary() domain.CartSummary
	RemoveOrdered(context.Context, []domain.LineItem) error
}

var _ checkoutCart = (*CartStore)(nil)

type CheckoutSnapshot struct {
	Step    domain.Step
	Form    domain.CheckoutForm
	Summary domain.CartSummary
	Order   *domain.Order
}

// A Checkout walks the session through Shipping, Payment and Review
// and places the order from Review.
type Checkout struct {
	mu         sync.Mutex
	cart       checkoutCart
	payment    port.PaymentProcessor
	publisher  port.OrderPublisher
	now        func() time.Time
	step       domain.Step
	form       domain.CheckoutForm
	processing bool
	order      *domain.Order
}

type CheckoutOpt func(*Checkout)

// CheckoutPublisherOpt sets the sink for placed orders.
func CheckoutPublisherOpt(p port.OrderPublisher) CheckoutOpt {
	return func(c *Checkout) {
		c.publisher = p
	}
}

func CheckoutClockOpt(now func() time.Time) CheckoutOpt {
	return func(c *Checkout) {
		c.now = now
	}
}

func NewCheckout(
	cart checkoutCart, payment port.PaymentProcessor, opts ...CheckoutOpt,
) (*Checkout, error) {
	const op = "NewCheckout"

	if cart.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	c := &Checkout{
		cart:    cart,
		payment: payment,
		now:     time.Now,
		step:    domain.StepShipping,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Checkout) Step() domain.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Checkout) SetShipping(info domain.ShippingInfo) error {
	const op = "Checkout.SetShipping"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.form.Shipping = info
	return nil
}

func (c *Checkout) SetPayment(info domain.PaymentInfo) error {
	const op = "Checkout.SetPayment"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.form.Payment = info
	return nil
}

// Next validates the current step and advances by one.
// Review only moves forward through PlaceOrder.
func (c *Checkout) Next() (domain.Step, error) {
	const op = "Checkout.Next"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return c.step, fmt.Errorf("%s: %w", op, err)
	}

	switch c.step {
	case domain.StepShipping:
		if err := c.form.Shipping.Validate(); err != nil {
			return c.step, fmt.Errorf("%s: %w", op, err)
		}
	case domain.StepPayment:
		if err := c.form.Payment.Validate(); err != nil {
			return c.step, fmt.Errorf("%s: %w", op, err)
		}
	default:
		return c.step, fmt.Errorf(
			"%s: next from %s: %w", op, c.step, domain.ErrInvalidTransition,
		)
	}

	c.step++
	return c.step, nil
}

// Previous steps back, never below Shipping.
func (c *Checkout) Previous() (domain.Step, error) {
	const op = "Checkout.Previous"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return c.step, fmt.Errorf("%s: %w", op, err)
	}
	if c.step > domain.StepShipping {
		c.step--
	}
	return c.step, nil
}

// PlaceOrder charges the cart total and, on success, takes the ordered
// lines out of the cart and moves to Placed. On payment failure the
// checkout stays in Review. The form and steps are locked while paying.
func (c *Checkout) PlaceOrder(ctx context.Context) (domain.Order, error) {
	const op = "Checkout.PlaceOrder"
	log := slog.With("op", op)

	c.mu.Lock()
	if err := c.guard(); err != nil {
		c.mu.Unlock()
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	if c.step != domain.StepReview {
		step := c.step
		c.mu.Unlock()
		return domain.Order{}, fmt.Errorf(
			"%s: place from %s: %w", op, step, domain.ErrInvalidTransition,
		)
	}
	if err := c.validateForm(); err != nil {
		c.mu.Unlock()
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		Items:     c.cart.Items(),
		Shipping:  c.form.Shipping,
		CardLast4: c.form.Payment.Last4(),
		Summary:   c.cart.Summary(),
	}
	req := port.PaymentRequest{
		OrderID:    order.ID,
		Amount:     order.Summary.Total,
		CardLast4:  order.CardLast4,
		Cardholder: c.form.Payment.CardholderName,
	}
	c.processing = true
	c.mu.Unlock()

	log.Info("processing payment", "orderID", order.ID, "amount", req.Amount)
	payErr := c.payment.Process(ctx, req)

	c.mu.Lock()
	c.processing = false
	if payErr != nil {
		c.mu.Unlock()
		log.Error("payment failed", "orderID", order.ID, "err", payErr)
		return domain.Order{}, fmt.Errorf("%s: %w: %w", op, domain.ErrProcessing, payErr)
	}

	if c.step != domain.StepReview {
		step := c.step
		c.mu.Unlock()
		log.Error("checkout left review while paying", "orderID", order.ID, "step", step)
		return domain.Order{}, fmt.Errorf(
			"%s: place from %s: %w", op, step, domain.ErrInvalidTransition,
		)
	}
	order.PlacedAt = c.now()
	c.step = domain.StepPlaced
	c.order = &order
	c.mu.Unlock()

	if err := c.cart.RemoveOrdered(ctx, order.Items); err != nil {
		log.Error("failed to empty cart after order", "orderID", order.ID, "err", err)
	}

	c.publish(ctx, order)

	log.Info("order placed", "orderID", order.ID, "total", order.Summary.Total)
	return order, nil
}

func (c *Checkout) Snapshot() CheckoutSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CheckoutSnapshot{
		Step: c.step,
		Form: domain.CheckoutForm{
			Shipping: c.form.Shipping,
			Payment:  c.form.Payment.Masked(),
		},
	}
	if c.order != nil {
		order := *c.order
		order.Items = cloneItems(c.order.Items)
		s.Order = &order
		s.Summary = order.Summary
	} else {
		s.Summary = c.cart.Summary()
	}
	return s
}

// guard must be called with mu held.
func (c *Checkout) guard() error {
	if c.step == domain.StepPlaced {
		return fmt.Errorf("order already placed: %w", domain.ErrInvalidTransition)
	}
	if c.processing {
		return domain.ErrOrderInProgress
	}
	if c.cart.IsEmpty() {
		return domain.ErrEmptyCart
	}
	return nil
}

func (c *Checkout) validateForm() error {
	if err := c.form.Shipping.Validate(); err != nil {
		return err
	}
	return c.form.Payment.Validate()
}

func (c *Checkout) publish(ctx context.Context, order domain.Order) {
	const op = "Checkout.publish"

	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishOrder(context.WithoutCancel(ctx), order); err != nil {
		slog.With("op", op).Error(
			"failed to publish order", "orderID", order.ID, "err", err,
		)
	}
}
