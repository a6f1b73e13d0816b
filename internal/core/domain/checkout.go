package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// A Step is a checkout state. Placed is terminal.
type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	StepPlaced
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepPlaced:
		return "placed"
	default:
		return "unknown"
	}
}

var (
	emailRe   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneRe   = regexp.MustCompile(`^\d{10}$`)
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
	cardRe    = regexp.MustCompile(`^\d{16}$`)
	cvvRe     = regexp.MustCompile(`^\d{3,4}$`)
)

type ShippingInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	Pincode   string
}

// Validate returns a [*ValidationError] for the first invalid field.
func (s ShippingInfo) Validate() error {
	required := []field{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"pincode", s.Pincode},
	}
	if err := checkRequired(required); err != nil {
		return err
	}

	if !emailRe.MatchString(s.Email) {
		return NewValidationError("email", "please enter a valid email address")
	}
	if !phoneRe.MatchString(s.Phone) {
		return NewValidationError("phone", "please enter a valid 10-digit phone number")
	}
	if !pincodeRe.MatchString(s.Pincode) {
		return NewValidationError("pincode", "please enter a valid 6-digit pincode")
	}
	return nil
}

type PaymentInfo struct {
	CardNumber     string
	ExpiryMonth    string
	ExpiryYear     string
	CVV            string
	CardholderName string
}

// Validate returns a [*ValidationError] for the first invalid field.
func (p PaymentInfo) Validate() error {
	required := []field{
		{"cardNumber", p.CardNumber},
		{"expiryMonth", p.ExpiryMonth},
		{"expiryYear", p.ExpiryYear},
		{"cvv", p.CVV},
		{"cardholderName", p.CardholderName},
	}
	if err := checkRequired(required); err != nil {
		return err
	}

	if !cardRe.MatchString(stripSpaces(p.CardNumber)) {
		return NewValidationError("cardNumber", "please enter a valid 16-digit card number")
	}
	if !cvvRe.MatchString(p.CVV) {
		return NewValidationError("cvv", "please enter a valid CVV")
	}
	return nil
}

// Last4 returns the last four card digits, empty for short input.
func (p PaymentInfo) Last4() string {
	n := stripSpaces(p.CardNumber)
	if len(n) < 4 {
		return ""
	}
	return n[len(n)-4:]
}

// Masked hides everything but the last card digits and drops the CVV.
func (p PaymentInfo) Masked() PaymentInfo {
	m := p
	m.CVV = ""
	if last4 := p.Last4(); last4 != "" {
		m.CardNumber = "**** **** **** " + last4
	} else {
		m.CardNumber = ""
	}
	return m
}

type CheckoutForm struct {
	Shipping ShippingInfo
	Payment  PaymentInfo
}

type field struct {
	name  string
	value string
}

func checkRequired(fs []field) error {
	for _, f := range fs {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError(f.name, "please fill in "+humanize(f.name))
		}
	}
	return nil
}

// humanize turns "firstName" into "first name".
func humanize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
