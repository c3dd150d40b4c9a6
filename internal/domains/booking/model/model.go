package model

import (
	"basera/shared/model"
	"fmt"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                     = "id"
	FieldPropertyID             = "property_id"
	FieldAgentID                = "agent_id"
	FieldCustomerID             = "customer_id"
	FieldBookingType            = "booking_type"
	FieldCustomerName           = "customer_name"
	FieldCustomerEmail          = "customer_email"
	FieldCustomerPhone          = "customer_phone"
	FieldPreferredDate          = "preferred_date"
	FieldMessage                = "message"
	FieldPaymentMethod          = "payment_method"
	FieldTransactionID          = "transaction_id"
	FieldPaymentIntentReference = "payment_intent_reference"
	FieldPaymentAmount          = "payment_amount"
	FieldPaymentStatus          = "payment_status"
	FieldAuthorizedAt           = "authorized_at"
	FieldCapturedAt             = "captured_at"
	FieldRefundedAt             = "refunded_at"
	FieldStatus                 = "status"
	FieldAdminNotes             = "admin_notes"
	FieldVerifiedBy             = "verified_by"
	FieldVerifiedAt             = "verified_at"
	FieldAgentConfirmed         = "agent_confirmed"
	FieldAgentConfirmedAt       = "agent_confirmed_at"
	FieldCustomerConfirmed      = "customer_confirmed"
	FieldCustomerConfirmedAt    = "customer_confirmed_at"
	FieldVisitCompleted         = "visit_completed"
	FieldVisitCompletedAt       = "visit_completed_at"
	FieldBookingDeadline        = "booking_deadline"
)

// Type distinguishes a firm reservation from a scheduled viewing.
type Type string

const (
	TypeBooking Type = "booking"
	TypeVisit   Type = "visit"
)

func ParseType(value string) (Type, error) {
	switch Type(value) {
	case TypeBooking, TypeVisit:
		return Type(value), nil
	default:
		return "", fmt.Errorf("unknown booking type: %q", value)
	}
}

// Status is the verification state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled:
		return Status(value), nil
	default:
		return "", fmt.Errorf("unknown booking status: %q", value)
	}
}

// PaymentStatus tracks the two-phase payment state independently of the
// verification status.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	switch PaymentStatus(value) {
	case PaymentStatusPending, PaymentStatusAuthorized, PaymentStatusCaptured,
		PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusCancelled:
		return PaymentStatus(value), nil
	default:
		return "", fmt.Errorf("unknown payment status: %q", value)
	}
}

type Booking struct {
	ID          string `db:"id"`
	PropertyID  string `db:"property_id"`
	AgentID     string `db:"agent_id"`
	CustomerID  string `db:"customer_id"`
	BookingType Type   `db:"booking_type"`

	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
	CustomerPhone string `db:"customer_phone"`

	PreferredDate *time.Time `db:"preferred_date"`
	Message       string     `db:"message"`

	PaymentMethod          string        `db:"payment_method"`
	TransactionID          string        `db:"transaction_id"`
	PaymentIntentReference string        `db:"payment_intent_reference"`
	PaymentAmount          float64       `db:"payment_amount"`
	PaymentStatus          PaymentStatus `db:"payment_status"`
	AuthorizedAt           *time.Time    `db:"authorized_at"`
	CapturedAt             *time.Time    `db:"captured_at"`
	RefundedAt             *time.Time    `db:"refunded_at"`

	Status     Status     `db:"status"`
	AdminNotes string     `db:"admin_notes"`
	VerifiedBy string     `db:"verified_by"`
	VerifiedAt *time.Time `db:"verified_at"`

	AgentConfirmed      bool       `db:"agent_confirmed"`
	AgentConfirmedAt    *time.Time `db:"agent_confirmed_at"`
	CustomerConfirmed   bool       `db:"customer_confirmed"`
	CustomerConfirmedAt *time.Time `db:"customer_confirmed_at"`
	VisitCompleted      bool       `db:"visit_completed"`
	VisitCompletedAt    *time.Time `db:"visit_completed_at"`
	BookingDeadline     *time.Time `db:"booking_deadline"`

	model.Metadata
}

// IsActive reports whether the booking still occupies the customer's
// schedule for conflict purposes.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBookNow reports whether the visit-derived booking right is currently
// exercisable.
func (b *Booking) CanBookNow(now time.Time) bool {
	return b.VisitCompleted && b.BookingDeadline != nil && !now.After(*b.BookingDeadline)
}

// IsPendingAgentConfirmation reports whether the completion handshake is
// waiting on the agent side.
func (b *Booking) IsPendingAgentConfirmation() bool {
	return b.CustomerConfirmed && !b.AgentConfirmed
}

// IsPendingCustomerConfirmation reports whether the completion handshake is
// waiting on the customer side.
func (b *Booking) IsPendingCustomerConfirmation() bool {
	return b.AgentConfirmed && !b.CustomerConfirmed
}
