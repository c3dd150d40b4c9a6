package dto

import (
	"basera/internal/domains/booking/model"
	"basera/shared"
	"basera/shared/constant"
	"basera/shared/timezone"
	"fmt"
	"strings"
	"time"

	gDto "basera/shared/dto"
	gModel "basera/shared/model"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	PropertyID    string `json:"property_id"    validate:"required"`
	BookingType   string `json:"booking_type"   validate:"required,oneof=booking visit"`
	CustomerName  string `json:"customer_name"  validate:"required,max=100"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email,max=100"`
	CustomerPhone string `json:"customer_phone" validate:"omitempty,max=20"`
	PreferredDate string `json:"preferred_date" validate:"required_if=BookingType visit"`
	Message       string `json:"message"        validate:"omitempty,max=1000"`
	PaymentMethod string `json:"payment_method" validate:"required,max=50"`
}

// ParsePreferredDate accepts either a full timestamp or a bare date in the
// application timezone.
func (c *CreateBookingRequest) ParsePreferredDate() (*time.Time, error) {
	if c.PreferredDate == "" {
		return nil, nil
	}

	parsed, err := timezone.Parse(constant.DateFormat, c.PreferredDate)
	if err != nil {
		parsed, err = timezone.Parse(constant.DateOnlyFormat, c.PreferredDate)
		if err != nil {
			return nil, fmt.Errorf("invalid preferred_date: %w", err)
		}
	}

	return &parsed, nil
}

func (c *CreateBookingRequest) ToModel(customerID, agentID string, preferredDate *time.Time, amount float64) model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:            uuid.NewString(),
		PropertyID:    c.PropertyID,
		AgentID:       agentID,
		CustomerID:    customerID,
		BookingType:   model.Type(c.BookingType),
		CustomerName:  c.CustomerName,
		CustomerEmail: c.CustomerEmail,
		CustomerPhone: c.CustomerPhone,
		PreferredDate: preferredDate,
		Message:       c.Message,
		PaymentMethod: c.PaymentMethod,
		TransactionID: uuid.NewString(),
		PaymentAmount: amount,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  customerID,
			ModifiedBy: customerID,
		},
	}
}

type VerifyBookingRequest struct {
	Status     string `json:"status"      validate:"required,oneof=confirmed rejected cancelled"`
	AdminNotes string `json:"admin_notes" validate:"omitempty,max=1000"`
}

type VerifyBookingResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	// PaymentWarning carries a gateway failure that needs manual
	// reconciliation. The verification decision itself has committed.
	PaymentWarning string `json:"payment_warning,omitempty"`
}

type VisitCompletionResponse struct {
	ID                          string `json:"id"`
	AgentConfirmed              bool   `json:"agent_confirmed"`
	AgentConfirmedAt            string `json:"agent_confirmed_at,omitempty"`
	CustomerConfirmed           bool   `json:"customer_confirmed"`
	CustomerConfirmedAt         string `json:"customer_confirmed_at,omitempty"`
	VisitCompleted              bool   `json:"visit_completed"`
	VisitCompletedAt            string `json:"visit_completed_at,omitempty"`
	BookingDeadline             string `json:"booking_deadline,omitempty"`
	CanBookNow                  bool   `json:"can_book_now"`
	PendingAgentConfirmation    bool   `json:"pending_agent_confirmation"`
	PendingCustomerConfirmation bool   `json:"pending_customer_confirmation"`
	AlreadyConfirmed            bool   `json:"already_confirmed"`
}

func (r *VisitCompletionResponse) FromModel(mod model.Booking, now time.Time) {
	r.ID = mod.ID
	r.AgentConfirmed = mod.AgentConfirmed
	r.CustomerConfirmed = mod.CustomerConfirmed
	r.VisitCompleted = mod.VisitCompleted
	r.CanBookNow = mod.CanBookNow(now)
	r.PendingAgentConfirmation = mod.IsPendingAgentConfirmation()
	r.PendingCustomerConfirmation = mod.IsPendingCustomerConfirmation()

	if mod.AgentConfirmedAt != nil {
		r.AgentConfirmedAt = timezone.Format(*mod.AgentConfirmedAt, constant.DateFormat)
	}

	if mod.CustomerConfirmedAt != nil {
		r.CustomerConfirmedAt = timezone.Format(*mod.CustomerConfirmedAt, constant.DateFormat)
	}

	if mod.VisitCompletedAt != nil {
		r.VisitCompletedAt = timezone.Format(*mod.VisitCompletedAt, constant.DateFormat)
	}

	if mod.BookingDeadline != nil {
		r.BookingDeadline = timezone.Format(*mod.BookingDeadline, constant.DateFormat)
	}
}

type BookingResponse struct {
	ID            string `json:"id"`
	PropertyID    string `json:"property_id"`
	AgentID       string `json:"agent_id"`
	CustomerID    string `json:"customer_id"`
	BookingType   string `json:"booking_type"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	PreferredDate string `json:"preferred_date,omitempty"`
	Message       string `json:"message,omitempty"`

	PaymentMethod string  `json:"payment_method"`
	TransactionID string  `json:"transaction_id"`
	PaymentAmount float64 `json:"payment_amount"`
	PaymentStatus string  `json:"payment_status"`

	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes,omitempty"`
	VerifiedBy string `json:"verified_by,omitempty"`
	VerifiedAt string `json:"verified_at,omitempty"`

	AgentConfirmed    bool   `json:"agent_confirmed"`
	CustomerConfirmed bool   `json:"customer_confirmed"`
	VisitCompleted    bool   `json:"visit_completed"`
	BookingDeadline   string `json:"booking_deadline,omitempty"`
	CanBookNow        bool   `json:"can_book_now"`

	gDto.Metadata
}

func (r *BookingResponse) FromModel(mod model.Booking) {
	r.ID = mod.ID
	r.PropertyID = mod.PropertyID
	r.AgentID = mod.AgentID
	r.CustomerID = mod.CustomerID
	r.BookingType = string(mod.BookingType)
	r.CustomerName = mod.CustomerName
	r.CustomerEmail = mod.CustomerEmail
	r.CustomerPhone = mod.CustomerPhone
	r.Message = mod.Message
	r.PaymentMethod = mod.PaymentMethod
	r.TransactionID = mod.TransactionID
	r.PaymentAmount = mod.PaymentAmount
	r.PaymentStatus = string(mod.PaymentStatus)
	r.Status = string(mod.Status)
	r.AdminNotes = mod.AdminNotes
	r.VerifiedBy = mod.VerifiedBy
	r.AgentConfirmed = mod.AgentConfirmed
	r.CustomerConfirmed = mod.CustomerConfirmed
	r.VisitCompleted = mod.VisitCompleted
	r.CanBookNow = mod.CanBookNow(timezone.Now())

	if mod.PreferredDate != nil {
		r.PreferredDate = timezone.Format(*mod.PreferredDate, constant.DateFormat)
	}

	if mod.VerifiedAt != nil {
		r.VerifiedAt = timezone.Format(*mod.VerifiedAt, constant.DateFormat)
	}

	if mod.BookingDeadline != nil {
		r.BookingDeadline = timezone.Format(*mod.BookingDeadline, constant.DateFormat)
	}

	r.Metadata.FromModel(mod.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// ConflictDetail identifies one existing booking that makes the candidate
// request unschedulable.
type ConflictDetail struct {
	BookingID  string   `json:"booking_id"`
	PropertyID string   `json:"property_id"`
	DistanceKM *float64 `json:"distance_km,omitempty"`
}

func (c ConflictDetail) String() string {
	if c.DistanceKM == nil {
		return fmt.Sprintf("booking %s at property %s (distance unknown)", c.BookingID, c.PropertyID)
	}

	return fmt.Sprintf("booking %s at property %s (%.1f km away)", c.BookingID, c.PropertyID, *c.DistanceKM)
}

// FormatConflicts renders the conflict payload into an actionable message.
func FormatConflicts(reason string, details []ConflictDetail) string {
	if len(details) == 0 {
		return reason
	}

	rendered := make([]string, len(details))
	for i, detail := range details {
		rendered[i] = detail.String()
	}

	return fmt.Sprintf("%s: %s", reason, strings.Join(rendered, "; "))
}
