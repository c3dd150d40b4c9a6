package dto_test

import (
	"basera/internal/domains/booking/model"
	"basera/internal/domains/booking/model/dto"
	"basera/shared/timezone"
	"strings"
	"testing"
	"time"
)

func TestCreateBookingRequest_ParsePreferredDate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantNil     bool
		expectError bool
	}{
		{
			name:    "empty date is allowed",
			input:   "",
			wantNil: true,
		},
		{
			name:  "full timestamp",
			input: "2026-09-15T14:00:00+05:45",
		},
		{
			name:  "bare date",
			input: "2026-09-15",
		},
		{
			name:        "garbage",
			input:       "next tuesday",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.CreateBookingRequest{PreferredDate: tt.input}

			parsed, err := req.ParsePreferredDate()

			if tt.expectError {
				if err == nil {
					t.Error("expected parse error, got nil")
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantNil {
				if parsed != nil {
					t.Errorf("expected nil, got %v", parsed)
				}
			} else if parsed == nil || parsed.IsZero() {
				t.Error("expected a parsed time, got nil or zero")
			}
		})
	}
}

func TestCreateBookingRequest_ToModel(t *testing.T) {
	preferredDate := timezone.Now().AddDate(0, 0, 3)

	req := dto.CreateBookingRequest{
		PropertyID:    "prop-1",
		BookingType:   "visit",
		CustomerName:  "Ramesh Shrestha",
		CustomerEmail: "ramesh@example.com",
		PaymentMethod: "card",
	}

	mod := req.ToModel("customer-1", "agent-1", &preferredDate, 500)

	if mod.ID == "" {
		t.Error("expected generated id")
	}

	if mod.TransactionID == "" {
		t.Error("expected generated transaction id")
	}

	if mod.ID == mod.TransactionID {
		t.Error("expected distinct booking and transaction ids")
	}

	if mod.Status != model.StatusPending {
		t.Errorf("expected pending status, got %s", mod.Status)
	}

	if mod.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("expected pending payment status, got %s", mod.PaymentStatus)
	}

	if mod.CustomerID != "customer-1" || mod.AgentID != "agent-1" {
		t.Errorf("expected ownership to be stamped, got customer %s agent %s", mod.CustomerID, mod.AgentID)
	}

	if mod.PaymentAmount != 500 {
		t.Errorf("expected amount 500, got %f", mod.PaymentAmount)
	}

	if mod.PreferredDate == nil || !mod.PreferredDate.Equal(preferredDate) {
		t.Error("expected preferred date to carry through")
	}

	if mod.CreatedBy != "customer-1" || mod.ModifiedBy != "customer-1" {
		t.Error("expected metadata to be stamped with the customer")
	}
}

func TestVisitCompletionResponse_FromModel(t *testing.T) {
	now := timezone.Now()
	deadline := now.AddDate(0, 0, 7)

	mod := model.Booking{
		ID:                "bk-1",
		BookingType:       model.TypeVisit,
		Status:            model.StatusConfirmed,
		AgentConfirmed:    true,
		AgentConfirmedAt:  &now,
		CustomerConfirmed: true,
		VisitCompleted:    true,
		VisitCompletedAt:  &now,
		BookingDeadline:   &deadline,
	}

	res := dto.VisitCompletionResponse{}
	res.FromModel(mod, now)

	if !res.VisitCompleted || !res.CanBookNow {
		t.Error("expected completed visit with an open booking window")
	}

	if res.BookingDeadline == "" || res.VisitCompletedAt == "" {
		t.Error("expected formatted timestamps")
	}

	if res.PendingAgentConfirmation || res.PendingCustomerConfirmation {
		t.Error("expected no pending side after both confirmations")
	}
}

func TestVisitCompletionResponse_PendingSide(t *testing.T) {
	now := timezone.Now()

	mod := model.Booking{
		ID:               "bk-1",
		AgentConfirmed:   true,
		AgentConfirmedAt: &now,
	}

	res := dto.VisitCompletionResponse{}
	res.FromModel(mod, now)

	if !res.PendingCustomerConfirmation {
		t.Error("expected the handshake to be waiting on the customer")
	}

	if res.CanBookNow {
		t.Error("expected no booking window before completion")
	}
}

func TestBookingResponse_FromModel(t *testing.T) {
	now := timezone.Now()
	preferredDate := now.AddDate(0, 0, 2)

	mod := model.Booking{
		ID:            "bk-1",
		PropertyID:    "prop-1",
		AgentID:       "agent-1",
		CustomerID:    "customer-1",
		BookingType:   model.TypeBooking,
		PreferredDate: &preferredDate,
		PaymentAmount: 250,
		PaymentStatus: model.PaymentStatusAuthorized,
		Status:        model.StatusPending,
		VerifiedAt:    &now,
	}

	res := dto.BookingResponse{}
	res.FromModel(mod)

	if res.ID != "bk-1" || res.Status != "pending" || res.PaymentStatus != "authorized" {
		t.Errorf("unexpected mapping: %+v", res)
	}

	if res.PreferredDate == "" || res.VerifiedAt == "" {
		t.Error("expected formatted dates")
	}

	if res.CanBookNow {
		t.Error("expected no booking window without a completed visit")
	}
}

func TestGetBookingsResponse_FromModels(t *testing.T) {
	models := []model.Booking{
		{ID: "bk-1", Status: model.StatusPending},
		{ID: "bk-2", Status: model.StatusConfirmed},
	}

	res := dto.GetBookingsResponse{}
	res.FromModels(models, 21, 10)

	if len(res.Bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(res.Bookings))
	}

	if res.TotalData != 21 || res.TotalPage != 3 {
		t.Errorf("expected 21 rows over 3 pages, got %d over %d", res.TotalData, res.TotalPage)
	}
}

func TestFormatConflicts(t *testing.T) {
	distance := 5.7

	tests := []struct {
		name    string
		reason  string
		details []dto.ConflictDetail
		want    []string
	}{
		{
			name:    "no details keeps the reason",
			reason:  "you already have a booking for this property",
			details: nil,
			want:    []string{"you already have a booking for this property"},
		},
		{
			name:   "with distance",
			reason: "same-day bookings must be within 5.0 km of each other",
			details: []dto.ConflictDetail{
				{BookingID: "bk-9", PropertyID: "prop-2", DistanceKM: &distance},
			},
			want: []string{"bk-9", "prop-2", "5.7 km away"},
		},
		{
			name:   "without distance",
			reason: "property location is unknown",
			details: []dto.ConflictDetail{
				{BookingID: "bk-9", PropertyID: "prop-2"},
			},
			want: []string{"bk-9", "prop-2", "distance unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := dto.FormatConflicts(tt.reason, tt.details)

			for _, fragment := range tt.want {
				if !strings.Contains(result, fragment) {
					t.Errorf("expected %q to contain %q", result, fragment)
				}
			}
		})
	}
}

func TestBookingEnumParsers(t *testing.T) {
	if _, err := model.ParseType("visit"); err != nil {
		t.Errorf("expected visit to parse, got %v", err)
	}

	if _, err := model.ParseType("rental"); err == nil {
		t.Error("expected unknown type to fail")
	}

	if _, err := model.ParseStatus("cancelled"); err != nil {
		t.Errorf("expected cancelled to parse, got %v", err)
	}

	if _, err := model.ParseStatus("approved"); err == nil {
		t.Error("expected unknown status to fail")
	}

	if _, err := model.ParsePaymentStatus("refunded"); err != nil {
		t.Errorf("expected refunded to parse, got %v", err)
	}

	if _, err := model.ParsePaymentStatus("held"); err == nil {
		t.Error("expected unknown payment status to fail")
	}
}

func TestBookingCanBookNow(t *testing.T) {
	now := timezone.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name     string
		booking  model.Booking
		expected bool
	}{
		{
			name:     "completed visit inside the window",
			booking:  model.Booking{VisitCompleted: true, BookingDeadline: &future},
			expected: true,
		},
		{
			name:     "completed visit past the deadline",
			booking:  model.Booking{VisitCompleted: true, BookingDeadline: &past},
			expected: false,
		},
		{
			name:     "incomplete visit",
			booking:  model.Booking{VisitCompleted: false, BookingDeadline: &future},
			expected: false,
		},
		{
			name:     "no deadline stamped",
			booking:  model.Booking{VisitCompleted: true},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.booking.CanBookNow(now); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
