package model

import (
	"basera/shared/model"
)

const (
	TableName  = "booking_fees"
	EntityName = "booking_fee"

	FieldID         = "id"
	FieldBookingFee = "booking_fee"
	FieldVisitFee   = "visit_fee"
	FieldIsActive   = "is_active"
)

// BookingFee is admin-managed pricing configuration. At most one row is
// active at a time; the calculator falls back to configured defaults when
// none is.
type BookingFee struct {
	ID         string  `db:"id"`
	BookingFee float64 `db:"booking_fee"`
	VisitFee   float64 `db:"visit_fee"`
	IsActive   bool    `db:"is_active"`
	model.Metadata
}
