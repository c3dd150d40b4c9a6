package dto

import (
	"basera/internal/domains/fee/model"

	gDto "basera/shared/dto"
)

type UpdateFeeRequest struct {
	BookingFee *float64 `db:"booking_fee" json:"booking_fee" validate:"omitempty,gt=0"`
	VisitFee   *float64 `db:"visit_fee"   json:"visit_fee"   validate:"omitempty,gt=0"`
}

type FeeResponse struct {
	ID         string  `json:"id,omitempty"`
	BookingFee float64 `json:"booking_fee"`
	VisitFee   float64 `json:"visit_fee"`
	IsActive   bool    `json:"is_active"`
	gDto.Metadata
}

func (r *FeeResponse) FromModel(model model.BookingFee) {
	r.ID = model.ID
	r.BookingFee = model.BookingFee
	r.VisitFee = model.VisitFee
	r.IsActive = model.IsActive
	r.Metadata.FromModel(model.Metadata)
}
