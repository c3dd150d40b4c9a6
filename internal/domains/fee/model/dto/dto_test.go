package dto_test

import (
	"basera/internal/domains/fee/model"
	"basera/internal/domains/fee/model/dto"
	"basera/shared/timezone"
	"testing"
)

func TestFeeResponse_FromModel(t *testing.T) {
	now := timezone.Now()

	mod := model.BookingFee{
		ID:         "fee-1",
		BookingFee: 500,
		VisitFee:   250,
		IsActive:   true,
	}
	mod.CreatedAt = now
	mod.CreatedBy = "admin-1"

	res := dto.FeeResponse{}
	res.FromModel(mod)

	if res.ID != "fee-1" {
		t.Errorf("expected id fee-1, got %s", res.ID)
	}

	if res.BookingFee != 500 || res.VisitFee != 250 {
		t.Errorf("expected fees 500/250, got %f/%f", res.BookingFee, res.VisitFee)
	}

	if !res.IsActive {
		t.Error("expected active fee row")
	}

	if res.CreatedAt == "" || res.CreatedBy != "admin-1" {
		t.Errorf("expected stamped metadata, got %+v", res.Metadata)
	}
}
