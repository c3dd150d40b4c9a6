package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	otelMocks "basera/infras/otel/mocks"
	bookingMocks "basera/internal/domains/booking/mocks"
	"basera/internal/domains/booking/model"
	"basera/internal/domains/booking/service"
	propertyMocks "basera/internal/domains/property/mocks"
	propertyModel "basera/internal/domains/property/model"
	"basera/shared/failure"
	"basera/shared/timezone"
)

func propertyAt(id string, lat, lon float64) propertyModel.Property {
	return propertyModel.Property{
		ID:        id,
		AgentID:   "agent-1",
		Latitude:  &lat,
		Longitude: &lon,
		Status:    propertyModel.StatusAvailable,
	}
}

func newChecker(ctrl *gomock.Controller) (service.Checker, *bookingMocks.MockBooking, *propertyMocks.MockProperty) {
	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockPropertyRepo := propertyMocks.NewMockProperty(ctrl)

	checker := service.NewChecker(mockRepo, mockPropertyRepo, bookingTestConfig(), otelMocks.NewOtel())

	return checker, mockRepo, mockPropertyRepo
}

func TestChecker_SameProperty(t *testing.T) {
	preferredDate := timezone.Now().AddDate(0, 0, 3)
	deadline := timezone.Now().AddDate(0, 0, 5)

	tests := []struct {
		name        string
		bookingType model.Type
		existing    []model.Booking
		wantErr     bool
	}{
		{
			name:        "no prior booking on the property",
			bookingType: model.TypeVisit,
			existing:    []model.Booking{},
			wantErr:     false,
		},
		{
			name:        "active booking on the same property",
			bookingType: model.TypeVisit,
			existing: []model.Booking{
				{ID: "bk-9", PropertyID: "prop-1", Status: model.StatusPending},
			},
			wantErr: true,
		},
		{
			name:        "completed visit with an open window unlocks a booking",
			bookingType: model.TypeBooking,
			existing: []model.Booking{
				{
					ID:              "bk-9",
					PropertyID:      "prop-1",
					BookingType:     model.TypeVisit,
					Status:          model.StatusConfirmed,
					VisitCompleted:  true,
					BookingDeadline: &deadline,
				},
			},
			wantErr: false,
		},
		{
			name:        "completed visit does not unlock another visit",
			bookingType: model.TypeVisit,
			existing: []model.Booking{
				{
					ID:              "bk-9",
					PropertyID:      "prop-1",
					BookingType:     model.TypeVisit,
					Status:          model.StatusConfirmed,
					VisitCompleted:  true,
					BookingDeadline: &deadline,
				},
			},
			wantErr: true,
		},
		{
			name:        "expired booking window blocks a booking",
			bookingType: model.TypeBooking,
			existing: []model.Booking{
				{
					ID:              "bk-9",
					PropertyID:      "prop-1",
					BookingType:     model.TypeVisit,
					Status:          model.StatusConfirmed,
					VisitCompleted:  true,
					BookingDeadline: func() *time.Time { d := timezone.Now().AddDate(0, 0, -1); return &d }(),
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			checker, mockRepo, _ := newChecker(ctrl)

			mockRepo.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(tt.existing, nil)

			if !tt.wantErr {
				// The same-day sweep runs after the property check passes.
				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil)
			}

			err := checker.Check(context.Background(), "customer-1", tt.bookingType, availableProperty(), &preferredDate)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, http.StatusConflict, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChecker_SameDayRadius(t *testing.T) {
	preferredDate := timezone.Now().AddDate(0, 0, 3)

	// Thamel and Boudha are roughly 5.7 km apart, New Road is well inside a
	// five kilometre radius of Thamel.
	thamel := propertyAt("prop-1", 27.7172, 85.3240)
	boudha := propertyAt("prop-2", 27.7500, 85.3700)
	newRoad := propertyAt("prop-3", 27.7040, 85.3110)

	sameDayBooking := model.Booking{
		ID:            "bk-9",
		PropertyID:    "prop-2",
		CustomerID:    "customer-1",
		Status:        model.StatusConfirmed,
		PreferredDate: &preferredDate,
	}

	tests := []struct {
		name      string
		candidate propertyModel.Property
		booked    propertyModel.Property
		wantErr   bool
	}{
		{
			name:      "beyond the radius",
			candidate: thamel,
			booked:    boudha,
			wantErr:   true,
		},
		{
			name:      "within the radius",
			candidate: newRoad,
			booked:    thamel,
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			checker, mockRepo, mockPropertyRepo := newChecker(ctrl)

			gomock.InOrder(
				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil),
				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{sameDayBooking}, nil),
			)

			mockPropertyRepo.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(tt.booked, nil)

			err := checker.Check(context.Background(), "customer-1", model.TypeVisit, tt.candidate, &preferredDate)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, http.StatusConflict, failure.GetCode(err))
				assert.Contains(t, err.Error(), "within 5.0 km")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChecker_SameDayRadius_UnknownCandidateLocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	checker, mockRepo, _ := newChecker(ctrl)

	preferredDate := timezone.Now().AddDate(0, 0, 3)

	sameDayBooking := model.Booking{
		ID:            "bk-9",
		PropertyID:    "prop-2",
		CustomerID:    "customer-1",
		Status:        model.StatusConfirmed,
		PreferredDate: &preferredDate,
	}

	gomock.InOrder(
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{}, nil),
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{sameDayBooking}, nil),
	)

	unlocated := propertyModel.Property{ID: "prop-1", Status: propertyModel.StatusAvailable}

	err := checker.Check(context.Background(), "customer-1", model.TypeVisit, unlocated, &preferredDate)

	assert.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Contains(t, err.Error(), "location is unknown")
}

func TestChecker_NoPreferredDateSkipsRadiusCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	checker, mockRepo, _ := newChecker(ctrl)

	// A single GetAll: the same-day sweep never runs without a date.
	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Booking{}, nil)

	err := checker.Check(context.Background(), "customer-1", model.TypeBooking, availableProperty(), nil)

	assert.NoError(t, err)
}
