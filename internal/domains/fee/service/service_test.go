package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"basera/config"
	"basera/infras/otel/mocks"
	bookingMocks "basera/internal/domains/booking/mocks"
	bookingModel "basera/internal/domains/booking/model"
	feeMocks "basera/internal/domains/fee/mocks"
	"basera/internal/domains/fee/model"
	"basera/internal/domains/fee/model/dto"
	"basera/internal/domains/fee/service"
	"basera/shared/cache"
	cacheMocks "basera/shared/cache/mocks"
	gModel "basera/shared/model"
	"basera/shared/timezone"
)

func feeTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.DefaultBookingFee = 500
	cfg.Booking.DefaultVisitFee = 500
	cfg.Booking.RepeatCustomerFee = 250

	return cfg
}

func TestFeeService_Current(t *testing.T) {
	tests := []struct {
		name           string
		activeFee      model.BookingFee
		wantBookingFee float64
		wantVisitFee   float64
	}{
		{
			name: "active row wins",
			activeFee: model.BookingFee{
				ID:         "fee-1",
				BookingFee: 600,
				VisitFee:   300,
				IsActive:   true,
				Metadata: gModel.Metadata{
					CreatedAt:  timezone.Now(),
					ModifiedAt: timezone.Now(),
				},
			},
			wantBookingFee: 600,
			wantVisitFee:   300,
		},
		{
			name:           "defaults when no active row",
			activeFee:      model.BookingFee{},
			wantBookingFee: 500,
			wantVisitFee:   500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := feeMocks.NewMockFee(ctrl)
			mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
			mockCache := cacheMocks.NewMockRedisCache(ctrl)
			mockOtel := mocks.NewOtel()

			mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
			mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

			mockRepo.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(tt.activeFee, nil)

			svc := service.New(mockRepo, mockBookingRepo, feeTestConfig(), mockCache, mockOtel)

			res, err := svc.Current(context.Background())

			assert.NoError(t, err)
			assert.Equal(t, tt.wantBookingFee, res.BookingFee)
			assert.Equal(t, tt.wantVisitFee, res.VisitFee)
		})
	}
}

func TestFeeService_Amount(t *testing.T) {
	preferredDate := timezone.Now().AddDate(0, 0, 3)

	tests := []struct {
		name          string
		bookingType   bookingModel.Type
		preferredDate *time.Time
		historyCount  int
		want          float64
	}{
		{
			name:          "first contact pays the base fee",
			bookingType:   bookingModel.TypeBooking,
			preferredDate: &preferredDate,
			historyCount:  0,
			want:          500,
		},
		{
			name:          "repeat customer with same agent on a different date pays the discounted tier",
			bookingType:   bookingModel.TypeBooking,
			preferredDate: &preferredDate,
			historyCount:  1,
			want:          250,
		},
		{
			name:          "visit type uses the visit fee",
			bookingType:   bookingModel.TypeVisit,
			preferredDate: &preferredDate,
			historyCount:  0,
			want:          500,
		},
		{
			name:          "undated booking still gets the discount",
			bookingType:   bookingModel.TypeBooking,
			preferredDate: nil,
			historyCount:  2,
			want:          250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := feeMocks.NewMockFee(ctrl)
			mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
			mockCache := cacheMocks.NewMockRedisCache(ctrl)
			mockOtel := mocks.NewOtel()

			mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
			mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

			mockRepo.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(model.BookingFee{}, nil)

			mockBookingRepo.EXPECT().
				Count(gomock.Any(), gomock.Any()).
				Return(tt.historyCount, nil)

			svc := service.New(mockRepo, mockBookingRepo, feeTestConfig(), mockCache, mockOtel)

			amount, err := svc.Amount(context.Background(), tt.bookingType, "customer-1", "agent-1", tt.preferredDate)

			assert.NoError(t, err)
			assert.Equal(t, tt.want, amount)
		})
	}
}

func TestFeeService_Update(t *testing.T) {
	bookingFee := 650.0

	t.Run("creates the configuration when none is active", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := feeMocks.NewMockFee(ctrl)
		mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
		mockCache := cacheMocks.NewMockRedisCache(ctrl)
		mockOtel := mocks.NewOtel()

		mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.BookingFee{}, nil)

		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fee model.BookingFee) error {
				assert.Equal(t, 650.0, fee.BookingFee)
				assert.Equal(t, 500.0, fee.VisitFee)
				assert.True(t, fee.IsActive)

				return nil
			})

		svc := service.New(mockRepo, mockBookingRepo, feeTestConfig(), mockCache, mockOtel)

		err := svc.Update(context.Background(), dto.UpdateFeeRequest{BookingFee: &bookingFee})

		assert.NoError(t, err)
	})

	t.Run("updates the active configuration in place", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := feeMocks.NewMockFee(ctrl)
		mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
		mockCache := cacheMocks.NewMockRedisCache(ctrl)
		mockOtel := mocks.NewOtel()

		mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.BookingFee{ID: "fee-1", BookingFee: 500, VisitFee: 500, IsActive: true}, nil)

		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		svc := service.New(mockRepo, mockBookingRepo, feeTestConfig(), mockCache, mockOtel)

		err := svc.Update(context.Background(), dto.UpdateFeeRequest{BookingFee: &bookingFee})

		assert.NoError(t, err)
	})
}
