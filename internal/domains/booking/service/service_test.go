package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"basera/config"
	kafkaMocks "basera/infras/kafka/mocks"
	"basera/infras/otel/mocks"
	paymentMocks "basera/infras/payment/mocks"
	bookingMocks "basera/internal/domains/booking/mocks"
	"basera/internal/domains/booking/model"
	"basera/internal/domains/booking/model/dto"
	"basera/internal/domains/booking/service"
	feeMocks "basera/internal/domains/fee/mocks"
	propertyMocks "basera/internal/domains/property/mocks"
	propertyModel "basera/internal/domains/property/model"
	"basera/shared/cache"
	cacheMocks "basera/shared/cache/mocks"
	"basera/shared/constant"
	"basera/shared/failure"
	"basera/shared/timezone"
)

type bookingServiceMocks struct {
	repo         *bookingMocks.MockBooking
	propertyRepo *propertyMocks.MockProperty
	feeCalc      *feeMocks.MockCalculator
	checker      *bookingMocks.MockChecker
	gateway      *paymentMocks.MockGateway
	cache        *cacheMocks.MockRedisCache
}

func bookingTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.ConflictRadiusKM = 5.0
	cfg.Booking.MaxAdvanceDays = 180
	cfg.Booking.VisitGraceMinutes = 30
	cfg.Booking.VisitBookingWindowDays = 7
	cfg.Booking.DefaultBookingFee = 500
	cfg.Booking.DefaultVisitFee = 500
	cfg.Booking.RepeatCustomerFee = 250

	return cfg
}

func newBookingService(ctrl *gomock.Controller) (service.Booking, bookingServiceMocks) {
	m := bookingServiceMocks{
		repo:         bookingMocks.NewMockBooking(ctrl),
		propertyRepo: propertyMocks.NewMockProperty(ctrl),
		feeCalc:      feeMocks.NewMockCalculator(ctrl),
		checker:      bookingMocks.NewMockChecker(ctrl),
		gateway:      paymentMocks.NewMockGateway(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
	}

	m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
	m.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(
		m.repo,
		m.propertyRepo,
		m.feeCalc,
		m.checker,
		m.gateway,
		kafkaMocks.NewMockClient(ctrl),
		bookingTestConfig(),
		m.cache,
		mocks.NewOtel(),
	)

	return svc, m
}

func customerContext(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleCustomer)
}

func availableProperty() propertyModel.Property {
	lat := 27.7172
	lon := 85.3240

	return propertyModel.Property{
		ID:        "prop-1",
		AgentID:   "agent-1",
		Title:     "Two-bedroom flat",
		Latitude:  &lat,
		Longitude: &lon,
		Status:    propertyModel.StatusAvailable,
	}
}

func TestBookingService_Create(t *testing.T) {
	futureDate := timezone.Format(timezone.Now().AddDate(0, 0, 2), constant.DateFormat)

	baseRequest := func() dto.CreateBookingRequest {
		return dto.CreateBookingRequest{
			PropertyID:    "prop-1",
			BookingType:   "visit",
			CustomerName:  "Sita Sharma",
			CustomerEmail: "sita@example.com",
			PreferredDate: futureDate,
			PaymentMethod: "card",
		}
	}

	t.Run("creates an authorized pending booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.propertyRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableProperty(), nil)
		m.checker.EXPECT().Check(gomock.Any(), "customer-1", model.TypeVisit, gomock.Any(), gomock.Any()).Return(nil)
		m.feeCalc.EXPECT().Amount(gomock.Any(), model.TypeVisit, "customer-1", "agent-1", gomock.Any()).Return(500.0, nil)
		m.gateway.EXPECT().Authorize(gomock.Any(), 500.0, gomock.Any()).Return("auth-hold-1", nil)

		m.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, booking model.Booking) error {
				assert.Equal(t, model.StatusPending, booking.Status)
				assert.Equal(t, model.PaymentStatusAuthorized, booking.PaymentStatus)
				assert.Equal(t, "auth-hold-1", booking.PaymentIntentReference)
				assert.Equal(t, 500.0, booking.PaymentAmount)
				assert.Equal(t, "agent-1", booking.AgentID)
				assert.NotEmpty(t, booking.TransactionID)
				assert.NotNil(t, booking.AuthorizedAt)

				return nil
			})

		res, err := svc.Create(customerContext("customer-1"), baseRequest())

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusPending), res.Status)
		assert.Equal(t, string(model.PaymentStatusAuthorized), res.PaymentStatus)
	})

	t.Run("rejects a visit without a preferred date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newBookingService(ctrl)

		req := baseRequest()
		req.PreferredDate = ""

		_, err := svc.Create(customerContext("customer-1"), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("rejects an unknown booking type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newBookingService(ctrl)

		req := baseRequest()
		req.BookingType = "rental"

		_, err := svc.Create(customerContext("customer-1"), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("rejects a date beyond the advance window", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newBookingService(ctrl)

		req := baseRequest()
		req.PreferredDate = timezone.Format(timezone.Now().AddDate(0, 0, 200), constant.DateFormat)

		_, err := svc.Create(customerContext("customer-1"), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("rejects a missing property", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.propertyRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(propertyModel.Property{}, nil)

		_, err := svc.Create(customerContext("customer-1"), baseRequest())

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("rejects an unavailable property", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		property := availableProperty()
		property.Status = propertyModel.StatusUnavailable

		m.propertyRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(property, nil)

		_, err := svc.Create(customerContext("customer-1"), baseRequest())

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("propagates a scheduling conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.propertyRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableProperty(), nil)
		m.checker.EXPECT().
			Check(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(failure.Conflict("you already have a booking for this property"))

		_, err := svc.Create(customerContext("customer-1"), baseRequest())

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("fails when the payment hold cannot be placed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.propertyRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableProperty(), nil)
		m.checker.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		m.feeCalc.EXPECT().Amount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(500.0, nil)
		m.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any(), gomock.Any()).Return("", assert.AnError)

		_, err := svc.Create(customerContext("customer-1"), baseRequest())

		assert.Error(t, err)
	})

	t.Run("maps a duplicate transaction id to a conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.propertyRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableProperty(), nil)
		m.checker.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		m.feeCalc.EXPECT().Amount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(500.0, nil)
		m.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any(), gomock.Any()).Return("auth-hold-1", nil)
		m.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeUniqueViolation)})

		_, err := svc.Create(customerContext("customer-1"), baseRequest())

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestBookingService_Get(t *testing.T) {
	t.Run("customer cannot read another customer's booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{ID: "bk-1", CustomerID: "customer-2", AgentID: "agent-1"}, nil)

		_, err := svc.Get(customerContext("customer-1"), "bk-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("owner reads their booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{ID: "bk-1", CustomerID: "customer-1", AgentID: "agent-1", Status: model.StatusPending}, nil)

		res, err := svc.Get(customerContext("customer-1"), "bk-1")

		assert.NoError(t, err)
		assert.Equal(t, "bk-1", res.ID)
	})

	t.Run("missing booking is a not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newBookingService(ctrl)

		m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

		_, err := svc.Get(customerContext("customer-1"), "bk-404")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
