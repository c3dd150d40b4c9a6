package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"basera/config"
	"basera/infras/kafka"
	"basera/infras/otel"
	"basera/infras/payment"
	"basera/internal/domains/booking/model"
	"basera/internal/domains/booking/model/dto"
	"basera/internal/domains/booking/repository"
	"basera/shared"
	"basera/shared/cache"
	"basera/shared/constant"
	"basera/shared/failure"
	"basera/shared/timezone"
	"context"
	"errors"
	"fmt"

	feeService "basera/internal/domains/fee/service"
	propertyModel "basera/internal/domains/property/model"
	propertyRepo "basera/internal/domains/property/repository"
	gDto "basera/shared/dto"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Verify(ctx context.Context, id string, req dto.VerifyBookingRequest) (dto.VerifyBookingResponse, error)
	ConfirmVisitCompletion(ctx context.Context, id string) (dto.VisitCompletionResponse, error)
}

type serviceImpl struct {
	repo         repository.Booking
	propertyRepo propertyRepo.Property
	feeCalc      feeService.Calculator
	checker      Checker
	gateway      payment.Gateway
	kafka        kafka.Client
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	propertyRepo propertyRepo.Property,
	feeCalc feeService.Calculator,
	checker Checker,
	gateway payment.Gateway,
	kafkaClient kafka.Client,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		feeCalc:      feeCalc,
		checker:      checker,
		gateway:      gateway,
		kafka:        kafkaClient,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// Create validates, prices, and persists a new booking request. The payment
// is authorized (held), never captured here; capture happens at verification.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	customerID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	bookingType, err := model.ParseType(req.BookingType)
	if err != nil {
		return res, failure.BadRequest(err) //nolint:wrapcheck
	}

	preferredDate, err := req.ParsePreferredDate()
	if err != nil {
		return res, failure.BadRequest(err) //nolint:wrapcheck
	}

	if bookingType == model.TypeVisit && preferredDate == nil {
		return res, failure.BadRequestFromString("preferred_date is required for a visit") //nolint:wrapcheck
	}

	if preferredDate != nil {
		now := timezone.Now()
		dayStart, _ := timezone.DayBounds(now)

		if preferredDate.Before(dayStart) {
			return res, failure.BadRequestFromString("preferred_date cannot be in the past") //nolint:wrapcheck
		}

		if preferredDate.After(now.AddDate(0, 0, s.cfg.Booking.MaxAdvanceDays)) {
			return res, failure.BadRequestFromString(fmt.Sprintf("preferred_date cannot be more than %d days ahead", s.cfg.Booking.MaxAdvanceDays)) //nolint:wrapcheck
		}
	}

	property, err := s.propertyRepo.Get(ctx, shared.FilterByID(req.PropertyID, propertyModel.FieldID, propertyModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get property")

		return res, fmt.Errorf("failed to get property: %w", err)
	}

	if property.ID == constant.Empty {
		return res, failure.BadRequestFromString("property does not exist") //nolint:wrapcheck
	}

	if property.Status != propertyModel.StatusAvailable {
		return res, failure.BadRequestFromString("property is not available") //nolint:wrapcheck
	}

	if err = s.checker.Check(ctx, customerID, bookingType, property, preferredDate); err != nil {
		return res, err
	}

	amount, err := s.feeCalc.Amount(ctx, bookingType, customerID, property.AgentID, preferredDate)
	if err != nil {
		return res, fmt.Errorf("failed to calculate fee: %w", err)
	}

	booking := req.ToModel(customerID, property.AgentID, preferredDate, amount)

	holdID, err := s.gateway.Authorize(ctx, amount, booking.TransactionID)
	if err != nil {
		log.Error().Err(err).Str("transactionID", booking.TransactionID).Msg("failed to authorize payment")

		return res, fmt.Errorf("failed to authorize payment: %w", err)
	}

	now := timezone.Now()
	booking.PaymentIntentReference = holdID
	booking.PaymentStatus = model.PaymentStatusAuthorized
	booking.AuthorizedAt = &now

	if err = s.repo.Insert(ctx, booking); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation {
			return res, failure.Conflict("a booking with this transaction id already exists") //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publishEvent(ctx, constant.TopicBookingCreated, booking)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.getOwned(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

// getOwned loads a booking and enforces resource-level access: a customer
// only sees their own bookings, an agent only bookings on their properties.
func (s *serviceImpl) getOwned(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	switch role {
	case constant.RoleCustomer:
		if booking.CustomerID != user {
			return booking, failure.ResourceRestrictedError
		}
	case constant.RoleAgent:
		if booking.AgentID != user && booking.CustomerID != user {
			return booking, failure.ResourceRestrictedError
		}
	}

	return booking, nil
}

// publishEvent fans the booking state out on Kafka without blocking the
// request path.
func (s *serviceImpl) publishEvent(ctx context.Context, topic string, booking model.Booking) {
	if !s.cfg.Kafka.Enable {
		return
	}

	var payload dto.BookingResponse
	payload.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		msg := kafka.Message{
			Key:   booking.ID,
			Value: payload,
		}

		if err := s.kafka.SendMessages(c, topic, msg); err != nil {
			log.Error().Err(err).Str("topic", topic).Str("bookingID", booking.ID).Msg("failed to publish booking event")
		}
	}()
}

func (s *serviceImpl) invalidateBooking(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}
