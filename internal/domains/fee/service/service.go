package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"basera/config"
	"basera/infras/otel"
	bookingModel "basera/internal/domains/booking/model"
	bookingRepo "basera/internal/domains/booking/repository"
	"basera/internal/domains/fee/model"
	"basera/internal/domains/fee/model/dto"
	"basera/internal/domains/fee/repository"
	"basera/shared"
	"basera/shared/cache"
	"basera/shared/constant"
	"basera/shared/timezone"
	"context"
	"fmt"
	"time"

	gDto "basera/shared/dto"
	gModel "basera/shared/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheCurrentFee = "fee:current"
)

// Calculator resolves the fee charged for a booking or visit request.
type Calculator interface {
	Current(ctx context.Context) (dto.FeeResponse, error)
	Amount(ctx context.Context, bookingType bookingModel.Type, customerID, agentID string, preferredDate *time.Time) (float64, error)
	Update(ctx context.Context, req dto.UpdateFeeRequest) error
}

type serviceImpl struct {
	repo        repository.Fee
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(repo repository.Fee, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Calculator {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func activeFeeFilter() gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldIsActive,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}
}

// Current returns the active fee configuration, falling back to the
// configured defaults when no row is active.
func (s *serviceImpl) Current(ctx context.Context) (res dto.FeeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Current")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = s.cache.Get(ctx, cacheCurrentFee, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheCurrentFee).Msg("cache hit for current fee")

		return res, nil
	}

	fee, err := s.repo.Get(ctx, activeFeeFilter())
	if err != nil {
		log.Error().Err(err).Msg("failed to get active fee")

		return res, fmt.Errorf("failed to get active fee: %w", err)
	}

	if fee.ID == constant.Empty {
		res.BookingFee = s.cfg.Booking.DefaultBookingFee
		res.VisitFee = s.cfg.Booking.DefaultVisitFee

		return res, nil
	}

	res.FromModel(fee)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheCurrentFee, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save current fee to cache")
		}
	}()

	return res, nil
}

// Amount prices a booking or visit request. The base fee comes from the
// active configuration; a customer who already holds an active booking with
// the same agent on a different calendar day pays the repeat-customer tier
// instead. Same-day bookings are excluded here since the conflict check
// already accounts for them.
func (s *serviceImpl) Amount(ctx context.Context, bookingType bookingModel.Type, customerID, agentID string, preferredDate *time.Time) (res float64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Amount")
	defer scope.End()
	defer scope.TraceIfError(err)

	current, err := s.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current fee: %w", err)
	}

	base := current.BookingFee
	if bookingType == bookingModel.TypeVisit {
		base = current.VisitFee
	}

	filters := []any{
		gDto.Filter{
			Field:    bookingModel.FieldCustomerID,
			Value:    customerID,
			Operator: gDto.FilterOperatorEq,
			Table:    bookingModel.TableName,
		},
		gDto.Filter{
			Field:    bookingModel.FieldAgentID,
			Value:    agentID,
			Operator: gDto.FilterOperatorEq,
			Table:    bookingModel.TableName,
		},
		gDto.Filter{
			Field:    bookingModel.FieldStatus,
			Value:    []string{string(bookingModel.StatusPending), string(bookingModel.StatusConfirmed)},
			Operator: gDto.FilterOperatorIn,
			Table:    bookingModel.TableName,
		},
	}

	if preferredDate != nil {
		dayStart, dayEnd := timezone.DayBounds(*preferredDate)

		filters = append(filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{
					ArgName:  "pd_before",
					Field:    bookingModel.FieldPreferredDate,
					Value:    dayStart,
					Operator: gDto.FilterOperatorLess,
					Table:    bookingModel.TableName,
				},
				gDto.Filter{
					ArgName:  "pd_after",
					Field:    bookingModel.FieldPreferredDate,
					Value:    dayEnd,
					Operator: gDto.FilterOperatorGreaterEq,
					Table:    bookingModel.TableName,
				},
			},
		})
	}

	count, err := s.bookingRepo.Count(ctx, gDto.FilterGroup{Filters: filters})
	if err != nil {
		log.Error().Err(err).Msg("failed to count agent history for fee discount")

		return 0, fmt.Errorf("failed to count agent history: %w", err)
	}

	if count > 0 {
		scope.SetAttribute("repeatCustomer", true)

		return s.cfg.Booking.RepeatCustomerFee, nil
	}

	return base, nil
}

// Update changes the active fee configuration, creating the row when none
// exists yet.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateFeeRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	fee, err := s.repo.Get(ctx, activeFeeFilter())
	if err != nil {
		log.Error().Err(err).Msg("failed to get active fee")

		return fmt.Errorf("failed to get active fee: %w", err)
	}

	if fee.ID == constant.Empty {
		newFee := model.BookingFee{
			ID:         uuid.NewString(),
			BookingFee: s.cfg.Booking.DefaultBookingFee,
			VisitFee:   s.cfg.Booking.DefaultVisitFee,
			IsActive:   true,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  user,
				ModifiedBy: user,
			},
		}

		if req.BookingFee != nil {
			newFee.BookingFee = *req.BookingFee
		}

		if req.VisitFee != nil {
			newFee.VisitFee = *req.VisitFee
		}

		if err = s.repo.Insert(ctx, newFee); err != nil {
			log.Error().Err(err).Msg("failed to create fee configuration")

			return fmt.Errorf("failed to create fee configuration: %w", err)
		}
	} else {
		updatedFields := shared.TransformFields(req, user)
		if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(fee.ID, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Msg("failed to update fee configuration")

			return fmt.Errorf("failed to update fee configuration: %w", err)
		}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, cacheCurrentFee); err != nil {
			log.Error().Err(err).Msg("failed to delete current fee from cache")
		}
	}()

	return nil
}
