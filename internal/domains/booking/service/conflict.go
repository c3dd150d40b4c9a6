package service

//go:generate go run go.uber.org/mock/mockgen -source=./conflict.go -destination=../mocks/conflict_mock.go -package=mocks

import (
	"basera/config"
	"basera/infras/otel"
	"basera/internal/domains/booking/model"
	"basera/internal/domains/booking/model/dto"
	"basera/internal/domains/booking/repository"
	"basera/shared"
	"basera/shared/constant"
	"basera/shared/failure"
	"basera/shared/geo"
	"basera/shared/timezone"
	"context"
	"fmt"
	"math"
	"time"

	propertyModel "basera/internal/domains/property/model"
	propertyRepo "basera/internal/domains/property/repository"
	gDto "basera/shared/dto"

	"github.com/rs/zerolog/log"
)

// Checker decides whether a candidate booking request is compatible with the
// customer's existing schedule. Read-only; all rejections carry the
// conflicting bookings in the error message.
type Checker interface {
	Check(ctx context.Context, customerID string, bookingType model.Type, candidate propertyModel.Property, preferredDate *time.Time) error
}

type checkerImpl struct {
	repo         repository.Booking
	propertyRepo propertyRepo.Property
	cfg          *config.Config
	otel         otel.Otel
}

func NewChecker(repo repository.Booking, propertyRepo propertyRepo.Property, cfg *config.Config, otel otel.Otel) Checker {
	return &checkerImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		cfg:          cfg,
		otel:         otel,
	}
}

func (c *checkerImpl) Check(ctx context.Context, customerID string, bookingType model.Type, candidate propertyModel.Property, preferredDate *time.Time) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckConflict")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = c.checkSameProperty(ctx, customerID, bookingType, candidate.ID); err != nil {
		return err
	}

	return c.checkSameDayRadius(ctx, customerID, candidate, preferredDate)
}

// checkSameProperty rejects a second non-rejected booking on the same
// property. The one exception: a completed visit whose booking window is
// still open unlocks a booking-type request for that property.
func (c *checkerImpl) checkSameProperty(ctx context.Context, customerID string, bookingType model.Type, propertyID string) error {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCustomerID,
				Value:    customerID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldPropertyID,
				Value:    propertyID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    string(model.StatusRejected),
				Operator: gDto.FilterOperatorNotEq,
				Table:    model.TableName,
			},
		},
	}

	existing, err := c.repo.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get same-property bookings")

		return fmt.Errorf("failed to get same-property bookings: %w", err)
	}

	if len(existing) == 0 {
		return nil
	}

	if bookingType == model.TypeBooking {
		now := timezone.Now()
		unlocked := true

		for i := range existing {
			if !existing[i].CanBookNow(now) {
				unlocked = false
				break
			}
		}

		if unlocked {
			return nil
		}
	}

	details := make([]dto.ConflictDetail, len(existing))
	for i := range existing {
		details[i] = dto.ConflictDetail{
			BookingID:  existing[i].ID,
			PropertyID: existing[i].PropertyID,
		}
	}

	return failure.Conflict(dto.FormatConflicts("you already have a booking for this property", details)) //nolint:wrapcheck
}

// checkSameDayRadius enforces the same-calendar-day distance rule: all of a
// customer's active bookings on one day must sit within the configured radius
// of each other.
func (c *checkerImpl) checkSameDayRadius(ctx context.Context, customerID string, candidate propertyModel.Property, preferredDate *time.Time) error {
	if preferredDate == nil {
		return nil
	}

	dayStart, dayEnd := timezone.DayBounds(*preferredDate)

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCustomerID,
				Value:    customerID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    []string{string(model.StatusPending), string(model.StatusConfirmed)},
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "day_start",
				Field:    model.FieldPreferredDate,
				Value:    dayStart,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "day_end",
				Field:    model.FieldPreferredDate,
				Value:    dayEnd,
				Operator: gDto.FilterOperatorLess,
				Table:    model.TableName,
			},
		},
	}

	sameDay, err := c.repo.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get same-day bookings")

		return fmt.Errorf("failed to get same-day bookings: %w", err)
	}

	if len(sameDay) == 0 {
		return nil
	}

	candidatePoint := geo.Point{Latitude: candidate.Latitude, Longitude: candidate.Longitude}

	// A candidate without coordinates cannot be proven safe against any
	// same-day booking.
	if !candidatePoint.Known() {
		details := make([]dto.ConflictDetail, len(sameDay))
		for i := range sameDay {
			details[i] = dto.ConflictDetail{
				BookingID:  sameDay[i].ID,
				PropertyID: sameDay[i].PropertyID,
			}
		}

		return failure.Conflict(dto.FormatConflicts("property location is unknown and cannot be checked against your same-day bookings", details)) //nolint:wrapcheck
	}

	details := []dto.ConflictDetail{}

	for i := range sameDay {
		booked, err := c.propertyRepo.Get(ctx, shared.FilterByID(sameDay[i].PropertyID, propertyModel.FieldID, propertyModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get booked property")

			return fmt.Errorf("failed to get booked property: %w", err)
		}

		distance := geo.Distance(candidatePoint, geo.Point{Latitude: booked.Latitude, Longitude: booked.Longitude})
		if distance <= c.cfg.Booking.ConflictRadiusKM {
			continue
		}

		detail := dto.ConflictDetail{
			BookingID:  sameDay[i].ID,
			PropertyID: sameDay[i].PropertyID,
		}

		if !math.IsInf(distance, 1) {
			detail.DistanceKM = &distance
		}

		details = append(details, detail)
	}

	if len(details) > 0 {
		reason := fmt.Sprintf("same-day bookings must be within %.1f km of each other", c.cfg.Booking.ConflictRadiusKM)

		return failure.Conflict(dto.FormatConflicts(reason, details)) //nolint:wrapcheck
	}

	return nil
}
