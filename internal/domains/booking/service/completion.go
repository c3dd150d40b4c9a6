package service

import (
	"basera/internal/domains/booking/model"
	"basera/internal/domains/booking/model/dto"
	"basera/shared"
	"basera/shared/constant"
	"basera/shared/failure"
	"basera/shared/timezone"
	"context"
	"fmt"
	"time"

	gDto "basera/shared/dto"

	"github.com/rs/zerolog/log"
)

// ConfirmVisitCompletion records the calling party's half of the visit
// completion handshake. The visit counts as completed only when both the
// agent and the customer have confirmed; at that point a time-boxed booking
// right on the property is unlocked.
func (s *serviceImpl) ConfirmVisitCompletion(ctx context.Context, id string) (res dto.VisitCompletionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConfirmVisitCompletion")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if booking.BookingType != model.TypeVisit {
		return res, failure.BadRequestFromString("only visit bookings have a completion handshake") //nolint:wrapcheck
	}

	if booking.Status != model.StatusConfirmed {
		return res, failure.BadRequestFromString("visit completion requires a confirmed booking") //nolint:wrapcheck
	}

	if booking.PreferredDate == nil {
		return res, failure.BadRequestFromString("visit has no scheduled time") //nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var confirmedField, confirmedAtField string
	var alreadyConfirmed bool

	switch user {
	case booking.AgentID:
		confirmedField = model.FieldAgentConfirmed
		confirmedAtField = model.FieldAgentConfirmedAt
		alreadyConfirmed = booking.AgentConfirmed
	case booking.CustomerID:
		confirmedField = model.FieldCustomerConfirmed
		confirmedAtField = model.FieldCustomerConfirmedAt
		alreadyConfirmed = booking.CustomerConfirmed
	default:
		return res, failure.Forbidden("only the property's agent or the booking's customer can confirm visit completion") //nolint:wrapcheck
	}

	now := timezone.Now()

	// Confirmation opens a grace window before the scheduled time, never
	// earlier.
	earliest := booking.PreferredDate.Add(-time.Duration(s.cfg.Booking.VisitGraceMinutes) * time.Minute)
	if now.Before(earliest) {
		remaining := earliest.Sub(now).Round(time.Minute)

		return res, failure.BadRequestFromString(fmt.Sprintf("visit completion opens at %s, try again in %s",
			timezone.Format(earliest, constant.DateFormat), remaining)) //nolint:wrapcheck
	}

	if !alreadyConfirmed {
		mod := map[string]any{
			confirmedField:           true,
			confirmedAtField:         now,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: user,
		}

		filter := gDto.FilterGroup{
			Filters: []any{
				gDto.Filter{
					Field:    model.FieldID,
					Value:    booking.ID,
					Operator: gDto.FilterOperatorEq,
					Table:    model.TableName,
				},
				gDto.Filter{
					Field:    confirmedField,
					Value:    false,
					Operator: gDto.FilterOperatorEq,
					Table:    model.TableName,
				},
			},
		}

		// Zero rows means a concurrent duplicate confirmation already
		// landed; treat it like a repeat attempt.
		affected, err := s.repo.UpdateChecked(ctx, mod, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to record visit confirmation")

			return res, fmt.Errorf("failed to record visit confirmation: %w", err)
		}

		alreadyConfirmed = affected == 0
	}

	booking, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to reload booking")

		return res, fmt.Errorf("failed to reload booking: %w", err)
	}

	if booking.AgentConfirmed && booking.CustomerConfirmed && !booking.VisitCompleted {
		if err = s.finalizeCompletion(ctx, &booking, now); err != nil {
			return res, err
		}
	}

	s.invalidateBooking(ctx, id)

	res.FromModel(booking, timezone.Now())
	res.AlreadyConfirmed = alreadyConfirmed

	return res, nil
}

// finalizeCompletion marks the visit completed and stamps the booking
// deadline exactly once, even when both confirmations land concurrently.
func (s *serviceImpl) finalizeCompletion(ctx context.Context, booking *model.Booking, now time.Time) error {
	deadline := now.Add(time.Duration(s.cfg.Booking.VisitBookingWindowDays) * 24 * time.Hour)

	mod := map[string]any{
		model.FieldVisitCompleted:   true,
		model.FieldVisitCompletedAt: now,
		model.FieldBookingDeadline:  deadline,
		constant.FieldModifiedAt:    now,
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    booking.ID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldAgentConfirmed,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldCustomerConfirmed,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldVisitCompleted,
				Value:    false,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	affected, err := s.repo.UpdateChecked(ctx, mod, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to finalize visit completion")

		return fmt.Errorf("failed to finalize visit completion: %w", err)
	}

	if affected > 0 {
		booking.VisitCompleted = true
		booking.VisitCompletedAt = &now
		booking.BookingDeadline = &deadline

		s.publishEvent(ctx, constant.TopicBookingVisitCompleted, *booking)

		return nil
	}

	// The concurrent confirmation won the race and set the deadline; reload
	// so the response reflects the stamped values.
	reloaded, err := s.repo.Get(ctx, shared.FilterByID(booking.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to reload completed booking")

		return fmt.Errorf("failed to reload completed booking: %w", err)
	}

	*booking = reloaded

	return nil
}
