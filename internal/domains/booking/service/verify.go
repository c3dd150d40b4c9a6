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

	gDto "basera/shared/dto"

	"github.com/rs/zerolog/log"
)

// Verify applies an administrative decision to a booking and drives the
// matching payment action. The decision is authoritative: a gateway failure
// never rolls the status back, it is surfaced as a warning for manual
// reconciliation instead.
func (s *serviceImpl) Verify(ctx context.Context, id string, req dto.VerifyBookingRequest) (res dto.VerifyBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Verify")
	defer scope.End()
	defer scope.TraceIfError(err)

	target, err := model.ParseStatus(req.Status)
	if err != nil {
		return res, failure.BadRequest(err) //nolint:wrapcheck
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if err = verifierAllowed(ctx, booking); err != nil {
		return res, err
	}

	// Re-applying the same target is a no-op: no payment call runs twice.
	if booking.Status == target {
		res.ID = booking.ID
		res.Status = string(booking.Status)
		res.PaymentStatus = string(booking.PaymentStatus)

		return res, nil
	}

	if !transitionAllowed(booking.Status, target) {
		return res, failure.BadRequestFromString(fmt.Sprintf("cannot transition booking from %s to %s", booking.Status, target)) //nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	mod := map[string]any{
		model.FieldStatus:        string(target),
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	if req.AdminNotes != "" {
		mod[model.FieldAdminNotes] = req.AdminNotes
	}

	// verified_at/verified_by are stamped once, on first entry into a
	// decided state.
	if booking.VerifiedAt == nil {
		mod[model.FieldVerifiedAt] = now
		mod[model.FieldVerifiedBy] = user
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
				Field:    model.FieldStatus,
				Value:    string(booking.Status),
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	affected, err := s.repo.UpdateChecked(ctx, mod, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to update booking status")

		return res, fmt.Errorf("failed to update booking status: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict("booking was modified concurrently, please retry") //nolint:wrapcheck
	}

	paymentStatus, warning := s.settlePayment(ctx, booking, target)

	res.ID = booking.ID
	res.Status = string(target)
	res.PaymentStatus = string(paymentStatus)
	res.PaymentWarning = warning

	booking.Status = target
	booking.PaymentStatus = paymentStatus
	s.publishEvent(ctx, constant.TopicBookingVerified, booking)
	s.invalidateBooking(ctx, id)

	return res, nil
}

// verifierAllowed limits verification to administrators and the agent who
// owns the booked property.
func verifierAllowed(ctx context.Context, booking model.Booking) error {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	switch role {
	case constant.RoleSuperAdmin, constant.RoleAdmin:
		return nil
	case constant.RoleAgent:
		if booking.AgentID == user {
			return nil
		}
	}

	return failure.Forbidden("only an administrator or the property's agent can verify this booking") //nolint:wrapcheck
}

func transitionAllowed(from, to model.Status) bool {
	switch from {
	case model.StatusPending:
		return to == model.StatusConfirmed || to == model.StatusRejected || to == model.StatusCancelled
	case model.StatusConfirmed:
		return to == model.StatusCancelled
	default:
		return false
	}
}

// settlePayment runs the payment action matching the verification outcome and
// persists the resulting payment state. Failures come back as a warning
// message, never as an error.
func (s *serviceImpl) settlePayment(ctx context.Context, booking model.Booking, target model.Status) (model.PaymentStatus, string) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".settlePayment")
	defer scope.End()

	now := timezone.Now()
	mod := map[string]any{}
	status := booking.PaymentStatus
	warning := ""

	switch {
	case target == model.StatusConfirmed && booking.PaymentStatus == model.PaymentStatusAuthorized:
		receipt, err := s.gateway.Capture(ctx, booking.PaymentIntentReference)
		if err != nil {
			warning = fmt.Sprintf("payment capture failed, manual reconciliation required: %v", err)
		} else {
			status = model.PaymentStatusCaptured
			mod[model.FieldPaymentStatus] = string(status)
			mod[model.FieldPaymentIntentReference] = receipt
			mod[model.FieldCapturedAt] = now
		}

	case target == model.StatusConfirmed && booking.PaymentStatus == model.PaymentStatusCancelled:
		// The earlier hold was voided; place a fresh one, then capture.
		holdID, err := s.gateway.Authorize(ctx, booking.PaymentAmount, booking.TransactionID)
		if err != nil {
			warning = fmt.Sprintf("payment reauthorization failed, manual reconciliation required: %v", err)

			break
		}

		status = model.PaymentStatusAuthorized
		mod[model.FieldPaymentStatus] = string(status)
		mod[model.FieldPaymentIntentReference] = holdID
		mod[model.FieldAuthorizedAt] = now

		receipt, err := s.gateway.Capture(ctx, holdID)
		if err != nil {
			warning = fmt.Sprintf("payment capture after reauthorization failed, manual reconciliation required: %v", err)
		} else {
			status = model.PaymentStatusCaptured
			mod[model.FieldPaymentStatus] = string(status)
			mod[model.FieldPaymentIntentReference] = receipt
			mod[model.FieldCapturedAt] = now
		}

	case (target == model.StatusRejected || target == model.StatusCancelled) && booking.PaymentStatus == model.PaymentStatusAuthorized:
		if err := s.gateway.CancelAuthorization(ctx, booking.PaymentIntentReference); err != nil {
			warning = fmt.Sprintf("payment authorization cancel failed, manual reconciliation required: %v", err)
		} else {
			status = model.PaymentStatusCancelled
			mod[model.FieldPaymentStatus] = string(status)
		}

	case (target == model.StatusRejected || target == model.StatusCancelled) && booking.PaymentStatus == model.PaymentStatusCaptured:
		if err := s.gateway.Refund(ctx, booking.PaymentIntentReference); err != nil {
			warning = fmt.Sprintf("payment refund failed, manual reconciliation required: %v", err)
		} else {
			status = model.PaymentStatusRefunded
			mod[model.FieldPaymentStatus] = string(status)
			mod[model.FieldRefundedAt] = now
		}
	}

	if warning != "" {
		log.Warn().Str("bookingID", booking.ID).Str("warning", warning).Msg("payment settlement needs reconciliation")
		scope.SetAttribute("paymentWarning", warning)
	}

	if len(mod) > 0 {
		mod[constant.FieldModifiedAt] = now

		if err := s.repo.Update(ctx, mod, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to persist payment state")

			if warning == "" {
				warning = fmt.Sprintf("payment state could not be persisted, manual reconciliation required: %v", err)
			}
		}
	}

	return status, warning
}
