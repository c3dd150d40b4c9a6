package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"basera/internal/domains/booking/model"
	"basera/internal/domains/booking/model/dto"
	"basera/shared/constant"
	"basera/shared/failure"
)

func adminContext(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)
}

func agentContext(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAgent)
}

func pendingBooking(paymentStatus model.PaymentStatus) model.Booking {
	return model.Booking{
		ID:                     "bk-1",
		PropertyID:             "prop-1",
		AgentID:                "agent-1",
		CustomerID:             "customer-1",
		BookingType:            model.TypeBooking,
		PaymentIntentReference: "auth-hold-1",
		PaymentAmount:          500,
		PaymentStatus:          paymentStatus,
		Status:                 model.StatusPending,
		TransactionID:          "txn-1",
	}
}

func TestBookingService_Verify_Transitions(t *testing.T) {
	tests := []struct {
		name              string
		booking           model.Booking
		target            string
		setupGateway      func(m bookingServiceMocks)
		wantPaymentStatus model.PaymentStatus
		wantWarning       bool
	}{
		{
			name:    "pending to confirmed captures the hold",
			booking: pendingBooking(model.PaymentStatusAuthorized),
			target:  "confirmed",
			setupGateway: func(m bookingServiceMocks) {
				m.gateway.EXPECT().Capture(gomock.Any(), "auth-hold-1").Return("rcpt-1", nil)
			},
			wantPaymentStatus: model.PaymentStatusCaptured,
		},
		{
			name:    "pending to confirmed with a voided hold reauthorizes then captures",
			booking: pendingBooking(model.PaymentStatusCancelled),
			target:  "confirmed",
			setupGateway: func(m bookingServiceMocks) {
				m.gateway.EXPECT().Authorize(gomock.Any(), 500.0, "txn-1").Return("auth-hold-2", nil)
				m.gateway.EXPECT().Capture(gomock.Any(), "auth-hold-2").Return("rcpt-2", nil)
			},
			wantPaymentStatus: model.PaymentStatusCaptured,
		},
		{
			name:    "pending to rejected voids the hold",
			booking: pendingBooking(model.PaymentStatusAuthorized),
			target:  "rejected",
			setupGateway: func(m bookingServiceMocks) {
				m.gateway.EXPECT().CancelAuthorization(gomock.Any(), "auth-hold-1").Return(nil)
			},
			wantPaymentStatus: model.PaymentStatusCancelled,
		},
		{
			name:    "pending to rejected after capture refunds",
			booking: pendingBooking(model.PaymentStatusCaptured),
			target:  "rejected",
			setupGateway: func(m bookingServiceMocks) {
				m.gateway.EXPECT().Refund(gomock.Any(), "auth-hold-1").Return(nil)
			},
			wantPaymentStatus: model.PaymentStatusRefunded,
		},
		{
			name: "confirmed to cancelled refunds the captured payment",
			booking: func() model.Booking {
				b := pendingBooking(model.PaymentStatusCaptured)
				b.Status = model.StatusConfirmed
				return b
			}(),
			target: "cancelled",
			setupGateway: func(m bookingServiceMocks) {
				m.gateway.EXPECT().Refund(gomock.Any(), "auth-hold-1").Return(nil)
			},
			wantPaymentStatus: model.PaymentStatusRefunded,
		},
		{
			name:    "pending to cancelled voids the hold",
			booking: pendingBooking(model.PaymentStatusAuthorized),
			target:  "cancelled",
			setupGateway: func(m bookingServiceMocks) {
				m.gateway.EXPECT().CancelAuthorization(gomock.Any(), "auth-hold-1").Return(nil)
			},
			wantPaymentStatus: model.PaymentStatusCancelled,
		},
		{
			name:    "capture failure surfaces a warning but keeps the decision",
			booking: pendingBooking(model.PaymentStatusAuthorized),
			target:  "confirmed",
			setupGateway: func(m bookingServiceMocks) {
				m.gateway.EXPECT().Capture(gomock.Any(), "auth-hold-1").Return("", assert.AnError)
			},
			wantPaymentStatus: model.PaymentStatusAuthorized,
			wantWarning:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newBookingService(ctrl)

			m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.booking, nil)
			m.repo.EXPECT().UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

			tt.setupGateway(m)

			res, err := svc.Verify(adminContext("admin-1"), tt.booking.ID, dto.VerifyBookingRequest{Status: tt.target})

			assert.NoError(t, err)
			assert.Equal(t, tt.target, res.Status)
			assert.Equal(t, string(tt.wantPaymentStatus), res.PaymentStatus)

			if tt.wantWarning {
				assert.NotEmpty(t, res.PaymentWarning)
			} else {
				assert.Empty(t, res.PaymentWarning)
			}
		})
	}
}

func TestBookingService_Verify_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newBookingService(ctrl)

	booking := pendingBooking(model.PaymentStatusCaptured)
	booking.Status = model.StatusConfirmed

	// No gateway expectations: re-applying the same target must not touch
	// the payment provider.
	m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)

	res, err := svc.Verify(adminContext("admin-1"), booking.ID, dto.VerifyBookingRequest{Status: "confirmed"})

	assert.NoError(t, err)
	assert.Equal(t, "confirmed", res.Status)
	assert.Equal(t, string(model.PaymentStatusCaptured), res.PaymentStatus)
	assert.Empty(t, res.PaymentWarning)
}

func TestBookingService_Verify_ConcurrentLoser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newBookingService(ctrl)

	booking := pendingBooking(model.PaymentStatusAuthorized)

	m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
	m.repo.EXPECT().UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

	_, err := svc.Verify(adminContext("admin-1"), booking.ID, dto.VerifyBookingRequest{Status: "confirmed"})

	assert.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_Verify_InvalidTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newBookingService(ctrl)

	booking := pendingBooking(model.PaymentStatusCancelled)
	booking.Status = model.StatusRejected

	m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)

	_, err := svc.Verify(adminContext("admin-1"), booking.ID, dto.VerifyBookingRequest{Status: "confirmed"})

	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestBookingService_Verify_Authorization(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		wantCode int
	}{
		{
			name:     "customer cannot verify",
			ctx:      customerContext("customer-1"),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unrelated agent cannot verify",
			ctx:      agentContext("agent-2"),
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newBookingService(ctrl)

			m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingBooking(model.PaymentStatusAuthorized), nil)

			_, err := svc.Verify(tt.ctx, "bk-1", dto.VerifyBookingRequest{Status: "confirmed"})

			assert.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestBookingService_Verify_OwnAgentAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newBookingService(ctrl)

	booking := pendingBooking(model.PaymentStatusAuthorized)

	m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
	m.repo.EXPECT().UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.gateway.EXPECT().Capture(gomock.Any(), "auth-hold-1").Return("rcpt-1", nil)

	res, err := svc.Verify(agentContext("agent-1"), booking.ID, dto.VerifyBookingRequest{Status: "confirmed"})

	assert.NoError(t, err)
	assert.Equal(t, string(model.PaymentStatusCaptured), res.PaymentStatus)
}
