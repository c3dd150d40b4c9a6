package payment

//go:generate go run go.uber.org/mock/mockgen -source=./payment.go -destination=./mocks/payment_mock.go -package=mocks

import (
	"basera/config"
	"basera/infras/otel"
	"basera/shared/constant"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyHold     = errors.New("authorization hold id is required")
	ErrEmptyReceipt  = errors.New("capture receipt id is required")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// Gateway is the payment provider contract. Authorize places a hold on the
// customer's funds, Capture settles a previously placed hold, and the two
// release paths undo whichever step last succeeded: CancelAuthorization voids
// an uncaptured hold, Refund returns captured funds.
type Gateway interface {
	Authorize(ctx context.Context, amount float64, reference string) (holdID string, err error)
	Capture(ctx context.Context, holdID string) (receiptID string, err error)
	CancelAuthorization(ctx context.Context, holdID string) error
	Refund(ctx context.Context, receiptID string) error
}

type simulatedGateway struct {
	config *config.Config
	otel   otel.Otel
}

// New builds the provider adapter. Only the simulated provider is wired; when
// simulate mode is off we still return it but make the misconfiguration loud.
func New(conf *config.Config, otl otel.Otel) Gateway {
	if conf.Payment.Simulate {
		log.Info().Msg("Payment gateway initialized in simulate mode")
	} else {
		log.Warn().Msg("No external payment provider configured, falling back to simulate mode")
	}

	return &simulatedGateway{
		config: conf,
		otel:   otl,
	}
}

func (g *simulatedGateway) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(g.config.Payment.TimeoutSeconds)*time.Second)
}

func (g *simulatedGateway) Authorize(ctx context.Context, amount float64, reference string) (string, error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".Authorize")
	defer scope.End()

	ctx, cancel := g.timeout(ctx)
	defer cancel()

	if amount <= 0 {
		scope.TraceError(ErrInvalidAmount)

		return "", ErrInvalidAmount
	}

	if err := ctx.Err(); err != nil {
		scope.TraceError(err)

		return "", err //nolint:wrapcheck
	}

	holdID := "auth-" + uuid.New().String()

	log.Info().
		Float64("amount", amount).
		Str("reference", reference).
		Str("holdID", holdID).
		Msg("Authorized payment hold")

	return holdID, nil
}

func (g *simulatedGateway) Capture(ctx context.Context, holdID string) (string, error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".Capture")
	defer scope.End()

	ctx, cancel := g.timeout(ctx)
	defer cancel()

	if holdID == "" {
		scope.TraceError(ErrEmptyHold)

		return "", ErrEmptyHold
	}

	if err := ctx.Err(); err != nil {
		scope.TraceError(err)

		return "", err //nolint:wrapcheck
	}

	receiptID := "rcpt-" + uuid.New().String()

	log.Info().
		Str("holdID", holdID).
		Str("receiptID", receiptID).
		Msg("Captured payment hold")

	return receiptID, nil
}

func (g *simulatedGateway) CancelAuthorization(ctx context.Context, holdID string) error {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".CancelAuthorization")
	defer scope.End()

	ctx, cancel := g.timeout(ctx)
	defer cancel()

	if holdID == "" {
		scope.TraceError(ErrEmptyHold)

		return ErrEmptyHold
	}

	if err := ctx.Err(); err != nil {
		scope.TraceError(err)

		return err //nolint:wrapcheck
	}

	log.Info().
		Str("holdID", holdID).
		Msg("Cancelled payment authorization")

	return nil
}

func (g *simulatedGateway) Refund(ctx context.Context, receiptID string) error {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".Refund")
	defer scope.End()

	ctx, cancel := g.timeout(ctx)
	defer cancel()

	if receiptID == "" {
		scope.TraceError(ErrEmptyReceipt)

		return ErrEmptyReceipt
	}

	if err := ctx.Err(); err != nil {
		scope.TraceError(err)

		return err //nolint:wrapcheck
	}

	log.Info().
		Str("receiptID", receiptID).
		Msg("Refunded captured payment")

	return nil
}
