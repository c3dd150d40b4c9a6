package fee

import (
	"basera/infras/otel"
	"basera/internal/domains/fee/model/dto"
	"basera/internal/domains/fee/service"
	"basera/shared/constant"
	"basera/shared/validator"
	"basera/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Calculator
	otel    otel.Otel
}

func New(service service.Calculator, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/fees", func(routerGroup chi.Router) {
		routerGroup.Get("/current", handler.GetCurrentFees)
		routerGroup.Put("/", handler.UpdateFees)
	})
}

// GetCurrentFees returns the fee configuration currently in effect.
// @Summary Get current fees
// @Description Retrieve the booking and visit fee amounts currently charged for new requests.
// @Tags Fee
// @Accept json
// @Produce json
// @Success 200 {object} response.Data[dto.FeeResponse] "Current fee configuration"
// @Failure 500 {object} response.Error
// @Router /v1/fees/current [get]
// @Security BearerAuth
func (handler *Handler) GetCurrentFees(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCurrentFees")
	defer scope.End()

	fees, err := handler.service.Current(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get current fees")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Current fees retrieved successfully")

	response.WithJSON(w, http.StatusOK, fees)
}

// UpdateFees changes the active fee configuration.
// @Summary Update fees
// @Description Update the booking and/or visit fee amounts. Only provided fields change; already-priced bookings keep their stored amount.
// @Tags Fee
// @Accept json
// @Produce json
// @Param request body dto.UpdateFeeRequest true "Update Fee Request"
// @Success 200 {object} response.Message "Fees updated successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/fees [put]
// @Security BearerAuth
func (handler *Handler) UpdateFees(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateFees")
	defer scope.End()

	req := dto.UpdateFeeRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update fees")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Fees updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Fees updated successfully")
}
