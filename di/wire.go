//go:build wireinject
// +build wireinject

package di

import (
	"basera/config"
	"basera/infras/jwt"
	"basera/infras/kafka"
	"basera/infras/otel"
	"basera/infras/payment"
	"basera/infras/postgres"
	"basera/infras/redis"
	"basera/permissions"
	"basera/shared/cache"
	"basera/transport/http"
	"basera/transport/http/middleware"
	"basera/transport/http/router"

	bookingRepository "basera/internal/domains/booking/repository"
	bookingService "basera/internal/domains/booking/service"
	feeRepository "basera/internal/domains/fee/repository"
	feeService "basera/internal/domains/fee/service"
	propertyRepository "basera/internal/domains/property/repository"

	bookingHandler "basera/internal/handlers/booking"
	feeHandler "basera/internal/handlers/fee"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	payment.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var propertyDomain = wire.NewSet(
	propertyRepository.New,
)

var feeDomain = wire.NewSet(
	feeRepository.New,
	feeService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.NewChecker,
	bookingService.New,
)

var domains = wire.NewSet(
	propertyDomain,
	feeDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	feeHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
