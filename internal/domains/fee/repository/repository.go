package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"basera/infras/otel"
	"basera/infras/postgres"
	"basera/internal/domains/fee/model"
	"context"

	gDto "basera/shared/dto"
	gRepo "basera/shared/repository"
)

type Fee interface {
	Insert(ctx context.Context, model model.BookingFee) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.BookingFee, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.BookingFee]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Fee {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.BookingFee](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
