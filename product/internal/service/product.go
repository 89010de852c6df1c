package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/internal/repository"
	"github.com/brewhouse/storefront/product/pkg/request"
	"github.com/brewhouse/storefront/product/pkg/response"
)

type ProductService struct {
	queries *repository.Queries
}

func NewProductService(queries *repository.Queries) *ProductService {
	return &ProductService{queries: queries}
}

func (svc *ProductService) FindProducts(
	c context.Context,
	param request.FindProducts,
) (response.ProductPage, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Logger()

	skip := param.Skip
	if skip < 0 {
		skip = 0
	}
	limit := param.Limit
	if limit < 1 {
		limit = 20
	}
	active := true
	if param.IsActive != nil {
		active = *param.IsActive
	}
	arg := repository.FindProductsParams{
		CategoryID: param.CategoryID,
		IsPopular:  param.IsPopular,
		IsActive:   &active,
		Search:     param.Search,
		Limit:      limit,
		Offset:     skip,
	}

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	rows, err := svc.queries.FindProducts(c, arg)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Info().Msgf("found %d products", len(rows))

	logger = logger.With().Str(log.KeyProcess, "counting products").Logger()
	logger.Info().Msg("counting products")
	total, err := svc.queries.CountProducts(c, arg)
	if err != nil {
		err = fmt.Errorf("failed counting products with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Info().Msgf("counted total=%d products", total)

	products := make([]response.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.Response())
	}
	return response.ProductPage{
		Products: products,
		Total:    total,
		Page:     skip/limit + 1,
		PerPage:  limit,
	}, nil
}

func (svc *ProductService) FindProductById(
	c context.Context,
	id int64,
) (response.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Int64(log.KeyProductID, id).
		Str(log.KeyProcess, "finding product by id").
		Logger()

	logger.Info().Msg("finding product by id")
	row, err := svc.queries.FindProductById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("productId=%d with error=%w", id, inErrors.ErrProductNotFound)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = fmt.Errorf("failed finding product by id=%d with error=%w", id, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product by id")

	return row.Response(), nil
}

func (svc *ProductService) FindCategories(c context.Context) ([]response.Category, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindCategories").
		Str(log.KeyProcess, "finding categories").
		Logger()

	logger.Info().Msg("finding categories")
	rows, err := svc.queries.FindCategories(c)
	if err != nil {
		err = fmt.Errorf("failed finding categories with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d categories", len(rows))

	categories := make([]response.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.Response())
	}
	return categories, nil
}
