package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/brewhouse/storefront/internal/errors"
	inHttp "github.com/brewhouse/storefront/internal/http"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/product/internal/service"
	"github.com/brewhouse/storefront/product/pkg/request"
)

type ProductController struct {
	service *service.ProductService
}

func AttachProductController(router *mux.Router, service *service.ProductService) {
	controller := ProductController{service: service}

	router.HandleFunc("/api/v1/products/", controller.FindProducts).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/products/{productId}", controller.FindProductById).
		Methods(http.MethodGet)
	router.HandleFunc("/api/v1/categories/", controller.FindCategories).Methods(http.MethodGet)
}

// parseFindProductsQuery accepts the catalog filter parameters: skip, limit,
// category_id, is_popular, is_active, search. is_active defaults to true in
// the service when the query does not override it.
func parseFindProductsQuery(query url.Values) (request.FindProducts, error) {
	param := request.FindProducts{Search: query.Get("search")}
	if raw := query.Get("category_id"); raw != "" {
		categoryId, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return request.FindProducts{}, fmt.Errorf("failed parsing category_id=%s with error=%w", raw, err)
		}
		param.CategoryID = &categoryId
	}
	if raw := query.Get("is_popular"); raw != "" {
		popular := raw == "true" || raw == "1"
		param.IsPopular = &popular
	}
	if raw := query.Get("is_active"); raw != "" {
		active := raw == "true" || raw == "1"
		param.IsActive = &active
	}
	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.ParseInt(raw, 10, 32)
		if err == nil {
			param.Skip = int32(skip)
		}
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err == nil {
			param.Limit = int32(limit)
		}
	}
	return param, nil
}

func (p ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing query params").Logger()
	logger.Info().Msg("parsing query params")
	reqBody, err := parseFindProductsQuery(r.URL.Query())
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("parsed query params")

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	c = logger.WithContext(c)
	page, err := p.service.FindProducts(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found products")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found products",
		"data":       page,
	})
}

func (p ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductById").
		Str(log.KeyProcess, "parsing productId").
		Logger()

	logger.Info().Msg("parsing productId")
	pathValues := mux.Vars(r)
	productId, err := strconv.ParseInt(pathValues["productId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed parsing productId=%s with error=%w", pathValues["productId"], err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KeyProductID, productId).Logger()
	logger.Info().Msgf("parsed productId=%d", productId)

	logger = logger.With().Str(log.KeyProcess, "finding product by id").Logger()
	logger.Info().Msg("finding product by id")
	c = logger.WithContext(c)
	product, err := p.service.FindProductById(c, productId)
	if err != nil {
		err = fmt.Errorf("failed finding product by id=%d with error=%w", productId, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrProductNotFound) {
			statusCode = http.StatusNotFound
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found product by id")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found product",
		"data": map[string]interface{}{
			"product": product,
		},
	})
}

func (p ProductController) FindCategories(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindCategories").
		Str(log.KeyProcess, "finding categories").
		Logger()

	logger.Info().Msg("finding categories")
	c = logger.WithContext(c)
	categories, err := p.service.FindCategories(c)
	if err != nil {
		err = fmt.Errorf("failed finding categories with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found categories")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found categories",
		"data": map[string]interface{}{
			"categories": categories,
		},
	})
}
