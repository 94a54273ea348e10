package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/domain"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/service"
)

type SweetService interface {
	CreateSweet(ctx context.Context, sweet domain.Sweet, actor domain.User) (domain.Sweet, error)
	GetSweet(ctx context.Context, id uint) (domain.Sweet, error)
	UpdateSweet(ctx context.Context, id uint, update domain.SweetUpdate, actor domain.User) (domain.Sweet, error)
	DeleteSweet(ctx context.Context, id uint, actor domain.User) error
	ListSweets(ctx context.Context, filters domain.SweetFilters, page domain.Pagination) ([]domain.Sweet, error)
	Purchase(ctx context.Context, id uint, amount int, actor domain.User) (domain.Sweet, error)
	Restock(ctx context.Context, id uint, amount int, actor domain.User) (domain.Sweet, error)
}

type SweetHandler struct {
	svc  SweetService
	uSvc UserService
}

func NewSweetHandler(svc SweetService, uSvc UserService) *SweetHandler {
	return &SweetHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

func parseSweetID(ctx *gin.Context) (uint, error) {
	sweetID, err := strconv.ParseUint(ctx.Param("sweetID"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sweet ID: %w", err)
	}

	return uint(sweetID), nil
}

func parseListQuery(ctx *gin.Context) (domain.SweetFilters, domain.Pagination, error) {
	filters := domain.SweetFilters{
		Name:     ctx.Query("name"),
		Category: ctx.Query("category"),
	}

	if raw := ctx.Query("min_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.SweetFilters{}, domain.Pagination{}, fmt.Errorf("invalid min_price: %w", err)
		}
		filters.MinPrice = &price
	}
	if raw := ctx.Query("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.SweetFilters{}, domain.Pagination{}, fmt.Errorf("invalid max_price: %w", err)
		}
		filters.MaxPrice = &price
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("per_page", "20"))

	return filters, domain.Pagination{Page: page, PerPage: perPage}, nil
}

// HandleListSweets godoc
// @Summary      List sweets
// @Description  Lists sweets ordered by name. All filters are optional and combined conjunctively.
// @Tags         sweets
// @Produce      json
// @Param        name       query     string  false  "case-insensitive name substring"
// @Param        category   query     string  false  "case-insensitive category substring"
// @Param        min_price  query     string  false  "inclusive lower price bound"
// @Param        max_price  query     string  false  "inclusive upper price bound"
// @Param        page       query     int     false  "page number"
// @Param        per_page   query     int     false  "page size"
// @Success      200  {array}   domain.Sweet
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sweets [get]
// @Security     BearerAuth
func (h *SweetHandler) HandleListSweets(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filters, page, err := parseListQuery(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sweets, err := h.svc.ListSweets(ctx.Request.Context(), filters, page)
	if err != nil {
		err = fmt.Errorf("HandleListSweets -> h.svc.ListSweets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if sweets == nil {
		sweets = []domain.Sweet{}
	}

	ctx.JSON(http.StatusOK, sweets)
}

// HandleGetSweet godoc
// @Summary      Get a sweet by ID
// @Tags         sweets
// @Produce      json
// @Param        sweetID  path      int  true  "sweet ID"
// @Success      200  {object}  domain.Sweet
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sweets/{sweetID} [get]
// @Security     BearerAuth
func (h *SweetHandler) HandleGetSweet(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sweetID, err := parseSweetID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sweet, err := h.svc.GetSweet(ctx.Request.Context(), sweetID)
	if err != nil {
		if errors.Is(err, service.ErrSweetNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("sweet", "ID", sweetID))
			return
		}

		err = fmt.Errorf("HandleGetSweet -> h.svc.GetSweet -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}

// HandleCreateSweet godoc
// @Summary      Create a new sweet
// @Description  Creates an inventory record. Only admins can create sweets.
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateSweetRequest  true  "sweet fields"
// @Success      201  {object}  domain.Sweet
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sweets [post]
// @Security     BearerAuth
func (h *SweetHandler) HandleCreateSweet(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateSweetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sweet := domain.Sweet{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}

	created, err := h.svc.CreateSweet(ctx.Request.Context(), sweet, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminRequired):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrAdminRequired))
		case errors.Is(err, service.ErrSweetNameExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrSweetNameExists))
		default:
			err = fmt.Errorf("HandleCreateSweet -> h.svc.CreateSweet -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateSweet godoc
// @Summary      Update a sweet
// @Description  Applies a partial field edit. Only admins can update sweets.
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Param        sweetID  path      int                         true  "sweet ID"
// @Param        request  body      request.UpdateSweetRequest  true  "fields to change"
// @Success      200  {object}  domain.Sweet
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sweets/{sweetID} [put]
// @Security     BearerAuth
func (h *SweetHandler) HandleUpdateSweet(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sweetID, err := parseSweetID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateSweetRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	update := domain.SweetUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}

	updated, err := h.svc.UpdateSweet(ctx.Request.Context(), sweetID, update, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminRequired):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrAdminRequired))
		case errors.Is(err, service.ErrSweetNotFound):
			response.RenderErr(ctx, response.ErrNotFound("sweet", "ID", sweetID))
		case errors.Is(err, service.ErrSweetNameExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrSweetNameExists))
		default:
			err = fmt.Errorf("HandleUpdateSweet -> h.svc.UpdateSweet -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteSweet godoc
// @Summary      Delete a sweet
// @Description  Permanently removes the record. Only admins can delete sweets.
// @Tags         sweets
// @Produce      json
// @Param        sweetID  path  int  true  "sweet ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sweets/{sweetID} [delete]
// @Security     BearerAuth
func (h *SweetHandler) HandleDeleteSweet(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sweetID, err := parseSweetID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.DeleteSweet(ctx.Request.Context(), sweetID, user); err != nil {
		switch {
		case errors.Is(err, service.ErrAdminRequired):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrAdminRequired))
		case errors.Is(err, service.ErrSweetNotFound):
			response.RenderErr(ctx, response.ErrNotFound("sweet", "ID", sweetID))
		default:
			err = fmt.Errorf("HandleDeleteSweet -> h.svc.DeleteSweet -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandlePurchaseSweet godoc
// @Summary      Purchase a sweet
// @Description  Decrements stock by the requested amount. Any authenticated user can purchase; over-purchase fails without changing stock.
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Param        sweetID  path      int                            true  "sweet ID"
// @Param        request  body      request.QuantityActionRequest  true  "amount"
// @Success      200  {object}  domain.Sweet
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sweets/{sweetID}/purchase [post]
// @Security     BearerAuth
func (h *SweetHandler) HandlePurchaseSweet(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sweetID, err := parseSweetID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.QuantityActionRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sweet, err := h.svc.Purchase(ctx.Request.Context(), sweetID, req.Amount, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAmountNotPositive):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrAmountNotPositive))
		case errors.Is(err, service.ErrSweetNotFound):
			response.RenderErr(ctx, response.ErrNotFound("sweet", "ID", sweetID))
		case errors.Is(err, service.ErrInsufficientStock):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInsufficientStock))
		default:
			err = fmt.Errorf("HandlePurchaseSweet -> h.svc.Purchase -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}

// HandleRestockSweet godoc
// @Summary      Restock a sweet
// @Description  Increments stock by the requested amount. Only admins can restock.
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Param        sweetID  path      int                            true  "sweet ID"
// @Param        request  body      request.QuantityActionRequest  true  "amount"
// @Success      200  {object}  domain.Sweet
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sweets/{sweetID}/restock [post]
// @Security     BearerAuth
func (h *SweetHandler) HandleRestockSweet(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sweetID, err := parseSweetID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.QuantityActionRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sweet, err := h.svc.Restock(ctx.Request.Context(), sweetID, req.Amount, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminRequired):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrAdminRequired))
		case errors.Is(err, service.ErrAmountNotPositive):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrAmountNotPositive))
		case errors.Is(err, service.ErrSweetNotFound):
			response.RenderErr(ctx, response.ErrNotFound("sweet", "ID", sweetID))
		default:
			err = fmt.Errorf("HandleRestockSweet -> h.svc.Restock -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}
