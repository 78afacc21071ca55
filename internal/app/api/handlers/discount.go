package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tripnest/backoffice/internal/app/service/discount"
	"github.com/tripnest/backoffice/pkg/logctx"
	"github.com/tripnest/backoffice/pkg/response"
	"github.com/tripnest/backoffice/pkg/types"
)

const msgUnexpected = "Đã xảy ra lỗi hệ thống"
const msgBadPayload = "Dữ liệu gửi lên không hợp lệ"

// renderError maps a business failure to 400/404 with its user-facing
// message; everything else logs with context and returns a generic 500.
func renderError(c *gin.Context, log *zap.SugaredLogger, err error) {
	var de *discount.Error
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		if de.Kind == discount.ErrKindNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Fail(de.Message))
		return
	}
	logctx.FromGin(c, log).Errorf("unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, response.Fail(msgUnexpected))
}

// @Summary      Create discount code
// @Description  Creates a promotional discount code.
// @Tags         Discounts
// @Accept       json
// @Produce      json
// @Param        request body discount.CreateDiscountRequest true "Create payload"
// @Success      201  {object}  response.APIResponse[discount.DiscountItem]
// @Router       /api/v1/admin/discounts [post]
func ApiCreateDiscount(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req discount.CreateDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Fail(msgBadPayload))
			return
		}
		item, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, response.OK(item))
	}
}

// @Summary      Update discount code
// @Description  Applies a partial update; unspecified condition keys are left untouched.
// @Tags         Discounts
// @Accept       json
// @Produce      json
// @Param        id      path  string                          true  "Discount id"
// @Param        request body  discount.UpdateDiscountRequest  true  "Update payload"
// @Success      200  {object}  response.APIResponse[discount.DiscountItem]
// @Router       /api/v1/admin/discounts/{id} [put]
func ApiUpdateDiscount(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req discount.UpdateDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Fail(msgBadPayload))
			return
		}
		item, err := svc.Update(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(item))
	}
}

// @Summary      Delete discount code
// @Description  Hard-deletes an unused code; a code with realized usages is disabled and retained.
// @Tags         Discounts
// @Produce      json
// @Param        id path string true "Discount id"
// @Success      200  {object}  response.APIResponse[discount.DeleteResult]
// @Router       /api/v1/admin/discounts/{id} [delete]
func ApiDeleteDiscount(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKMsg(res, res.Message))
	}
}

// @Summary      Get discount code
// @Tags         Discounts
// @Produce      json
// @Param        id path string true "Discount id"
// @Success      200  {object}  response.APIResponse[discount.DiscountItem]
// @Router       /api/v1/admin/discounts/{id} [get]
func ApiGetDiscount(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(item))
	}
}

// @Summary      List discount codes
// @Description  Free-text search over code/id, status and expiry filters, sortable columns, offset pagination.
// @Tags         Discounts
// @Produce      json
// @Param        search     query string false "Search over code and id"
// @Param        status     query string false "ACTIVE | INACTIVE | EXPIRED"
// @Param        expiryDate query string false "expiring_soon | expired"
// @Param        sortBy     query string false "Sort column"
// @Param        sortOrder  query string false "asc | desc"
// @Param        page       query int    false "Page (1-based)"
// @Param        limit      query int    false "Page size"
// @Success      200  {object}  response.APIResponse[[]discount.DiscountItem]
// @Router       /api/v1/admin/discounts [get]
func ApiListDiscounts(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		req := &discount.ListDiscountsRequest{
			Search:       c.Query("search"),
			Status:       types.DiscountStatus(c.Query("status")),
			ExpiryFilter: c.Query("expiryDate"),
			SortBy:       c.Query("sortBy"),
			SortOrder:    c.Query("sortOrder"),
			Page:         page,
			Limit:        limit,
		}
		res, err := svc.List(c.Request.Context(), req)
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKPage(res.Items, response.NewPagination(res.Page, res.Limit, res.Total)))
	}
}

// @Summary      Toggle discount status
// @Description  Flips ACTIVE and DISABLED; a code past its expiry is forced to EXPIRED.
// @Tags         Discounts
// @Produce      json
// @Param        id path string true "Discount id"
// @Success      200  {object}  response.APIResponse[discount.DiscountItem]
// @Router       /api/v1/admin/discounts/{id}/toggle [patch]
func ApiToggleDiscount(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.ToggleStatus(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(item))
	}
}

type extendDiscountRequest struct {
	Days int `json:"days"`
}

// @Summary      Extend discount expiry
// @Description  Adds days to the expiry; an expired code whose new expiry is in the future is reactivated.
// @Tags         Discounts
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Discount id"
// @Param        request body handlers.extendDiscountRequest true "Extension"
// @Success      200  {object}  response.APIResponse[discount.DiscountItem]
// @Router       /api/v1/admin/discounts/{id}/extend [patch]
func ApiExtendDiscount(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req extendDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Fail(msgBadPayload))
			return
		}
		item, err := svc.Extend(c.Request.Context(), c.Param("id"), req.Days)
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(item))
	}
}

// @Summary      Discount usage statistics
// @Tags         Discounts
// @Produce      json
// @Param        id path string true "Discount id"
// @Success      200  {object}  response.APIResponse[discount.UsageStats]
// @Router       /api/v1/admin/discounts/{id}/stats [get]
func ApiDiscountStats(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.UsageStats(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(stats))
	}
}

// @Summary      Discount history
// @Description  Reconstructed audit trail: creation, redemptions, and the most recent inferable status change.
// @Tags         Discounts
// @Produce      json
// @Param        id path string true "Discount id"
// @Success      200  {object}  response.APIResponse[[]discount.HistoryEntry]
// @Router       /api/v1/admin/discounts/{id}/history [get]
func ApiDiscountHistory(svc *discount.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.History(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(entries))
	}
}

func RegisterDiscountRoutes(r gin.IRouter, svc *discount.Service, log *zap.SugaredLogger) {
	r.POST("/discounts", ApiCreateDiscount(svc, log))
	r.GET("/discounts", ApiListDiscounts(svc, log))
	r.GET("/discounts/:id", ApiGetDiscount(svc, log))
	r.PUT("/discounts/:id", ApiUpdateDiscount(svc, log))
	r.DELETE("/discounts/:id", ApiDeleteDiscount(svc, log))
	r.PATCH("/discounts/:id/toggle", ApiToggleDiscount(svc, log))
	r.PATCH("/discounts/:id/extend", ApiExtendDiscount(svc, log))
	r.GET("/discounts/:id/stats", ApiDiscountStats(svc, log))
	r.GET("/discounts/:id/history", ApiDiscountHistory(svc, log))
}
