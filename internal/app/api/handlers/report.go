package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tripnest/backoffice/internal/app/service/report"
	"github.com/tripnest/backoffice/pkg/response"
	"github.com/tripnest/backoffice/pkg/types"
)

// queryFilters lifts the optional hotelId/accountId query parameters into
// structured filters. Unknown fields never reach here; the report layer
// whitelists columns again before building SQL.
func queryFilters(c *gin.Context) []*types.CommonFilter {
	var filters []*types.CommonFilter
	for _, field := range []string{"hotelId", "accountId"} {
		if v := c.Query(field); v != "" {
			filters = append(filters, &types.CommonFilter{
				Field:    field,
				Operator: types.CommonFilterOperatorEq,
				Values:   []any{v},
			})
		}
	}
	return filters
}

// @Summary      Discount dashboard
// @Description  All-time counters for the discount landing page.
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  response.APIResponse[report.DashboardSummary]
// @Router       /api/v1/admin/discounts/dashboard [get]
func ApiDiscountDashboard(svc *report.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(summary))
	}
}

// @Summary      Discount analytics
// @Description  Period-scoped usage analytics: totals, top codes, type split and a daily series.
// @Tags         Reports
// @Produce      json
// @Param        period    query string false "7days | month | quarter | year | custom"
// @Param        startDate query string false "Custom period start (YYYY-MM-DD)"
// @Param        endDate   query string false "Custom period end (YYYY-MM-DD, inclusive)"
// @Param        hotelId   query string false "Restrict to one hotel"
// @Param        accountId query string false "Restrict to one customer"
// @Success      200  {object}  response.APIResponse[report.Analytics]
// @Router       /api/v1/admin/discounts/analytics [get]
func ApiDiscountAnalytics(svc *report.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &report.AnalyticsRequest{
			Period:    c.Query("period"),
			StartDate: c.Query("startDate"),
			EndDate:   c.Query("endDate"),
			Filters:   queryFilters(c),
		}
		out, err := svc.Analytics(c.Request.Context(), req)
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(out))
	}
}

// @Summary      Discount report
// @Description  Redemptions grouped by code, customer or hotel over a period.
// @Tags         Reports
// @Produce      json
// @Param        groupBy   query string false "code | customer | hotel"
// @Param        period    query string false "7days | month | quarter | year | custom"
// @Param        startDate query string false "Custom period start (YYYY-MM-DD)"
// @Param        endDate   query string false "Custom period end (YYYY-MM-DD, inclusive)"
// @Param        hotelId   query string false "Restrict to one hotel"
// @Param        accountId query string false "Restrict to one customer"
// @Success      200  {object}  response.APIResponse[[]report.ReportRow]
// @Router       /api/v1/admin/discounts/reports [get]
func ApiDiscountReport(svc *report.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &report.ReportRequest{
			GroupBy:   c.Query("groupBy"),
			Period:    c.Query("period"),
			StartDate: c.Query("startDate"),
			EndDate:   c.Query("endDate"),
			Filters:   queryFilters(c),
		}
		rows, err := svc.Report(c.Request.Context(), req)
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(rows))
	}
}

// @Summary      Export discount report
// @Description  Same rows as the report endpoint, rendered as a UTF-8 CSV download.
// @Tags         Reports
// @Produce      text/csv
// @Param        groupBy   query string false "code | customer | hotel"
// @Param        period    query string false "7days | month | quarter | year | custom"
// @Param        startDate query string false "Custom period start (YYYY-MM-DD)"
// @Param        endDate   query string false "Custom period end (YYYY-MM-DD, inclusive)"
// @Param        hotelId   query string false "Restrict to one hotel"
// @Param        accountId query string false "Restrict to one customer"
// @Success      200  {string}  string
// @Router       /api/v1/admin/discounts/reports/export [get]
func ApiDiscountReportExport(svc *report.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &report.ReportRequest{
			GroupBy:   c.Query("groupBy"),
			Period:    c.Query("period"),
			StartDate: c.Query("startDate"),
			EndDate:   c.Query("endDate"),
			Filters:   queryFilters(c),
		}
		body, filename, err := svc.ExportCSV(c.Request.Context(), req)
		if err != nil {
			renderError(c, log, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
	}
}

func RegisterReportRoutes(r gin.IRouter, svc *report.Service, log *zap.SugaredLogger) {
	r.GET("/discounts/dashboard", ApiDiscountDashboard(svc, log))
	r.GET("/discounts/analytics", ApiDiscountAnalytics(svc, log))
	r.GET("/discounts/reports", ApiDiscountReport(svc, log))
	r.GET("/discounts/reports/export", ApiDiscountReportExport(svc, log))
}
