package handler

import (
	"net/http"

	"billing/internal/service"
	"billing/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/reports", h.GetReport)
	router.GET("/api/dashboard", h.GetDashboard)
}

// GetReport returns one of the sales reports for an inclusive date range
// @Summary      Sales report
// @Description  type is one of summary, daily, products, customers, invoicelist, outstanding
// @Tags         reports
// @Produce      json
// @Param        type  query     string  false  "Report type (default summary)"
// @Param        from  query     string  false  "Start date YYYY-MM-DD"
// @Param        to    query     string  false  "End date YYYY-MM-DD"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /api/reports [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.reportService.GetReport(c.Request.Context(), service.ReportFilter{
		Type: c.Query("type"),
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetDashboard returns today's figures, stock alerts and the last seven days of sales
// @Summary      Dashboard
// @Tags         reports
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardResponse}
// @Router       /api/dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}
