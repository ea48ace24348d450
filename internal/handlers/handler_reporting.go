package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingSvc) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvc) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
}

// asOfParam reads the asOf query parameter, defaulting to today.
func asOfParam(c *gin.Context) (time.Time, bool) {
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return time.Time{}, false
	}
	asOf, err := parseDate(params.AsOf, today())
	if err != nil {
		badRequest(c, "Invalid date format. Use YYYY-MM-DD", err)
		return time.Time{}, false
	}
	return asOf, true
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every leaf account with activity up to the date. An unbalanced ledger is reported in status.
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	asOf, ok := asOfParam(c)
	if !ok {
		return
	}
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("asOf", asOf.Format(dto.DateLayout)))
	logger.Info("Received request to generate trial balance report")

	report, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, err, "Failed to generate trial balance report")
		return
	}

	logger.Info("Trial balance report generated successfully",
		slog.Int("row_count", len(report.Rows)), slog.String("status", string(report.Status)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// getIncomeStatement godoc
// @Summary Generate income statement
// @Description Revenue and expense activity for a period. from defaults to January 1 of the to year.
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.IncomeStatementResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	to, err := parseDate(params.To, today())
	if err != nil {
		badRequest(c, "Invalid to date format. Use YYYY-MM-DD", err)
		return
	}
	from, err := parseDate(params.From, time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		badRequest(c, "Invalid from date format. Use YYYY-MM-DD", err)
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("from", from.Format(dto.DateLayout)),
		slog.String("to", to.Format(dto.DateLayout)),
	)
	logger.Info("Received request to generate income statement")

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to)
	if err != nil {
		respondWithError(c, err, "Failed to generate income statement")
		return
	}

	logger.Info("Income statement generated successfully",
		slog.Int("revenue_accounts", len(report.Revenue)),
		slog.Int("expense_accounts", len(report.Expenses)))
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(report))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet
// @Description Assets, liabilities and equity as of a date, with current and prior years earnings folded into equity.
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	asOf, ok := asOfParam(c)
	if !ok {
		return
	}
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("asOf", asOf.Format(dto.DateLayout)))
	logger.Info("Received request to generate balance sheet")

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, err, "Failed to generate balance sheet")
		return
	}

	if !report.Balanced {
		logger.Warn("Balance sheet does not balance",
			slog.String("assets", report.TotalAssets.String()),
			slog.String("liabilities", report.TotalLiabilities.String()),
			slog.String("equity", report.TotalEquity.String()))
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}
