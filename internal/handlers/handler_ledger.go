package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// registerLedgerRoutes registers the account card and balance routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/:code", h.generalLedger)
		ledger.GET("/:code/balance", h.accountBalance)
	}
}

// generalLedger godoc
// @Summary Get the general ledger of an account
// @Description Returns the opening balance, every posted line in the period with a running balance, and the closing balance.
// @Description from defaults to January 1 of the to year, to defaults to today.
// @Tags ledger
// @Produce  json
// @Param   code path string true "Account code"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.GeneralLedgerResponse
// @Failure 400 {object} ErrorResponse "Invalid date"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /ledger/{code} [get]
func (h *ledgerHandler) generalLedger(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	to, err := parseDate(params.To, today())
	if err != nil {
		badRequest(c, "Invalid to date", err)
		return
	}
	from, err := parseDate(params.From, time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		badRequest(c, "Invalid from date", err)
		return
	}

	gl, err := h.ledgerService.GeneralLedger(c.Request.Context(), c.Param("code"), from, to)
	if err != nil {
		respondWithError(c, err, "Failed to build general ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToGeneralLedgerResponse(gl))
}

// accountBalance godoc
// @Summary Get the balance of an account
// @Description Without from the balance runs from inception to the to date.
// @Tags ledger
// @Produce  json
// @Param   code path string true "Account code"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} ErrorResponse "Invalid date"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /ledger/{code}/balance [get]
func (h *ledgerHandler) accountBalance(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	to, err := parseDate(params.To, today())
	if err != nil {
		badRequest(c, "Invalid to date", err)
		return
	}
	var from *time.Time
	if params.From != "" {
		f, err := parseDate(params.From, time.Time{})
		if err != nil {
			badRequest(c, "Invalid from date", err)
			return
		}
		from = &f
	}

	balance, err := h.ledgerService.ClosingBalance(c.Request.Context(), c.Param("code"), from, to)
	if err != nil {
		respondWithError(c, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(balance))
}
