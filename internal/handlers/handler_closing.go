package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// closingHandler handles fiscal year closing requests.
type closingHandler struct {
	closingService portssvc.ClosingSvc
}

func newClosingHandler(cs portssvc.ClosingSvc) *closingHandler {
	return &closingHandler{closingService: cs}
}

func registerClosingRoutes(rg *gin.RouterGroup, closingService portssvc.ClosingSvc) {
	h := newClosingHandler(closingService)

	closing := rg.Group("/closing/:year")
	{
		closing.GET("", h.previewClosing)
		closing.POST("", h.closeYear)
		closing.GET("/entries", h.listClosingEntries)
		closing.POST("/reverse", h.reverseClosing)
	}
}

// previewClosing godoc
// @Summary Preview the closing of a fiscal year
// @Description Computes the revenue, expense and income summary closing entries without writing anything
// @Tags closing
// @Produce json
// @Param year path int true "Fiscal year"
// @Success 200 {object} dto.ClosingPreviewResponse
// @Failure 400 {object} ErrorResponse "Invalid year or missing equity accounts"
// @Security BearerAuth
// @Router /closing/{year} [get]
func (h *closingHandler) previewClosing(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}
	preview, err := h.closingService.PreviewClosing(c.Request.Context(), year)
	if err != nil {
		respondWithError(c, err, "Failed to preview closing")
		return
	}
	c.JSON(http.StatusOK, dto.ToClosingPreviewResponse(preview))
}

// closeYear godoc
// @Summary Close a fiscal year
// @Description Creates and posts the closing entries dated December 31. A year without revenue or expense activity yields no entries.
// @Tags closing
// @Produce json
// @Param year path int true "Fiscal year"
// @Success 201 {object} dto.ClosingPreviewResponse "Year closed"
// @Success 200 {object} dto.ClosingPreviewResponse "Nothing to close"
// @Failure 400 {object} ErrorResponse "Invalid year or missing equity accounts"
// @Failure 409 {object} ErrorResponse "Year already closed"
// @Security BearerAuth
// @Router /closing/{year} [post]
func (h *closingHandler) closeYear(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.closingService.CloseYear(c.Request.Context(), year, userID)
	if err != nil {
		respondWithError(c, err, "Failed to close fiscal year")
		return
	}

	status := http.StatusOK
	if len(result.JournalIDs) > 0 {
		status = http.StatusCreated
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Fiscal year close completed",
		slog.Int("year", year),
		slog.Int("entries", len(result.JournalIDs)),
		slog.String("net_income", result.NetIncome.String()))
	c.JSON(status, dto.ToClosingResultResponse(result))
}

// listClosingEntries godoc
// @Summary List the posted closing entries of a year
// @Tags closing
// @Produce json
// @Param year path int true "Fiscal year"
// @Success 200 {array} dto.JournalResponse
// @Failure 400 {object} ErrorResponse "Invalid year"
// @Security BearerAuth
// @Router /closing/{year}/entries [get]
func (h *closingHandler) listClosingEntries(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}
	entries, err := h.closingService.GetClosingEntries(c.Request.Context(), year)
	if err != nil {
		respondWithError(c, err, "Failed to list closing entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponses(entries))
}

// reverseClosing godoc
// @Summary Reverse the closing of a fiscal year
// @Description Voids every posted closing entry of the year so it can be closed again
// @Tags closing
// @Accept json
// @Produce json
// @Param year path int true "Fiscal year"
// @Param body body dto.ReverseClosingRequest true "Reason recorded on each voided entry"
// @Success 200 {object} dto.ReverseClosingResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Year is not closed"
// @Security BearerAuth
// @Router /closing/{year}/reverse [post]
func (h *closingHandler) reverseClosing(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}
	var req dto.ReverseClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	voided, err := h.closingService.ReverseClosing(c.Request.Context(), year, req.Reason, userID)
	if err != nil {
		respondWithError(c, err, "Failed to reverse closing")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Fiscal year closing reversed",
		slog.Int("year", year), slog.Int("voided", voided))
	c.JSON(http.StatusOK, dto.ReverseClosingResponse{Year: year, Voided: voided})
}
