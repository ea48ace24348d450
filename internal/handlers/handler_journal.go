package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createDraft)
		journals.GET("", h.listJournals)
		journals.GET("/number/:number", h.getJournalByNumber)
		journals.GET("/:id", h.getJournal)
		journals.PUT("/:id", h.updateDraft)
		journals.DELETE("/:id", h.deleteDraft)
		journals.POST("/:id/post", h.postJournal)
		journals.POST("/:id/void", h.voidJournal)
		journals.GET("/:id/impact", h.accountImpact)
	}
}

// createDraft godoc
// @Summary Create a draft journal entry
// @Description Validates the lines and stores a DRAFT entry with the next JE-YYYY-NNNN number
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Entry header and lines"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create journal"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	input, err := req.ToDraftInput()
	if err != nil {
		badRequest(c, "Invalid journal date", err)
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.journalService.CreateDraft(c.Request.Context(), input, creatorUserID)
	if err != nil {
		respondWithError(c, err, "Failed to create journal")
		return
	}

	logger.Info("Draft journal created", slog.String("journal_id", entry.JournalID), slog.String("journal_number", entry.JournalNumber))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(entry))
}

// listJournals godoc
// @Summary List journal entries
// @Description Lists entries newest first with cursor pagination
// @Tags journals
// @Produce  json
// @Param   status query string false "DRAFT, POSTED or VOID"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   reference query string false "Reference number prefix"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}

	resp, err := h.journalService.ListJournals(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "Failed to list journals")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getJournal godoc
// @Summary Get a journal entry
// @Tags journals
// @Produce  json
// @Param   id path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Security BearerAuth
// @Router /journals/{id} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	entry, err := h.journalService.GetJournalByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// getJournalByNumber godoc
// @Summary Get a journal entry by number
// @Tags journals
// @Produce  json
// @Param   number path string true "Journal number (JE-YYYY-NNNN)"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Security BearerAuth
// @Router /journals/number/{number} [get]
func (h *journalHandler) getJournalByNumber(c *gin.Context) {
	entry, err := h.journalService.GetJournalByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// updateDraft godoc
// @Summary Replace a draft journal entry
// @Description Overwrites the header and lines of a DRAFT entry. The number is kept.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   id path string true "Journal ID"
// @Param   journal body dto.UpdateJournalRequest true "Entry header and lines"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Failure 409 {object} ErrorResponse "Journal is not a draft"
// @Security BearerAuth
// @Router /journals/{id} [put]
func (h *journalHandler) updateDraft(c *gin.Context) {
	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	input, err := req.ToDraftInput()
	if err != nil {
		badRequest(c, "Invalid journal date", err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), c.Param("id"), input, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// deleteDraft godoc
// @Summary Delete a draft journal entry
// @Tags journals
// @Param   id path string true "Journal ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Failure 409 {object} ErrorResponse "Journal is not a draft"
// @Security BearerAuth
// @Router /journals/{id} [delete]
func (h *journalHandler) deleteDraft(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	journalID := c.Param("id")
	if err := h.journalService.DeleteDraft(c.Request.Context(), journalID, userID); err != nil {
		respondWithError(c, err, "Failed to delete journal")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Draft journal deleted", slog.String("journal_id", journalID))
	c.Status(http.StatusNoContent)
}

// postJournal godoc
// @Summary Post a draft journal entry
// @Description Moves a balanced DRAFT entry to POSTED so it counts in every balance
// @Tags journals
// @Produce  json
// @Param   id path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} ErrorResponse "Unbalanced or referencing a non-postable account"
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Failure 409 {object} ErrorResponse "Journal is not a draft"
// @Security BearerAuth
// @Router /journals/{id}/post [post]
func (h *journalHandler) postJournal(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	entry, err := h.journalService.PostJournal(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to post journal")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal posted", slog.String("journal_number", entry.JournalNumber))
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// voidJournal godoc
// @Summary Void a posted journal entry
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   id path string true "Journal ID"
// @Param   body body dto.VoidJournalRequest true "Void reason"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} ErrorResponse "Missing reason"
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Failure 409 {object} ErrorResponse "Journal is not posted"
// @Security BearerAuth
// @Router /journals/{id}/void [post]
func (h *journalHandler) voidJournal(c *gin.Context) {
	var req dto.VoidJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	entry, err := h.journalService.VoidJournal(c.Request.Context(), c.Param("id"), req.Reason, userID)
	if err != nil {
		respondWithError(c, err, "Failed to void journal")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal voided", slog.String("journal_number", entry.JournalNumber))
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// accountImpact godoc
// @Summary Preview the account impact of an entry
// @Description Returns each referenced account's balance before and after the entry
// @Tags journals
// @Produce  json
// @Param   id path string true "Journal ID"
// @Success 200 {object} dto.AccountImpactResponse
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Security BearerAuth
// @Router /journals/{id}/impact [get]
func (h *journalHandler) accountImpact(c *gin.Context) {
	journalID := c.Param("id")
	impacts, err := h.journalService.GetAccountImpact(c.Request.Context(), journalID)
	if err != nil {
		respondWithError(c, err, "Failed to compute account impact")
		return
	}
	c.JSON(http.StatusOK, dto.AccountImpactResponse{JournalID: journalID, Impacts: impacts})
}
