package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:code", h.getAccount)
		accounts.GET("/:code/ancestry", h.resolveAncestry)
		accounts.GET("/:code/children", h.listChildren)
		accounts.PATCH("/:code", h.updateAccount)
		accounts.POST("/:code/activate", h.activateAccount)
		accounts.POST("/:code/deactivate", h.deactivateAccount)
		accounts.DELETE("/:code", h.deleteAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates an account in the chart. Children inherit type and normal balance from their root.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("account_code", req.Code))
	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_code", newAccount.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount godoc
// @Summary Get an account by code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{code} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists accounts ordered by code with optional filters
// @Tags accounts
// @Produce  json
// @Param   type query string false "Account type"
// @Param   parent query string false "Parent code"
// @Param   roots query bool false "Only root accounts"
// @Param   active query bool false "Only active accounts"
// @Param   leafOnly query bool false "Only postable leaf accounts"
// @Param   search query string false "Search code or name"
// @Param   limit query int false "Limit" default(100)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondWithError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// resolveAncestry godoc
// @Summary Resolve the ancestry of an account
// @Description Returns the account followed by each ancestor up to its root
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/ancestry [get]
func (h *accountHandler) resolveAncestry(c *gin.Context) {
	chain, err := h.accountService.ResolveAncestry(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondWithError(c, err, "Failed to resolve ancestry")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(chain)})
}

// listChildren godoc
// @Summary List direct children of an account
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/children [get]
func (h *accountHandler) listChildren(c *gin.Context) {
	children, err := h.accountService.ListChildren(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondWithError(c, err, "Failed to list children")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(children)})
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates descriptive fields. The type of a root can change only while its subtree has no journal lines.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   code path string true "Account code"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{code} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	updated, err := h.accountService.UpdateAccount(c.Request.Context(), code, req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully", slog.String("account_code", code))
	c.JSON(http.StatusOK, dto.ToAccountResponse(updated))
}

// activateAccount godoc
// @Summary Activate an account
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/activate [post]
func (h *accountHandler) activateAccount(c *gin.Context) {
	h.setActive(c, true)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description A deactivated account keeps its history but cannot receive new postings.
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	h.setActive(c, false)
}

func (h *accountHandler) setActive(c *gin.Context, active bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	toggle := h.accountService.DeactivateAccount
	if active {
		toggle = h.accountService.ActivateAccount
	}
	account, err := toggle(c.Request.Context(), code, userID)
	if err != nil {
		respondWithError(c, err, "Failed to change account status")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account status changed",
		slog.String("account_code", code), slog.Bool("active", active))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Hard-deletes an account that has no children and no journal lines
// @Tags accounts
// @Param   code path string true "Account code"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Account has children or journal lines"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{code} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	code := c.Param("code")
	if _, ok := requireUserID(c); !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), code); err != nil {
		respondWithError(c, err, "Failed to delete account")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account deleted successfully", slog.String("account_code", code))
	c.Status(http.StatusNoContent)
}
