package api

import (
	"net/http"

	reqdto "stay-ledger/internal/handler/dto/request"
	resdto "stay-ledger/internal/handler/dto/response"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/handler/middleware"
	"stay-ledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	ledger usecase.Ledger
}

func NewAccountHandler(ledger usecase.Ledger) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// @Summary Treasury totals
// @Description Journal totals and the conservation check
// @Tags accounts
// @Produce json
// @Success 200 {object} resdto.TreasuryResponse
// @Router /treasury [get]
func (h *AccountHandler) Treasury(c *gin.Context) {
	view, err := h.ledger.Treasury(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTreasuryView(view))
}

// @Summary Own balance
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.AccountResponse
// @Failure 401 {object} httperr.Response
// @Router /accounts/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	view, err := h.ledger.Balance(c.Request.Context(), caller)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAccountView(view))
}

// @Summary Withdraw
// @Description Pay out part of the caller's settled balance
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.WithdrawRequest true "Amount in minor units"
// @Success 200 {object} resdto.AccountResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /accounts/me/withdraw [post]
func (h *AccountHandler) Withdraw(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	var req reqdto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request")
		return
	}
	view, err := h.ledger.Withdraw(c.Request.Context(), caller, caller, req.AmountMinor)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAccountView(view))
}
