package api

import (
	"net/http"

	"stay-ledger/internal/domain/party"
	reqdto "stay-ledger/internal/handler/dto/request"
	resdto "stay-ledger/internal/handler/dto/response"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

// TokenHandler is mounted in debug mode only.
type TokenHandler struct {
	issuer usecase.TokenIssuer
}

func NewTokenHandler(issuer usecase.TokenIssuer) *TokenHandler {
	return &TokenHandler{issuer: issuer}
}

// @Summary Issue a development token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.IssueTokenRequest true "Subject"
// @Success 201 {object} resdto.TokenResponse
// @Failure 400 {object} httperr.Response
// @Router /tokens [post]
func (h *TokenHandler) Issue(c *gin.Context) {
	var req reqdto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request")
		return
	}
	subject, err := party.NewIdentity(req.Subject)
	if err != nil {
		httperr.BadRequest(c, err, "Invalid subject")
		return
	}
	issued, err := h.issuer.Issue(subject)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromIssuedToken(issued))
}
