package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stay-ledger/internal/pkg/errs"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// Code values of the error body. Clients switch on these, not on messages.
const (
	CodeInvalidInput       = "invalid_input"
	CodeUnauthenticated    = "unauthenticated"
	CodeNotAuthorized      = "not_authorized"
	CodeNotFound           = "not_found"
	CodeDatesUnavailable   = "dates_unavailable"
	CodeTooLateToCancel    = "too_late_to_cancel"
	CodeAlreadySettled     = "already_settled"
	CodeNotYetEligible     = "not_yet_eligible"
	CodeNotEligible        = "not_eligible"
	CodeInsufficientFunds  = "insufficient_funds"
	CodeEntityHalted       = "entity_halted"
	CodeRateLimited        = "rate_limited"
	CodeInvariantViolation = "invariant_violation"
	CodeInternal           = "internal"
)

type mapping struct {
	status int
	code   string
}

var byClass = map[error]mapping{
	errs.ErrInvalidInput:       {http.StatusBadRequest, CodeInvalidInput},
	errs.ErrNotAuthorized:      {http.StatusForbidden, CodeNotAuthorized},
	errs.ErrNotFound:           {http.StatusNotFound, CodeNotFound},
	errs.ErrDatesUnavailable:   {http.StatusConflict, CodeDatesUnavailable},
	errs.ErrTooLateToCancel:    {http.StatusConflict, CodeTooLateToCancel},
	errs.ErrAlreadySettled:     {http.StatusConflict, CodeAlreadySettled},
	errs.ErrNotYetEligible:     {http.StatusUnprocessableEntity, CodeNotYetEligible},
	errs.ErrNotEligible:        {http.StatusUnprocessableEntity, CodeNotEligible},
	errs.ErrInsufficientFunds:  {http.StatusUnprocessableEntity, CodeInsufficientFunds},
	errs.ErrEntityHalted:       {http.StatusLocked, CodeEntityHalted},
	errs.ErrInvariantViolation: {http.StatusInternalServerError, CodeInvariantViolation},
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, code string, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Error.Code = code
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort maps err by its class. Unclassified errors become 500 and their
// message is not shown to the client.
func Abort(c *gin.Context, err error) {
	m, ok := byClass[errs.ClassOf(err)]
	if !ok {
		AbortWithError(c, http.StatusInternalServerError, CodeInternal, err, "Internal server error", nil)
		return
	}
	msg := err.Error()
	if m.status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	AbortWithError(c, m.status, m.code, err, msg, nil)
}

func BadRequest(c *gin.Context, err error, msg string) {
	AbortWithError(c, http.StatusBadRequest, CodeInvalidInput, err, msg, nil)
}
