package response

import (
	"stay-ledger/internal/usecase"
)

type TokenResponse struct {
	Subject   string `json:"subject"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func FromIssuedToken(t *usecase.IssuedToken) *TokenResponse {
	res := &TokenResponse{}
	mustCopy(res, t)
	return res
}
