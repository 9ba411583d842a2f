package request

type WithdrawRequest struct {
	AmountMinor int64 `json:"amount_minor" binding:"required"`
}
