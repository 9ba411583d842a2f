package response

import (
	"stay-ledger/internal/usecase/queries"
)

type TreasuryResponse struct {
	AcceptedMinor     int64 `json:"accepted_minor"`
	HostPayoutsMinor  int64 `json:"host_payouts_minor"`
	PlatformFeesMinor int64 `json:"platform_fees_minor"`
	RefundsMinor      int64 `json:"refunds_minor"`
	WithdrawalsMinor  int64 `json:"withdrawals_minor"`
	HeldMinor         int64 `json:"held_minor"`
	Balanced          bool  `json:"balanced"`
}

func FromTreasuryView(v *queries.TreasuryView) *TreasuryResponse {
	res := &TreasuryResponse{}
	mustCopy(res, v)
	return res
}

type AccountResponse struct {
	Holder       string `json:"holder"`
	BalanceMinor int64  `json:"balance_minor"`
	UpdatedAt    *int64 `json:"updated_at"`
}

func FromAccountView(v *queries.AccountView) *AccountResponse {
	res := &AccountResponse{Holder: v.Holder, BalanceMinor: v.BalanceMinor}
	if v.UpdatedAt != nil {
		ts := v.UpdatedAt.Unix()
		res.UpdatedAt = &ts
	}
	return res
}
