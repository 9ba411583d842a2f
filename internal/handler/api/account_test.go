//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/handler/api"
	resdto "stay-ledger/internal/handler/dto/response"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/usecase/queries"
	"stay-ledger/tests/common/httptest"
	usecasemock "stay-ledger/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAccountRouter(t *testing.T) (*gin.Engine, *usecasemock.MockLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	ledger := usecasemock.NewMockLedger(ctrl)
	h := api.NewAccountHandler(ledger)
	ev := api.NewEventHandler(ledger)

	router := gin.New()
	auth := newAuth(ctrl).RequireAuth()
	router.GET("/treasury", h.Treasury)
	router.GET("/accounts/me", auth, h.Me)
	router.POST("/accounts/me/withdraw", auth, h.Withdraw)
	router.GET("/events", ev.List)
	return router, ledger
}

func TestAccountHandler(t *testing.T) {
	t.Run("treasury", func(t *testing.T) {
		router, ledger := setupAccountRouter(t)
		ledger.EXPECT().Treasury(gomock.Any()).Return(&queries.TreasuryView{
			AcceptedMinor:     999,
			HostPayoutsMinor:  975,
			PlatformFeesMinor: 24,
			Balanced:          true,
		}, nil)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/treasury", nil, "")

		var body resdto.TreasuryResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.True(t, body.Balanced)
		assert.Equal(t, body.AcceptedMinor, body.HostPayoutsMinor+body.PlatformFeesMinor)
	})

	t.Run("balance of the caller", func(t *testing.T) {
		router, ledger := setupAccountRouter(t)
		at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		ledger.EXPECT().Balance(gomock.Any(), hostID).Return(&queries.AccountView{
			Holder: hostID.String(), BalanceMinor: 975, UpdatedAt: &at,
		}, nil)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/accounts/me", nil, hostToken)

		var body resdto.AccountResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, int64(975), body.BalanceMinor)
		require.NotNil(t, body.UpdatedAt)
		assert.Equal(t, at.Unix(), *body.UpdatedAt)
	})

	t.Run("withdraw from the caller's own account", func(t *testing.T) {
		router, ledger := setupAccountRouter(t)
		ledger.EXPECT().Withdraw(gomock.Any(), hostID, hostID, int64(500)).Return(&queries.AccountView{
			Holder: hostID.String(), BalanceMinor: 475,
		}, nil)

		rec := httptest.PerformRequest(t, router, http.MethodPost, "/accounts/me/withdraw",
			map[string]any{"amount_minor": 500}, hostToken)

		var body resdto.AccountResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, int64(475), body.BalanceMinor)
	})

	t.Run("withdraw more than the balance is 422", func(t *testing.T) {
		router, ledger := setupAccountRouter(t)
		ledger.EXPECT().Withdraw(gomock.Any(), hostID, hostID, int64(5000)).Return(nil, escrow.ErrInsufficient)

		rec := httptest.PerformRequest(t, router, http.MethodPost, "/accounts/me/withdraw",
			map[string]any{"amount_minor": 5000}, hostToken)

		httptest.AssertErrorCode(t, rec, http.StatusUnprocessableEntity, httperr.CodeInsufficientFunds)
	})

	t.Run("events page", func(t *testing.T) {
		router, ledger := setupAccountRouter(t)
		ledger.EXPECT().ListEvents(gomock.Any(), int64(10), 5).Return(&queries.EventPage{
			Items: []queries.EventView{{Seq: 11, Kind: "booking.confirmed", EntityType: "booking", EntityID: "42"}},
		}, nil)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/events?after=10&limit=5", nil, "")

		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
		assert.Contains(t, rec.Body.String(), "booking.confirmed")
	})

	t.Run("events with a bad cursor", func(t *testing.T) {
		router, _ := setupAccountRouter(t)
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/events?after=-1", nil, "")
		httptest.AssertErrorCode(t, rec, http.StatusBadRequest, httperr.CodeInvalidInput)
	})
}
