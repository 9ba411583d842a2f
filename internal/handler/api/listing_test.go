//go:build unit

package api_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/handler/api"
	resdto "stay-ledger/internal/handler/dto/response"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/usecase/commands"
	"stay-ledger/internal/usecase/queries"
	"stay-ledger/tests/common/builder"
	"stay-ledger/tests/common/httptest"
	"stay-ledger/tests/common/testutil"
	usecasemock "stay-ledger/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

func listingView() *queries.ListingView {
	b := builder.NewListingBuilder()
	return &queries.ListingView{
		ID:                 1,
		Owner:              hostID.String(),
		PricePerNightMinor: b.Price,
		Name:               b.Name,
		Location:           b.Location,
		Description:        b.Description,
		ImageURI:           b.ImageURI,
		Active:             true,
		CreatedAt:          b.Now,
		UpdatedAt:          b.Now,
	}
}

type ListingHandlerTestSuite struct {
	suite.Suite
	router     *gin.Engine
	mockCtrl   *gomock.Controller
	mockLedger *usecasemock.MockLedger
}

func (s *ListingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockLedger = usecasemock.NewMockLedger(s.mockCtrl)
	h := api.NewListingHandler(s.mockLedger)

	auth := newAuth(s.mockCtrl).RequireAuth()
	s.router.POST("/listings", auth, h.Create)
	s.router.GET("/listings/:id", h.Get)
	s.router.POST("/listings/:id/deactivate", auth, h.Deactivate)
	s.router.PATCH("/listings/:id/price", auth, h.UpdatePrice)
	s.router.GET("/listings/:id/availability", h.Availability)
	s.router.GET("/listings/:id/reviews", h.Reviews)
}

func (s *ListingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestListingHandlerSuite(t *testing.T) {
	suite.Run(t, new(ListingHandlerTestSuite))
}

func (s *ListingHandlerTestSuite) TestCreate() {
	url := "/listings"
	reqBody := builder.NewListingBuilder().BuildCreateRequestDTO()

	s.Run("success: 201 owned by the caller", func() {
		s.mockLedger.EXPECT().CreateListing(gomock.Any(), hostID, commands.CreateListingInput{
			PricePerNightMinor: reqBody.PricePerNightMinor,
			Name:               reqBody.Name,
			Location:           reqBody.Location,
			Description:        reqBody.Description,
			ImageURI:           reqBody.ImageURI,
		}).Return(listingView(), nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, hostToken)

		var body resdto.ListingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(hostID.String(), body.Owner)
		s.True(body.Active)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/listings/1"})
	})

	s.Run("error: 400 on validation errors", func() {
		cases := []testCaseBooking{
			{name: "missing name", mutate: testutil.Field("name", nil), expectCode: http.StatusBadRequest},
			{name: "missing price", mutate: testutil.Field("price_per_night_minor", nil), expectCode: http.StatusBadRequest},
			{name: "name too long", mutate: testutil.Field("name", strings.Repeat("n", 201)), expectCode: http.StatusBadRequest},
			{name: "image uri too long", mutate: testutil.Field("image_uri", strings.Repeat("u", 2049)), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, testutil.DtoMap(s.T(), reqBody, tc.mutate), hostToken)
				httptest.AssertErrorCode(s.T(), rec, tc.expectCode, httperr.CodeInvalidInput)
			})
		}
	})

	s.Run("error: 400 on a negative price from the domain", func() {
		s.mockLedger.EXPECT().CreateListing(gomock.Any(), hostID, gomock.Any()).Return(nil, listing.ErrInvalidPrice)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			testutil.DtoMap(s.T(), reqBody, testutil.Field("price_per_night_minor", -5)), hostToken)
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, httperr.CodeInvalidInput)
	})
}

func (s *ListingHandlerTestSuite) TestOwnerActions() {
	s.Run("deactivate by the owner", func() {
		view := listingView()
		view.Active = false
		s.mockLedger.EXPECT().Deactivate(gomock.Any(), listing.ID(1), hostID).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/listings/1/deactivate", nil, hostToken)

		var body resdto.ListingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.False(body.Active)
	})

	s.Run("deactivate by someone else is 403", func() {
		s.mockLedger.EXPECT().Deactivate(gomock.Any(), listing.ID(1), guestID).Return(nil, listing.ErrNotOwner)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/listings/1/deactivate", nil, guestToken)
		httptest.AssertErrorCode(s.T(), rec, http.StatusForbidden, httperr.CodeNotAuthorized)
	})

	s.Run("update price", func() {
		view := listingView()
		view.PricePerNightMinor = 12000
		s.mockLedger.EXPECT().UpdatePrice(gomock.Any(), listing.ID(1), hostID, int64(12000)).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/listings/1/price",
			map[string]any{"price_per_night_minor": 12000}, hostToken)

		var body resdto.ListingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(12000), body.PricePerNightMinor)
	})
}

func (s *ListingHandlerTestSuite) TestAvailability() {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s.Run("success: blocked intervals as dates", func() {
		s.mockLedger.EXPECT().GetAvailability(gomock.Any(), listing.ID(1), from, from.AddDate(0, 0, 7)).
			Return(&queries.AvailabilityView{
				ListingID: 1,
				From:      from,
				To:        from.AddDate(0, 0, 7),
				Blocked: []queries.IntervalView{
					{BookingID: 9, CheckIn: from.AddDate(0, 0, 2), CheckOut: from.AddDate(0, 0, 4)},
				},
			}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/listings/1/availability?from=2026-03-01&to=2026-03-08", nil, "")

		var body resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.False(body.Available)
		s.Require().Len(body.Blocked, 1)
		s.Equal("2026-03-03", body.Blocked[0].CheckIn)
		s.Equal("2026-03-05", body.Blocked[0].CheckOut)
	})

	s.Run("error: 400 on an empty window", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/listings/1/availability?from=2026-03-01&to=2026-03-01", nil, "")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, httperr.CodeInvalidInput)
	})
}

func (s *ListingHandlerTestSuite) TestReviews() {
	s.Run("passes the cursor and limit through", func() {
		next := int64(3)
		s.mockLedger.EXPECT().ListReviews(gomock.Any(), listing.ID(1), int64(1), 2).Return(&queries.ReviewPage{
			Items: []queries.ReviewView{
				{ID: 2, BookingID: 5, ListingID: 1, Reviewer: guestID.String(), Rating: 4, Comment: "Quiet"},
				{ID: 3, BookingID: 6, ListingID: 1, Reviewer: guestID.String(), Rating: 5, Comment: "Great"},
			},
			NextAfter: &next,
		}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/listings/1/reviews?after=1&limit=2", nil, "")

		var body resdto.ReviewPageResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 2)
		s.Require().NotNil(body.NextAfter)
		s.Equal(int64(3), *body.NextAfter)
	})

	s.Run("error: 404 for an unknown listing", func() {
		s.mockLedger.EXPECT().ListReviews(gomock.Any(), listing.ID(99), int64(0), gomock.Any()).Return(nil, listing.ErrListingMissing)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/listings/99/reviews", nil, "")
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, httperr.CodeNotFound)
	})
}
