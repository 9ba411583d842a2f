package api

import (
	"net/http"
	"strconv"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/listing"
	reqdto "stay-ledger/internal/handler/dto/request"
	resdto "stay-ledger/internal/handler/dto/response"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/handler/middleware"
	"stay-ledger/internal/usecase"
	"stay-ledger/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	ledger usecase.Ledger
}

func NewListingHandler(ledger usecase.Ledger) *ListingHandler {
	return &ListingHandler{ledger: ledger}
}

// @Summary Create listing
// @Description Register a listing owned by the caller
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateListingRequest true "Create listing request"
// @Success 201 {object} resdto.ListingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	owner, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	var req reqdto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request")
		return
	}
	view, err := h.ledger.CreateListing(c.Request.Context(), owner, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/listings/"+strconv.FormatInt(view.ID, 10))
	c.JSON(http.StatusCreated, resdto.FromListingView(view))
}

// @Summary Get listing
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} resdto.ListingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 423 {object} httperr.Response
// @Router /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := listing.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	view, err := h.ledger.GetListing(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromListingView(view))
}

// @Summary Deactivate listing
// @Description Stop accepting new bookings. Existing bookings are untouched.
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Success 200 {object} resdto.ListingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /listings/{id}/deactivate [post]
func (h *ListingHandler) Deactivate(c *gin.Context) {
	id, err := listing.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	view, err := h.ledger.Deactivate(c.Request.Context(), id, caller)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromListingView(view))
}

// @Summary Update nightly price
// @Description Applies to future quotes only
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Param request body reqdto.UpdatePriceRequest true "New price"
// @Success 200 {object} resdto.ListingResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /listings/{id}/price [patch]
func (h *ListingHandler) UpdatePrice(c *gin.Context) {
	id, err := listing.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	var req reqdto.UpdatePriceRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request")
		return
	}
	view, err := h.ledger.UpdatePrice(c.Request.Context(), id, caller, req.PricePerNightMinor)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromListingView(view))
}

// @Summary Listing availability
// @Description Reservations blocking the window [from, to)
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Param from query string true "First night (YYYY-MM-DD)"
// @Param to query string true "Day after the last night (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /listings/{id}/availability [get]
func (h *ListingHandler) Availability(c *gin.Context) {
	id, err := listing.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	window, err := booking.ParseStayRange(c.Query("from"), c.Query("to"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid window")
		return
	}
	view, err := h.ledger.GetAvailability(c.Request.Context(), id, window.CheckIn(), window.CheckOut())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary List listing reviews
// @Description Reviews in submission order with keyset pagination
// @Tags reviews
// @Produce json
// @Param id path int true "Listing ID"
// @Param after query int false "Last review id of the previous page"
// @Param limit query int false "Max items (default 20)"
// @Success 200 {object} resdto.ReviewPageResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /listings/{id}/reviews [get]
func (h *ListingHandler) Reviews(c *gin.Context) {
	id, err := listing.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	after, limit, err := pageParams(c)
	if err != nil {
		httperr.BadRequest(c, err, "Invalid cursor")
		return
	}
	page, err := h.ledger.ListReviews(c.Request.Context(), id, after, limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReviewPage(page))
}

// pageParams reads after and limit. A malformed limit falls back to the default.
func pageParams(c *gin.Context) (int64, int, error) {
	after, err := queries.ParseAfter(c.Query("after"))
	if err != nil {
		return 0, 0, err
	}
	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = iv
		}
	}
	return after, limit, nil
}
