package api

import (
	"context"
	"net/http"
	"strconv"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/party"
	reqdto "stay-ledger/internal/handler/dto/request"
	resdto "stay-ledger/internal/handler/dto/response"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/handler/middleware"
	"stay-ledger/internal/usecase"
	"stay-ledger/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

type BookingHandler struct {
	ledger usecase.Ledger
}

func NewBookingHandler(ledger usecase.Ledger) *BookingHandler {
	return &BookingHandler{ledger: ledger}
}

// @Summary Book a stay
// @Description Reserve the nights, take the payment into escrow and confirm in one step
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the original booking when repeated"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Success 200 {object} resdto.BookingResponse "Replay of an earlier request"
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	guest, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	key := c.GetHeader(headerIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		httperr.BadRequest(c, errIdempotencyKeyTooLong, "Idempotency-Key is too long")
		return
	}
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err, "Invalid request")
		return
	}
	in, err := req.ToInput(guest, key)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	result, err := h.ledger.Book(c.Request.Context(), in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/bookings/"+strconv.FormatInt(result.Booking.ID, 10))
	if result.Replayed {
		c.Header(headerReplayed, "true")
		c.JSON(http.StatusOK, resdto.FromBookingView(result.Booking))
		return
	}
	c.JSON(http.StatusCreated, resdto.FromBookingView(result.Booking))
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := booking.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	view, err := h.ledger.GetBooking(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Cancel booking
// @Description Guest or host, strictly before the check-in day. Refunds the full hold to the guest.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.ledger.Cancel)
}

// @Summary Complete booking
// @Description Settles the escrow once check-out is reached. Repeating on a completed booking is a no-op.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.ledger.CompleteIfDue)
}

func (h *BookingHandler) transition(c *gin.Context, apply func(context.Context, booking.ID, party.Identity) (*queries.BookingView, error)) {
	id, err := booking.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	view, err := apply(c.Request.Context(), id, caller)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Review a stay
// @Description Only the guest of a completed booking, once
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param request body reqdto.SubmitReviewRequest true "Review"
// @Success 201 {object} resdto.ReviewResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/review [post]
func (h *BookingHandler) Review(c *gin.Context) {
	id, err := booking.ParseID(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid id")
		return
	}
	reviewer, ok := middleware.GetCaller(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errUnauthenticated, "Unauthorized", nil)
		return
	}
	var req reqdto.SubmitReviewRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.BadRequest(c, bindErr, "Invalid request")
		return
	}
	view, err := h.ledger.SubmitReview(c.Request.Context(), id, reviewer, req.Rating, req.Comment)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromReviewView(view))
}
