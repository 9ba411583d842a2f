package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	resdto "stay-ledger/internal/handler/dto/response"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/usecase"
	"stay-ledger/internal/usecase/queries"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 15 * time.Second

type EventHandler struct {
	ledger usecase.Ledger
}

func NewEventHandler(ledger usecase.Ledger) *EventHandler {
	return &EventHandler{ledger: ledger}
}

// @Summary List events
// @Description Committed events in sequence order
// @Tags events
// @Produce json
// @Param after query int false "Return events with seq greater than this"
// @Param limit query int false "Max items (default 20)"
// @Success 200 {object} resdto.EventPageResponse
// @Failure 400 {object} httperr.Response
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	after, limit, err := pageParams(c)
	if err != nil {
		httperr.BadRequest(c, err, "Invalid cursor")
		return
	}
	page, err := h.ledger.ListEvents(c.Request.Context(), after, limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromEventPage(page))
}

// @Summary Stream events
// @Description Server-sent events. With after, the backlog is replayed before live events.
// @Tags events
// @Produce text/event-stream
// @Param after query int false "Replay events with seq greater than this first"
// @Success 200 {object} resdto.EventResponse
// @Router /events/stream [get]
func (h *EventHandler) Stream(c *gin.Context) {
	after, err := queries.ParseAfter(c.Query("after"))
	if err != nil {
		httperr.BadRequest(c, err, "Invalid cursor")
		return
	}
	events, cancel := h.ledger.Subscribe()
	defer cancel()

	// subscribe before reading the backlog so nothing committed in between is lost
	var backlog []queries.EventView
	if c.Query("after") != "" {
		cursor := after
		for {
			page, err := h.ledger.ListEvents(c.Request.Context(), cursor, queries.MaxListLimit)
			if err != nil {
				httperr.Abort(c, err)
				return
			}
			backlog = append(backlog, page.Items...)
			if page.NextAfter == nil {
				break
			}
			cursor = *page.NextAfter
		}
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	last := after
	live := c.Query("after") == ""
	send := func(v *queries.EventView) {
		if v.Seq <= last {
			return
		}
		last = v.Seq
		c.Render(-1, sse.Event{
			Id:    strconv.FormatInt(v.Seq, 10),
			Event: v.Kind,
			Data:  resdto.FromEventView(v),
		})
	}
	// fill replays from the log what the subscription skipped: a delivery
	// dropped for a full buffer, or one overtaken by a later commit. Seq has
	// no gaps, and every seq below a delivered one is already committed.
	fill := func(until int64) error {
		for last < until-1 {
			page, err := h.ledger.ListEvents(c.Request.Context(), last, queries.MaxListLimit)
			if err != nil {
				return err
			}
			before := last
			for i := range page.Items {
				if page.Items[i].Seq >= until {
					break
				}
				send(&page.Items[i])
			}
			if last == before {
				return nil
			}
		}
		return nil
	}
	for i := range backlog {
		send(&backlog[i])
	}

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, ok := <-events:
			if !ok {
				return false
			}
			v := queries.ToEventView(e)
			if live {
				// without a cursor the stream starts at the first delivery
				live = false
				last = v.Seq - 1
			}
			if err := fill(v.Seq); err != nil {
				_ = c.Error(err)
				return false
			}
			send(&v)
			return true
		case <-ticker.C:
			c.SSEvent("ping", strconv.FormatInt(last, 10))
			return true
		}
	})
}
