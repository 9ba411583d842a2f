//go:build unit

package api_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"strings"
	"testing"
	"time"

	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/handler/api"
	"stay-ledger/internal/usecase/queries"
	usecasemock "stay-ledger/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// streamRecorder adds the CloseNotifier that gin's Stream requires.
type streamRecorder struct {
	*nethttptest.ResponseRecorder
}

func (streamRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func committed(seq int64) event.Event {
	return event.Event{
		Seq:        seq,
		ID:         uuid.New(),
		Kind:       event.KindBookingConfirmed,
		EntityType: event.EntityBooking,
		EntityID:   "42",
		Actor:      "guest-1",
		Timestamp:  time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func views(seqs ...int64) []queries.EventView {
	out := make([]queries.EventView, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, queries.ToEventView(committed(s)))
	}
	return out
}

// deliver returns a closed subscription channel holding evs, so the stream
// ends once they are consumed.
func deliver(evs ...event.Event) <-chan event.Event {
	ch := make(chan event.Event, len(evs))
	for _, e := range evs {
		ch <- e
	}
	close(ch)
	return ch
}

func streamIDs(t *testing.T, url string, setup func(ledger *usecasemock.MockLedger)) []string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	ledger := usecasemock.NewMockLedger(ctrl)
	setup(ledger)

	router := gin.New()
	router.GET("/events/stream", api.NewEventHandler(ledger).Stream)

	rec := streamRecorder{nethttptest.NewRecorder()}
	router.ServeHTTP(rec, nethttptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ids []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if id, ok := strings.CutPrefix(line, "id:"); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestEventHandler_Stream(t *testing.T) {
	t.Run("a delivery overtaken by a later commit is filled from the log", func(t *testing.T) {
		ids := streamIDs(t, "/events/stream", func(ledger *usecasemock.MockLedger) {
			ledger.EXPECT().Subscribe().Return(deliver(committed(1), committed(3), committed(2)), func() {})
			ledger.EXPECT().ListEvents(gomock.Any(), int64(1), queries.MaxListLimit).
				Return(&queries.EventPage{Items: views(2, 3)}, nil)
		})
		assert.Equal(t, []string{"1", "2", "3"}, ids)
	})

	t.Run("a dropped delivery after the backlog is filled from the log", func(t *testing.T) {
		ids := streamIDs(t, "/events/stream?after=0", func(ledger *usecasemock.MockLedger) {
			ledger.EXPECT().Subscribe().Return(deliver(committed(4)), func() {})
			gomock.InOrder(
				ledger.EXPECT().ListEvents(gomock.Any(), int64(0), queries.MaxListLimit).
					Return(&queries.EventPage{Items: views(1)}, nil),
				ledger.EXPECT().ListEvents(gomock.Any(), int64(1), queries.MaxListLimit).
					Return(&queries.EventPage{Items: views(2, 3, 4)}, nil),
			)
		})
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	})

	t.Run("contiguous deliveries never touch the log", func(t *testing.T) {
		ids := streamIDs(t, "/events/stream", func(ledger *usecasemock.MockLedger) {
			ledger.EXPECT().Subscribe().Return(deliver(committed(7), committed(8)), func() {})
		})
		assert.Equal(t, []string{"7", "8"}, ids)
	})
}
