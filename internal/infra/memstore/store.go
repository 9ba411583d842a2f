// Package memstore keeps the ledger in process memory. Each listing is a
// partition with its own mutex; id counters, the journal, account balances,
// idempotency keys and the event log sit behind one global mutex. A unit of
// work always takes its partition before the global mutex.
package memstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/shared"
)

type partition struct {
	mu        sync.Mutex
	id        listing.ID
	listing   *listing.Listing
	bookings  map[booking.ID]*booking.Booking
	holds     map[booking.ID]*escrow.Hold
	intervals map[booking.ID]availability.Interval
	reviews   []*review.Review
	reviewed  map[booking.ID]bool
}

func newPartition(l *listing.Listing) *partition {
	return &partition{
		id:        l.ID(),
		listing:   l,
		bookings:  make(map[booking.ID]*booking.Booking),
		holds:     make(map[booking.ID]*escrow.Hold),
		intervals: make(map[booking.ID]availability.Interval),
		reviewed:  make(map[booking.ID]bool),
	}
}

type idemKey struct {
	key    string
	caller party.Identity
}

type Store struct {
	partsMu sync.RWMutex
	parts   map[listing.ID]*partition
	order   []listing.ID

	global       sync.Mutex
	nextListing  int64
	nextBooking  int64
	nextReview   int64
	nextEntry    int64
	bookingIndex map[booking.ID]listing.ID
	journal      []escrow.Entry
	accounts     map[party.Identity]*escrow.Account
	idempotency  map[idemKey]shared.IdempotencyRecord
	events       []event.Event

	publisher shared.EventPublisher
	logger    *slog.Logger
}

// New returns an empty store. publisher may be nil.
func New(publisher shared.EventPublisher, logger *slog.Logger) *Store {
	return &Store{
		parts:        make(map[listing.ID]*partition),
		bookingIndex: make(map[booking.ID]listing.ID),
		accounts:     make(map[party.Identity]*escrow.Account),
		idempotency:  make(map[idemKey]shared.IdempotencyRecord),
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *Store) partition(id listing.ID) (*partition, bool) {
	s.partsMu.RLock()
	defer s.partsMu.RUnlock()
	p, ok := s.parts[id]
	return p, ok
}

func (s *Store) addPartition(l *listing.Listing) {
	s.partsMu.Lock()
	defer s.partsMu.Unlock()
	s.parts[l.ID()] = newPartition(l)
	s.order = append(s.order, l.ID())
}

// partitionsFrom returns the partitions at positions i and later, in id order.
func (s *Store) partitionsFrom(i int) []*partition {
	s.partsMu.RLock()
	defer s.partsMu.RUnlock()
	if i >= len(s.order) {
		return nil
	}
	out := make([]*partition, 0, len(s.order)-i)
	for _, id := range s.order[i:] {
		out = append(out, s.parts[id])
	}
	return out
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.global.Lock()
	defer s.global.Unlock()

	tx := newTx(s, nil, true)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) WithinListing(ctx context.Context, id listing.ID, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, ok := s.partition(id)
	if !ok {
		return errs.Wrapf(listing.ErrListingMissing, "listing %d", id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	tx := newTx(s, p, false)
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.global.Lock()
	defer s.global.Unlock()
	tx.globalHeld = true
	return s.commit(tx)
}

func (s *Store) WithinBooking(ctx context.Context, id booking.ID, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.global.Lock()
	lid, ok := s.bookingIndex[id]
	s.global.Unlock()
	if !ok {
		return errs.Wrapf(booking.ErrBookingMissing, "booking %d", id)
	}
	return s.WithinListing(ctx, lid, fn)
}

// commit runs with the global mutex held, and the partition mutex too for
// listing-scoped work. Every check that can fail happens before the first
// write is applied.
func (s *Store) commit(t *memTx) error {
	for _, rec := range t.idem {
		if _, dup := s.idempotency[idemKey{rec.Key, rec.Caller}]; dup {
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "idempotency key already used", nil)
		}
	}
	balances, err := s.creditedBalances(t)
	if err != nil {
		return err
	}

	for holder, a := range t.accounts {
		s.accounts[holder] = cloneAccount(a)
	}
	for holder, a := range balances {
		s.accounts[holder] = a
	}
	for _, e := range t.entries {
		s.nextEntry++
		e.ID = s.nextEntry
		s.journal = append(s.journal, e)
	}
	for _, rec := range t.idem {
		s.idempotency[idemKey{rec.Key, rec.Caller}] = rec
	}
	for _, l := range t.newListings {
		s.addPartition(cloneListing(l))
	}
	if p := t.part; p != nil {
		t.applyPartition(p)
		for id := range t.newBookings {
			s.bookingIndex[id] = p.id
		}
	}

	published := make([]event.Event, 0, len(t.events))
	for _, ev := range t.events {
		ev.Seq = int64(len(s.events)) + 1
		s.events = append(s.events, ev)
		published = append(published, ev)
	}
	if s.publisher != nil && len(published) > 0 {
		s.publisher.Publish(published)
	}
	return nil
}

func (s *Store) creditedBalances(t *memTx) (map[party.Identity]*escrow.Account, error) {
	if len(t.credits) == 0 {
		return nil, nil
	}
	out := make(map[party.Identity]*escrow.Account)
	for _, c := range t.credits {
		a, ok := out[c.Holder]
		if !ok {
			a = s.account(c.Holder)
		}
		sum, err := a.Balance().Add(c.Amount)
		if err != nil {
			return nil, err
		}
		at := a.UpdatedAt()
		if c.At.After(at) {
			at = c.At
		}
		out[c.Holder] = escrow.ReconstructAccount(c.Holder, sum, at)
	}
	return out, nil
}

// account returns a copy of holder's committed account. Caller holds global.
func (s *Store) account(holder party.Identity) *escrow.Account {
	if a, ok := s.accounts[holder]; ok {
		return cloneAccount(a)
	}
	return escrow.NewAccount(holder)
}

func sortedIntervals(m map[booking.ID]availability.Interval) []availability.Interval {
	out := make([]availability.Interval, 0, len(m))
	for _, iv := range m {
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Stay.CheckIn().Before(out[j].Stay.CheckIn())
	})
	return out
}

func cloneListing(l *listing.Listing) *listing.Listing {
	c := *l
	return &c
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	c := *b
	return &c
}

func cloneHold(h *escrow.Hold) *escrow.Hold {
	c := *h
	return &c
}

func cloneAccount(a *escrow.Account) *escrow.Account {
	c := *a
	return &c
}
