package memstore

import (
	"context"
	"slices"
	"sort"
	"time"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/infra"
)

func (s *Store) notFound(what string) error {
	return infra.WrapRepoErr(s.logger, infra.KindNotFound, what+" not found", nil)
}

func (s *Store) Listing(_ context.Context, id listing.ID) (*listing.Listing, error) {
	p, ok := s.partition(id)
	if !ok {
		return nil, s.notFound("listing")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneListing(p.listing), nil
}

func (s *Store) BookingListing(_ context.Context, id booking.ID) (listing.ID, error) {
	s.global.Lock()
	defer s.global.Unlock()
	lid, ok := s.bookingIndex[id]
	if !ok {
		return 0, s.notFound("booking")
	}
	return lid, nil
}

func (s *Store) Booking(ctx context.Context, id booking.ID) (*booking.Booking, *escrow.Hold, error) {
	lid, err := s.BookingListing(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, _ := s.partition(lid)
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bookings[id]
	if !ok {
		return nil, nil, s.notFound("booking")
	}
	var h *escrow.Hold
	if held, ok := p.holds[id]; ok {
		h = cloneHold(held)
	}
	return cloneBooking(b), h, nil
}

func (s *Store) ActiveIntervals(_ context.Context, id listing.ID, window booking.StayRange) ([]availability.Interval, error) {
	p, ok := s.partition(id)
	if !ok {
		return nil, s.notFound("listing")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []availability.Interval
	for _, iv := range sortedIntervals(p.intervals) {
		if !iv.Historical && iv.Stay.Overlaps(window) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (s *Store) Reviews(_ context.Context, id listing.ID, afterID review.ID, limit int) ([]*review.Review, error) {
	p, ok := s.partition(id)
	if !ok {
		return nil, s.notFound("listing")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	start := sort.Search(len(p.reviews), func(i int) bool { return p.reviews[i].ID() > afterID })
	end := min(start+limit, len(p.reviews))
	out := make([]*review.Review, end-start)
	copy(out, p.reviews[start:end])
	return out, nil
}

func (s *Store) Events(_ context.Context, afterSeq int64, limit int) ([]event.Event, error) {
	s.global.Lock()
	defer s.global.Unlock()
	// seq n lives at index n-1.
	start := int(max(afterSeq, 0))
	if start >= len(s.events) {
		return []event.Event{}, nil
	}
	end := min(start+limit, len(s.events))
	out := make([]event.Event, end-start)
	copy(out, s.events[start:end])
	return out, nil
}

func (s *Store) DueBookings(_ context.Context, today time.Time, skip []listing.ID, limit int) ([]booking.ID, error) {
	var due []booking.ID
	for _, p := range s.partitionsFrom(0) {
		if slices.Contains(skip, p.id) {
			continue
		}
		p.mu.Lock()
		for id, b := range p.bookings {
			if b.Status() == booking.StatusConfirmed && !today.Before(b.Stay().CheckOut()) {
				due = append(due, id)
			}
		}
		p.mu.Unlock()
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// Totals locks every partition in id order and then the global mutex, so the
// live holds and the journal are read as one snapshot.
func (s *Store) Totals(_ context.Context) (escrow.Totals, error) {
	var locked []*partition
	defer func() {
		for _, p := range locked {
			p.mu.Unlock()
		}
	}()
	for {
		for _, p := range s.partitionsFrom(len(locked)) {
			p.mu.Lock()
			locked = append(locked, p)
		}
		s.global.Lock()
		// Listings are only created under the global mutex, and their ids
		// grow, so locking late arrivals keeps the order.
		if len(s.partitionsFrom(len(locked))) == 0 {
			break
		}
		s.global.Unlock()
	}
	defer s.global.Unlock()

	var t escrow.Totals
	for _, e := range s.journal {
		if err := t.Apply(e); err != nil {
			return escrow.Totals{}, err
		}
	}
	for _, p := range locked {
		for _, h := range p.holds {
			sum, err := t.Held.Add(h.Held())
			if err != nil {
				return escrow.Totals{}, err
			}
			t.Held = sum
		}
	}
	return t, nil
}

func (s *Store) Account(_ context.Context, holder party.Identity) (*escrow.Account, error) {
	s.global.Lock()
	defer s.global.Unlock()
	a, ok := s.accounts[holder]
	if !ok {
		return nil, s.notFound("account")
	}
	return cloneAccount(a), nil
}
