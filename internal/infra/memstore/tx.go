package memstore

import (
	"context"
	"time"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/usecase/shared"
)

type ivOpKind int

const (
	ivInsert ivOpKind = iota + 1
	ivDelete
	ivArchive
)

type ivOp struct {
	kind ivOpKind
	iv   availability.Interval
}

// memTx stages writes until commit. Reads see committed state overlaid with
// the transaction's own writes.
type memTx struct {
	s          *Store
	part       *partition // nil for the global scope
	globalHeld bool

	newListings []*listing.Listing
	listing     *listing.Listing
	bookings    map[booking.ID]*booking.Booking
	newBookings map[booking.ID]bool
	holds       map[booking.ID]*escrow.Hold
	ivOps       map[booking.ID]ivOp
	reviews     []*review.Review
	entries     []escrow.Entry
	credits     []escrow.Credit
	accounts    map[party.Identity]*escrow.Account
	events      []event.Event
	idem        []shared.IdempotencyRecord
}

func newTx(s *Store, p *partition, globalHeld bool) *memTx {
	return &memTx{
		s:           s,
		part:        p,
		globalHeld:  globalHeld,
		bookings:    make(map[booking.ID]*booking.Booking),
		newBookings: make(map[booking.ID]bool),
		holds:       make(map[booking.ID]*escrow.Hold),
		ivOps:       make(map[booking.ID]ivOp),
		accounts:    make(map[party.Identity]*escrow.Account),
	}
}

// withGlobal runs fn under the global mutex, taking it only if this
// transaction does not already hold it.
func (t *memTx) withGlobal(fn func()) {
	if t.globalHeld {
		fn()
		return
	}
	t.s.global.Lock()
	defer t.s.global.Unlock()
	fn()
}

func (t *memTx) inScope(id listing.ID) error {
	if t.part == nil || t.part.id != id {
		return infra.WrapRepoErr(t.s.logger, infra.KindDBFailure, "listing "+id.String()+" is outside this unit of work", nil)
	}
	return nil
}

func (t *memTx) notFound(what string) error {
	return infra.WrapRepoErr(t.s.logger, infra.KindNotFound, what+" not found", nil)
}

// applyPartition runs under the partition mutex.
func (t *memTx) applyPartition(p *partition) {
	if t.listing != nil {
		p.listing = cloneListing(t.listing)
	}
	for id, b := range t.bookings {
		p.bookings[id] = cloneBooking(b)
	}
	for id, h := range t.holds {
		p.holds[id] = cloneHold(h)
	}
	for id, op := range t.ivOps {
		switch op.kind {
		case ivInsert:
			p.intervals[id] = op.iv
		case ivDelete:
			delete(p.intervals, id)
		case ivArchive:
			iv := p.intervals[id]
			iv.Historical = true
			p.intervals[id] = iv
		}
	}
	for _, r := range t.reviews {
		p.reviews = append(p.reviews, r)
		p.reviewed[r.BookingID()] = true
	}
}

func (t *memTx) Listings() shared.ListingRepository         { return listingRepo{t} }
func (t *memTx) Bookings() shared.BookingRepository         { return bookingRepo{t} }
func (t *memTx) Reservations() shared.ReservationRepository { return reservationRepo{t} }
func (t *memTx) Escrow() shared.EscrowRepository            { return escrowRepo{t} }
func (t *memTx) Accounts() shared.AccountRepository         { return accountRepo{t} }
func (t *memTx) Reviews() shared.ReviewRepository           { return reviewRepo{t} }
func (t *memTx) Events() shared.EventRepository             { return eventRepo{t} }
func (t *memTx) Idempotency() shared.IdempotencyRepository  { return idempotencyRepo{t} }

type listingRepo struct{ t *memTx }

func (r listingRepo) NextID(context.Context) (listing.ID, error) {
	var id listing.ID
	r.t.withGlobal(func() {
		r.t.s.nextListing++
		id = listing.ID(r.t.s.nextListing)
	})
	return id, nil
}

func (r listingRepo) Create(_ context.Context, l *listing.Listing) error {
	if r.t.part != nil {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindDBFailure, "listings are created in the global scope", nil)
	}
	r.t.newListings = append(r.t.newListings, cloneListing(l))
	return nil
}

func (r listingRepo) Get(_ context.Context, id listing.ID) (*listing.Listing, error) {
	for _, l := range r.t.newListings {
		if l.ID() == id {
			return cloneListing(l), nil
		}
	}
	if err := r.t.inScope(id); err != nil {
		return nil, err
	}
	if r.t.listing != nil {
		return cloneListing(r.t.listing), nil
	}
	return cloneListing(r.t.part.listing), nil
}

func (r listingRepo) Update(_ context.Context, l *listing.Listing) error {
	if err := r.t.inScope(l.ID()); err != nil {
		return err
	}
	r.t.listing = cloneListing(l)
	return nil
}

type bookingRepo struct{ t *memTx }

func (r bookingRepo) NextID(context.Context) (booking.ID, error) {
	var id booking.ID
	r.t.withGlobal(func() {
		r.t.s.nextBooking++
		id = booking.ID(r.t.s.nextBooking)
	})
	return id, nil
}

func (r bookingRepo) exists(id booking.ID) bool {
	if _, ok := r.t.bookings[id]; ok {
		return true
	}
	_, ok := r.t.part.bookings[id]
	return ok
}

func (r bookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if err := r.t.inScope(b.ListingID()); err != nil {
		return err
	}
	if r.exists(b.ID()) {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindDuplicateKey, "booking "+b.ID().String()+" exists", nil)
	}
	r.t.bookings[b.ID()] = cloneBooking(b)
	r.t.newBookings[b.ID()] = true
	return nil
}

func (r bookingRepo) Get(_ context.Context, id booking.ID) (*booking.Booking, error) {
	if r.t.part == nil {
		return nil, r.t.notFound("booking")
	}
	if b, ok := r.t.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	if b, ok := r.t.part.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, r.t.notFound("booking")
}

func (r bookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if err := r.t.inScope(b.ListingID()); err != nil {
		return err
	}
	if !r.exists(b.ID()) {
		return r.t.notFound("booking")
	}
	r.t.bookings[b.ID()] = cloneBooking(b)
	return nil
}

type reservationRepo struct{ t *memTx }

func (r reservationRepo) current() map[booking.ID]availability.Interval {
	out := make(map[booking.ID]availability.Interval, len(r.t.part.intervals)+len(r.t.ivOps))
	for id, iv := range r.t.part.intervals {
		out[id] = iv
	}
	for id, op := range r.t.ivOps {
		switch op.kind {
		case ivInsert:
			out[id] = op.iv
		case ivDelete:
			delete(out, id)
		case ivArchive:
			iv := out[id]
			iv.Historical = true
			out[id] = iv
		}
	}
	return out
}

func (r reservationRepo) Calendar(_ context.Context, id listing.ID, since time.Time) (*availability.Calendar, error) {
	if err := r.t.inScope(id); err != nil {
		return nil, err
	}
	var live []availability.Interval
	for _, iv := range sortedIntervals(r.current()) {
		if iv.Stay.CheckOut().After(since) {
			live = append(live, iv)
		}
	}
	return availability.NewCalendar(id, live)
}

func (r reservationRepo) Insert(_ context.Context, id listing.ID, iv availability.Interval) error {
	if err := r.t.inScope(id); err != nil {
		return err
	}
	for bid, other := range r.current() {
		if bid == iv.BookingID {
			return infra.WrapRepoErr(r.t.s.logger, infra.KindDuplicateKey, "reservation exists for booking "+bid.String(), nil)
		}
		if other.Stay.Overlaps(iv.Stay) {
			return infra.WrapRepoErr(r.t.s.logger, infra.KindConflict, "reservation overlaps booking "+bid.String(), nil)
		}
	}
	r.t.ivOps[iv.BookingID] = ivOp{kind: ivInsert, iv: iv}
	return nil
}

func (r reservationRepo) Delete(_ context.Context, id listing.ID, bookingID booking.ID) error {
	if err := r.t.inScope(id); err != nil {
		return err
	}
	if _, ok := r.current()[bookingID]; !ok {
		return r.t.notFound("reservation")
	}
	r.t.ivOps[bookingID] = ivOp{kind: ivDelete}
	return nil
}

func (r reservationRepo) Archive(_ context.Context, id listing.ID, bookingID booking.ID) error {
	if err := r.t.inScope(id); err != nil {
		return err
	}
	iv, ok := r.current()[bookingID]
	if !ok {
		return r.t.notFound("reservation")
	}
	if op, staged := r.t.ivOps[bookingID]; staged && op.kind == ivInsert {
		iv.Historical = true
		r.t.ivOps[bookingID] = ivOp{kind: ivInsert, iv: iv}
		return nil
	}
	r.t.ivOps[bookingID] = ivOp{kind: ivArchive}
	return nil
}

type escrowRepo struct{ t *memTx }

func (r escrowRepo) CreateHold(_ context.Context, h *escrow.Hold) error {
	if r.t.part == nil || !(bookingRepo{r.t}).exists(h.BookingID()) {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindForeignKeyViolated, "hold references unknown booking "+h.BookingID().String(), nil)
	}
	if _, err := r.GetHold(context.Background(), h.BookingID()); err == nil {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindDuplicateKey, "hold exists for booking "+h.BookingID().String(), nil)
	}
	r.t.holds[h.BookingID()] = cloneHold(h)
	return nil
}

func (r escrowRepo) GetHold(_ context.Context, bookingID booking.ID) (*escrow.Hold, error) {
	if h, ok := r.t.holds[bookingID]; ok {
		return cloneHold(h), nil
	}
	if r.t.part != nil {
		if h, ok := r.t.part.holds[bookingID]; ok {
			return cloneHold(h), nil
		}
	}
	return nil, r.t.notFound("escrow hold")
}

func (r escrowRepo) UpdateHold(ctx context.Context, h *escrow.Hold) error {
	if _, err := r.GetHold(ctx, h.BookingID()); err != nil {
		return err
	}
	r.t.holds[h.BookingID()] = cloneHold(h)
	return nil
}

func (r escrowRepo) AppendEntries(_ context.Context, entries ...escrow.Entry) error {
	for _, e := range entries {
		r.t.entries = append(r.t.entries, e)
	}
	return nil
}

type accountRepo struct{ t *memTx }

func (r accountRepo) Get(_ context.Context, holder party.Identity) (*escrow.Account, error) {
	if a, ok := r.t.accounts[holder]; ok {
		return cloneAccount(a), nil
	}
	var a *escrow.Account
	r.t.withGlobal(func() { a = r.t.s.account(holder) })
	return a, nil
}

// Save replaces the balance, so it is only safe while the global mutex is
// held for the whole unit of work.
func (r accountRepo) Save(_ context.Context, a *escrow.Account) error {
	if r.t.part != nil {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindDBFailure, "accounts are saved in the global scope", nil)
	}
	r.t.accounts[a.Holder()] = cloneAccount(a)
	return nil
}

func (r accountRepo) Credit(_ context.Context, credits ...escrow.Credit) error {
	r.t.credits = append(r.t.credits, credits...)
	return nil
}

type reviewRepo struct{ t *memTx }

func (r reviewRepo) NextID(context.Context) (review.ID, error) {
	var id review.ID
	r.t.withGlobal(func() {
		r.t.s.nextReview++
		id = review.ID(r.t.s.nextReview)
	})
	return id, nil
}

func (r reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	if err := r.t.inScope(rv.ListingID()); err != nil {
		return err
	}
	exists, err := r.ExistsForBooking(ctx, rv.BookingID())
	if err != nil {
		return err
	}
	if exists {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindDuplicateKey, "review exists for booking "+rv.BookingID().String(), nil)
	}
	r.t.reviews = append(r.t.reviews, rv)
	return nil
}

func (r reviewRepo) ExistsForBooking(_ context.Context, bookingID booking.ID) (bool, error) {
	for _, rv := range r.t.reviews {
		if rv.BookingID() == bookingID {
			return true, nil
		}
	}
	if r.t.part == nil {
		return false, nil
	}
	return r.t.part.reviewed[bookingID], nil
}

type eventRepo struct{ t *memTx }

func (r eventRepo) Append(_ context.Context, evs ...event.Event) error {
	r.t.events = append(r.t.events, evs...)
	return nil
}

type idempotencyRepo struct{ t *memTx }

func (r idempotencyRepo) Get(_ context.Context, key string, caller party.Identity) (*shared.IdempotencyRecord, error) {
	for _, rec := range r.t.idem {
		if rec.Key == key && rec.Caller == caller {
			out := rec
			return &out, nil
		}
	}
	var out *shared.IdempotencyRecord
	r.t.withGlobal(func() {
		if rec, ok := r.t.s.idempotency[idemKey{key, caller}]; ok {
			out = &rec
		}
	})
	return out, nil
}

func (r idempotencyRepo) Save(ctx context.Context, rec shared.IdempotencyRecord) error {
	existing, err := r.Get(ctx, rec.Key, rec.Caller)
	if err != nil {
		return err
	}
	if existing != nil {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindDuplicateKey, "idempotency key already used", nil)
	}
	r.t.idem = append(r.t.idem, rec)
	return nil
}
