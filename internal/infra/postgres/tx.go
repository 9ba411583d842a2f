package postgres

import (
	"context"
	"sort"
	"time"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/usecase/shared"
)

type pgTx struct {
	s      *Store
	db     DBTX
	scope  listing.ID // zero in the global scope
	global bool
	events []event.Event
}

func newTx(s *Store, db DBTX, scope listing.ID, global bool) *pgTx {
	return &pgTx{s: s, db: db, scope: scope, global: global}
}

func (t *pgTx) fail(kind infra.RepositoryErrorKind, msg string, err error) error {
	return infra.WrapRepoErr(t.s.logger, kind, msg, err)
}

// wrap classifies a driver error.
func (t *pgTx) wrap(msg string, err error) error {
	return t.fail(infra.KindOf(err), msg, err)
}

func (t *pgTx) inScope(id listing.ID) error {
	if t.scope == 0 || t.scope != id {
		return t.fail(infra.KindDBFailure, "listing "+id.String()+" is outside this unit of work", nil)
	}
	return nil
}

func (t *pgTx) Listings() shared.ListingRepository         { return listingRepo{t} }
func (t *pgTx) Bookings() shared.BookingRepository         { return bookingRepo{t} }
func (t *pgTx) Reservations() shared.ReservationRepository { return reservationRepo{t} }
func (t *pgTx) Escrow() shared.EscrowRepository            { return escrowRepo{t} }
func (t *pgTx) Accounts() shared.AccountRepository         { return accountRepo{t} }
func (t *pgTx) Reviews() shared.ReviewRepository           { return reviewRepo{t} }
func (t *pgTx) Events() shared.EventRepository             { return eventRepo{t} }
func (t *pgTx) Idempotency() shared.IdempotencyRepository  { return idempotencyRepo{t} }

func (t *pgTx) nextval(ctx context.Context, seq string) (int64, error) {
	var id int64
	if err := t.db.QueryRow(ctx, `SELECT nextval($1::regclass)`, seq).Scan(&id); err != nil {
		return 0, t.wrap("failed to allocate id from "+seq, err)
	}
	return id, nil
}

type listingRepo struct{ t *pgTx }

func (r listingRepo) NextID(ctx context.Context) (listing.ID, error) {
	id, err := r.t.nextval(ctx, "listing_ids")
	return listing.ID(id), err
}

func (r listingRepo) Create(ctx context.Context, l *listing.Listing) error {
	if !r.t.global {
		return r.t.fail(infra.KindDBFailure, "listings are created in the global scope", nil)
	}
	m := l.Metadata()
	_, err := r.t.db.Exec(ctx, `INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.ID().Int64(), l.Owner().String(), l.PricePerNight().Minor(),
		m.Name(), m.Location(), m.Description(), m.ImageURI(),
		l.IsActive(), l.TotalBookings(), l.RatingSum(), l.RatingCount(), l.CreatedAt(), l.UpdatedAt())
	if err != nil {
		return r.t.wrap("failed to create listing", err)
	}
	return nil
}

func (r listingRepo) Get(ctx context.Context, id listing.ID) (*listing.Listing, error) {
	if !r.t.global {
		if err := r.t.inScope(id); err != nil {
			return nil, err
		}
	}
	l, err := scanListing(r.t.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id.Int64()))
	if err != nil {
		return nil, r.t.wrap("failed to get listing", err)
	}
	return l, nil
}

func (r listingRepo) Update(ctx context.Context, l *listing.Listing) error {
	if err := r.t.inScope(l.ID()); err != nil {
		return err
	}
	_, err := r.t.db.Exec(ctx, `UPDATE listings SET
			price_per_night = $2, active = $3, total_bookings = $4,
			rating_sum = $5, rating_count = $6, updated_at = $7
		WHERE id = $1`,
		l.ID().Int64(), l.PricePerNight().Minor(), l.IsActive(), l.TotalBookings(),
		l.RatingSum(), l.RatingCount(), l.UpdatedAt())
	if err != nil {
		return r.t.wrap("failed to update listing", err)
	}
	return nil
}

type bookingRepo struct{ t *pgTx }

func (r bookingRepo) NextID(ctx context.Context) (booking.ID, error) {
	id, err := r.t.nextval(ctx, "booking_ids")
	return booking.ID(id), err
}

func (r bookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	if err := r.t.inScope(b.ListingID()); err != nil {
		return err
	}
	q := b.Quote()
	_, err := r.t.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID().Int64(), b.ListingID().Int64(), b.Guest().String(),
		b.Stay().CheckIn(), b.Stay().CheckOut(), q.Nights(),
		q.Gross().Minor(), q.Fee().Minor(), q.NetToHost().Minor(), q.FeeRate().Value(),
		b.Status().String(), b.CreatedAt(), b.UpdatedAt())
	if err != nil {
		return r.t.wrap("failed to create booking", err)
	}
	return nil
}

func (r bookingRepo) Get(ctx context.Context, id booking.ID) (*booking.Booking, error) {
	if r.t.scope == 0 {
		return nil, r.t.fail(infra.KindNotFound, "booking not found", nil)
	}
	b, err := scanBooking(r.t.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND listing_id = $2`,
		id.Int64(), r.t.scope.Int64()))
	if err != nil {
		return nil, r.t.wrap("failed to get booking", err)
	}
	return b, nil
}

func (r bookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	if err := r.t.inScope(b.ListingID()); err != nil {
		return err
	}
	tag, err := r.t.db.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		b.ID().Int64(), b.Status().String(), b.UpdatedAt())
	if err != nil {
		return r.t.wrap("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return r.t.fail(infra.KindNotFound, "booking not found", nil)
	}
	return nil
}

type reservationRepo struct{ t *pgTx }

func (r reservationRepo) Calendar(ctx context.Context, id listing.ID, since time.Time) (*availability.Calendar, error) {
	if err := r.t.inScope(id); err != nil {
		return nil, err
	}
	rows, err := r.t.db.Query(ctx, `SELECT booking_id, lower(stay), upper(stay), historical
		FROM reservations WHERE listing_id = $1 AND upper(stay) > $2::date`,
		id.Int64(), since)
	if err != nil {
		return nil, r.t.wrap("failed to load calendar", err)
	}
	intervals, err := collect(rows, scanInterval)
	if err != nil {
		return nil, r.t.wrap("failed to scan calendar", err)
	}
	return availability.NewCalendar(id, intervals)
}

// Insert relies on the exclusion constraint as a second line of defence; an
// overlap that slipped past the calendar surfaces as KindConflict.
func (r reservationRepo) Insert(ctx context.Context, id listing.ID, iv availability.Interval) error {
	if err := r.t.inScope(id); err != nil {
		return err
	}
	_, err := r.t.db.Exec(ctx, `INSERT INTO reservations (booking_id, listing_id, stay, historical)
		VALUES ($1, $2, daterange($3::date, $4::date, '[)'), $5)`,
		iv.BookingID.Int64(), id.Int64(), iv.Stay.CheckIn(), iv.Stay.CheckOut(), iv.Historical)
	if err != nil {
		return r.t.wrap("failed to insert reservation", err)
	}
	return nil
}

func (r reservationRepo) Delete(ctx context.Context, id listing.ID, bookingID booking.ID) error {
	return r.exec(ctx, id, "failed to delete reservation",
		`DELETE FROM reservations WHERE booking_id = $1 AND listing_id = $2`, bookingID)
}

func (r reservationRepo) Archive(ctx context.Context, id listing.ID, bookingID booking.ID) error {
	return r.exec(ctx, id, "failed to archive reservation",
		`UPDATE reservations SET historical = TRUE WHERE booking_id = $1 AND listing_id = $2`, bookingID)
}

func (r reservationRepo) exec(ctx context.Context, id listing.ID, msg, sql string, bookingID booking.ID) error {
	if err := r.t.inScope(id); err != nil {
		return err
	}
	tag, err := r.t.db.Exec(ctx, sql, bookingID.Int64(), id.Int64())
	if err != nil {
		return r.t.wrap(msg, err)
	}
	if tag.RowsAffected() == 0 {
		return r.t.fail(infra.KindNotFound, "reservation not found", nil)
	}
	return nil
}

type escrowRepo struct{ t *pgTx }

func (r escrowRepo) CreateHold(ctx context.Context, h *escrow.Hold) error {
	_, err := r.t.db.Exec(ctx, `INSERT INTO escrow_holds (`+holdColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, holdArgs(h)...)
	if err != nil {
		return r.t.wrap("failed to create escrow hold", err)
	}
	return nil
}

func (r escrowRepo) GetHold(ctx context.Context, bookingID booking.ID) (*escrow.Hold, error) {
	h, err := scanHold(r.t.db.QueryRow(ctx,
		`SELECT `+holdColumns+` FROM escrow_holds WHERE booking_id = $1`, bookingID.Int64()))
	if err != nil {
		return nil, r.t.wrap("failed to get escrow hold", err)
	}
	return h, nil
}

func (r escrowRepo) UpdateHold(ctx context.Context, h *escrow.Hold) error {
	tag, err := r.t.db.Exec(ctx, `UPDATE escrow_holds SET
			guest = $2, payee = $3, gross_amount = $4, held_amount = $5, fee_rate_bps = $6,
			fee_amount = $7, host_amount = $8, refunded = $9, state = $10, locked_at = $11, settled_at = $12
		WHERE booking_id = $1`, holdArgs(h)...)
	if err != nil {
		return r.t.wrap("failed to update escrow hold", err)
	}
	if tag.RowsAffected() == 0 {
		return r.t.fail(infra.KindNotFound, "escrow hold not found", nil)
	}
	return nil
}

func holdArgs(h *escrow.Hold) []any {
	return []any{
		h.BookingID().Int64(), h.Guest().String(), h.Payee().String(),
		h.Gross().Minor(), h.Held().Minor(), h.FeeRate().Value(),
		h.Fee().Minor(), h.HostAmount().Minor(), h.Refunded().Minor(),
		string(h.State()), h.LockedAt(), h.SettledAt(),
	}
}

func (r escrowRepo) AppendEntries(ctx context.Context, entries ...escrow.Entry) error {
	for _, e := range entries {
		var bookingID *int64
		if e.BookingID != 0 {
			v := e.BookingID.Int64()
			bookingID = &v
		}
		_, err := r.t.db.Exec(ctx, `INSERT INTO ledger_entries (booking_id, kind, account, amount, at)
			VALUES ($1, $2, $3, $4, $5)`,
			bookingID, string(e.Kind), e.Account.String(), e.Amount.Minor(), e.At)
		if err != nil {
			return r.t.wrap("failed to append journal entry", err)
		}
	}
	return nil
}

type accountRepo struct{ t *pgTx }

// Get locks the row so a following Save cannot lose a concurrent credit.
func (r accountRepo) Get(ctx context.Context, holder party.Identity) (*escrow.Account, error) {
	var (
		balance   int64
		updatedAt time.Time
	)
	err := r.t.db.QueryRow(ctx, `SELECT balance, updated_at FROM accounts WHERE holder = $1 FOR UPDATE`,
		holder.String()).Scan(&balance, &updatedAt)
	if err != nil {
		if infra.KindOf(err) == infra.KindNotFound {
			return escrow.NewAccount(holder), nil
		}
		return nil, r.t.wrap("failed to get account", err)
	}
	var d decoder
	a := escrow.ReconstructAccount(holder, d.amount(balance), updatedAt.UTC())
	return a, d.err
}

func (r accountRepo) Save(ctx context.Context, a *escrow.Account) error {
	if !r.t.global {
		return r.t.fail(infra.KindDBFailure, "accounts are saved in the global scope", nil)
	}
	_, err := r.t.db.Exec(ctx, `INSERT INTO accounts (holder, balance, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (holder) DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
		a.Holder().String(), a.Balance().Minor(), a.UpdatedAt())
	if err != nil {
		return r.t.wrap("failed to save account", err)
	}
	return nil
}

// Credit upserts one row per holder in ascending holder order, so concurrent
// settlements always lock account rows in the same order.
func (r accountRepo) Credit(ctx context.Context, credits ...escrow.Credit) error {
	sums := make(map[party.Identity]money.Amount)
	stamps := make(map[party.Identity]time.Time)
	for _, c := range credits {
		sum, err := sums[c.Holder].Add(c.Amount)
		if err != nil {
			return err
		}
		sums[c.Holder] = sum
		if c.At.After(stamps[c.Holder]) {
			stamps[c.Holder] = c.At
		}
	}
	holders := make([]party.Identity, 0, len(sums))
	for h := range sums {
		holders = append(holders, h)
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].String() < holders[j].String() })

	for _, h := range holders {
		_, err := r.t.db.Exec(ctx, `INSERT INTO accounts (holder, balance, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (holder) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
			h.String(), sums[h].Minor(), stamps[h])
		if err != nil {
			return r.t.wrap("failed to credit account", err)
		}
	}
	return nil
}

type reviewRepo struct{ t *pgTx }

func (r reviewRepo) NextID(ctx context.Context) (review.ID, error) {
	id, err := r.t.nextval(ctx, "review_ids")
	return review.ID(id), err
}

func (r reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	if err := r.t.inScope(rv.ListingID()); err != nil {
		return err
	}
	_, err := r.t.db.Exec(ctx, `INSERT INTO reviews (`+reviewColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID().Int64(), rv.BookingID().Int64(), rv.ListingID().Int64(), rv.Reviewer().String(),
		rv.Rating().Value(), rv.Comment().String(), rv.CreatedAt())
	if err != nil {
		return r.t.wrap("failed to create review", err)
	}
	return nil
}

func (r reviewRepo) ExistsForBooking(ctx context.Context, bookingID booking.ID) (bool, error) {
	var exists bool
	err := r.t.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reviews WHERE booking_id = $1)`,
		bookingID.Int64()).Scan(&exists)
	if err != nil {
		return false, r.t.wrap("failed to check review", err)
	}
	return exists, nil
}

type eventRepo struct{ t *pgTx }

// Append stages events; they are numbered and written by flushEvents.
func (r eventRepo) Append(_ context.Context, evs ...event.Event) error {
	r.t.events = append(r.t.events, evs...)
	return nil
}

// flushEvents must be the last statement before commit. The counter row stays
// locked until commit, so seq follows commit order and has no gaps: a reader
// that sees seq n can already see every seq below it.
func (t *pgTx) flushEvents(ctx context.Context) error {
	if len(t.events) == 0 {
		return nil
	}
	var last int64
	err := t.db.QueryRow(ctx, `UPDATE event_seq SET last_seq = last_seq + $1 RETURNING last_seq`,
		len(t.events)).Scan(&last)
	if err != nil {
		return t.wrap("failed to allocate event seq", err)
	}
	first := last - int64(len(t.events)) + 1
	for i := range t.events {
		e := &t.events[i]
		e.Seq = first + int64(i)
		var payload []byte
		if len(e.Payload) > 0 {
			payload = e.Payload
		}
		_, err := t.db.Exec(ctx, `INSERT INTO events (seq, id, kind, entity_type, entity_id, actor, ts, payload)
			VALUES ($1, $2::uuid, $3, $4, $5, $6, $7, $8::jsonb)`,
			e.Seq, e.ID.String(), string(e.Kind), string(e.EntityType), e.EntityID, e.Actor, e.Timestamp, payload)
		if err != nil {
			return t.wrap("failed to append event", err)
		}
	}
	return nil
}

type idempotencyRepo struct{ t *pgTx }

func (r idempotencyRepo) Get(ctx context.Context, key string, caller party.Identity) (*shared.IdempotencyRecord, error) {
	var (
		hash      string
		bookingID int64
		createdAt time.Time
	)
	err := r.t.db.QueryRow(ctx, `SELECT request_hash, booking_id, created_at
		FROM idempotency_keys WHERE key = $1 AND caller = $2`, key, caller.String(),
	).Scan(&hash, &bookingID, &createdAt)
	if err != nil {
		if infra.KindOf(err) == infra.KindNotFound {
			return nil, nil
		}
		return nil, r.t.wrap("failed to get idempotency key", err)
	}
	return &shared.IdempotencyRecord{
		Key:         key,
		Caller:      caller,
		RequestHash: hash,
		BookingID:   booking.ID(bookingID),
		CreatedAt:   createdAt.UTC(),
	}, nil
}

func (r idempotencyRepo) Save(ctx context.Context, rec shared.IdempotencyRecord) error {
	_, err := r.t.db.Exec(ctx, `INSERT INTO idempotency_keys (key, caller, request_hash, booking_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.Key, rec.Caller.String(), rec.RequestHash, rec.BookingID.Int64(), rec.CreatedAt)
	if err != nil {
		return r.t.wrap("failed to save idempotency key", err)
	}
	return nil
}
