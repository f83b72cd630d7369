package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/joy095/hotelbooking/utils"
	"github.com/joy095/hotelbooking/utils/availability"
)

// Booking is a guest's reservation of a room for a half-open date range.
type Booking struct {
	ID                 uuid.UUID `json:"id"`
	GuestID            uuid.UUID `json:"guest_id"`
	GuestName          string    `json:"guest_name"`
	GuestEmail         string    `json:"guest_email,omitempty"`
	HotelID            uuid.UUID `json:"hotel_id"`
	RoomID             int64     `json:"room_id"`
	OwnerID            uuid.UUID `json:"owner_id"`
	CheckIn            time.Time `json:"check_in"`
	CheckOut           time.Time `json:"check_out"`
	BreakfastIncluded  bool      `json:"breakfast_included"`
	Currency           string    `json:"currency"`
	TotalPrice         float64   `json:"total_price"`
	PaymentReference   string    `json:"payment_reference"`
	PaymentOrderID     string    `json:"payment_order_id,omitempty"`
	Status             string    `json:"status"`
	PaymentStatus      bool      `json:"payment_status"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewBooking builds a pending booking with a fresh UUIDv7 and no payment reference.
func NewBooking(guestID, hotelID, ownerID uuid.UUID, roomID int64, checkIn, checkOut time.Time) (*Booking, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now().UTC()
	return &Booking{
		ID:        id,
		GuestID:   guestID,
		HotelID:   hotelID,
		OwnerID:   ownerID,
		RoomID:    roomID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Status:    shared_models.BookingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Range returns the booking's stay.
func (b *Booking) Range() availability.DateRange {
	return availability.DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Transition is a conditional status change. It applies only while the booking is
// in one of From. A non-empty Reference replaces payment_reference and a non-empty
// Reason replaces cancellation_reason.
type Transition struct {
	To            string
	From          []string
	PaymentStatus bool
	Reference     string
	Reason        string
}

// PendingUpdate carries the new dates and price of a pending booking. A non-empty
// OrderID replaces the processor order the booking points at.
type PendingUpdate struct {
	CheckIn           time.Time
	CheckOut          time.Time
	BreakfastIncluded bool
	TotalPrice        float64
	OrderID           string
}

// ListFilter paginates booking listings.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DBTX = (*pgxpool.Pool)(nil)

// Repository persists bookings in PostgreSQL.
type Repository struct {
	DB DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{DB: db}
}

const bookingColumns = `
	id, guest_id, guest_name, guest_email, hotel_id, room_id, owner_id,
	check_in, check_out, breakfast_included, currency, total_price::float8,
	payment_reference, payment_order_id, status, payment_status,
	cancellation_reason, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.GuestID, &b.GuestName, &b.GuestEmail, &b.HotelID, &b.RoomID, &b.OwnerID,
		&b.CheckIn, &b.CheckOut, &b.BreakfastIncluded, &b.Currency, &b.TotalPrice,
		&b.PaymentReference, &b.PaymentOrderID, &b.Status, &b.PaymentStatus,
		&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Insert stores a new booking. An overlapping live booking on the same room is a Conflict.
func (r *Repository) Insert(ctx context.Context, b *Booking) error {
	logger.InfoLogger.Infof("Creating booking %s for room %d", b.ID, b.RoomID)

	query := `
		INSERT INTO bookings (
			id, guest_id, guest_name, guest_email, hotel_id, room_id, owner_id,
			check_in, check_out, breakfast_included, currency, total_price,
			payment_reference, status, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.DB.Exec(ctx, query,
		b.ID, b.GuestID, b.GuestName, b.GuestEmail, b.HotelID, b.RoomID, b.OwnerID,
		b.CheckIn, b.CheckOut, b.BreakfastIncluded, b.Currency, b.TotalPrice,
		b.PaymentReference, b.Status, b.PaymentStatus, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			logger.WarnLogger.Warnf("Room %d already booked for %s - %s", b.RoomID, b.CheckIn.Format(time.DateOnly), b.CheckOut.Format(time.DateOnly))
			return utils.Conflict("room is not available for the selected dates")
		}
		logger.ErrorLogger.Errorf("Failed to insert booking %s: %v", b.ID, err)
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID fetches a booking. A missing row is a NotFound error.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := scanBooking(r.DB.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("booking")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// FindByPaymentReference matches a processor order id or payment id.
func (r *Repository) FindByPaymentReference(ctx context.Context, ref string) (*Booking, error) {
	if ref == "" {
		return nil, utils.NotFound("booking")
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE payment_reference = $1 OR payment_order_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`

	b, err := scanBooking(r.DB.QueryRow(ctx, query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("booking")
		}
		return nil, fmt.Errorf("database error fetching booking by reference: %w", err)
	}
	return b, nil
}

// ListByGuest returns a guest's bookings newest first, plus the total count.
func (r *Repository) ListByGuest(ctx context.Context, guestID uuid.UUID, f ListFilter) ([]Booking, int, error) {
	return r.list(ctx, "guest_id", guestID, f)
}

// ListByOwner returns bookings across all hotels of an owner newest first, plus the total count.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, f ListFilter) ([]Booking, int, error) {
	return r.list(ctx, "owner_id", ownerID, f)
}

func (r *Repository) list(ctx context.Context, column string, id uuid.UUID, f ListFilter) ([]Booking, int, error) {
	where := column + ` = $1 AND ($2 = '' OR status = $2)`

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE `+where, id, f.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		id, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, total, nil
}

// RoomBookings returns the bookings on a room that intersect rng, excluding one booking id.
// Statuses are returned as stored so callers decide what blocks.
func (r *Repository) RoomBookings(ctx context.Context, roomID int64, rng availability.DateRange, exclude uuid.UUID) ([]availability.BookedRange, error) {
	query := `
		SELECT room_id, status, check_in, check_out
		FROM bookings
		WHERE room_id = $1 AND id <> $2 AND check_in < $4 AND $3 < check_out`
	return r.bookedRanges(ctx, query, roomID, exclude, rng.CheckIn, rng.CheckOut)
}

// HotelBookings returns every booking on the hotel's rooms that intersects rng.
func (r *Repository) HotelBookings(ctx context.Context, hotelID uuid.UUID, rng availability.DateRange) ([]availability.BookedRange, error) {
	query := `
		SELECT room_id, status, check_in, check_out
		FROM bookings
		WHERE hotel_id = $1 AND check_in < $3 AND $2 < check_out`
	return r.bookedRanges(ctx, query, hotelID, rng.CheckIn, rng.CheckOut)
}

func (r *Repository) bookedRanges(ctx context.Context, query string, args ...any) ([]availability.BookedRange, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query booked ranges: %w", err)
	}
	defer rows.Close()

	var ranges []availability.BookedRange
	for rows.Next() {
		var br availability.BookedRange
		if err := rows.Scan(&br.RoomID, &br.Status, &br.CheckIn, &br.CheckOut); err != nil {
			return nil, fmt.Errorf("failed to scan booked range: %w", err)
		}
		ranges = append(ranges, br)
	}
	return ranges, rows.Err()
}

// SetPaymentOrder records a processor order on a pending booking that has none yet.
// It reports false when another request got there first or the booking moved on.
func (r *Repository) SetPaymentOrder(ctx context.Context, id uuid.UUID, orderID string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_reference = $2, payment_order_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND payment_reference = ''`

	tag, err := r.DB.Exec(ctx, query, id, orderID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to store payment order %s on booking %s: %v", orderID, id, err)
		return false, fmt.Errorf("failed to store payment order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePending rewrites dates and price of a booking that is still pending.
func (r *Repository) UpdatePending(ctx context.Context, id uuid.UUID, u PendingUpdate) (bool, error) {
	query := `
		UPDATE bookings
		SET check_in = $2, check_out = $3, breakfast_included = $4, total_price = $5,
			payment_reference = CASE WHEN $6 <> '' THEN $6 ELSE payment_reference END,
			payment_order_id = CASE WHEN $6 <> '' THEN $6 ELSE payment_order_id END,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.DB.Exec(ctx, query, id, u.CheckIn, u.CheckOut, u.BreakfastIncluded, u.TotalPrice, u.OrderID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return false, utils.Conflict("room is not available for the selected dates")
		}
		logger.ErrorLogger.Errorf("Failed to update booking %s: %v", id, err)
		return false, fmt.Errorf("failed to update booking: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ApplyTransition performs t as a single conditional update. It reports false when the
// booking was not in any of t.From, which callers treat as a no-op.
func (r *Repository) ApplyTransition(ctx context.Context, id uuid.UUID, t Transition) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2,
			payment_status = $3,
			payment_reference = CASE WHEN $4 <> '' THEN $4 ELSE payment_reference END,
			cancellation_reason = CASE WHEN $5 <> '' THEN $5 ELSE cancellation_reason END,
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($6)`

	tag, err := r.DB.Exec(ctx, query, id, t.To, t.PaymentStatus, t.Reference, t.Reason, t.From)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return false, utils.Conflict("room is not available for the selected dates")
		}
		logger.ErrorLogger.Errorf("Failed to move booking %s to %s: %v", id, t.To, err)
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	applied := tag.RowsAffected() == 1
	if applied {
		logger.InfoLogger.Infof("Booking %s moved to %s (paid=%t)", id, t.To, t.PaymentStatus)
	}
	return applied, nil
}
