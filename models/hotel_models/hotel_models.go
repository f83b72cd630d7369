package hotel_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/utils"
)

type Hotel struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Room belongs to a hotel. IsBooked is a display hint only; availability for a date
// range always comes from the bookings table.
type Room struct {
	ID            int64     `json:"id"`
	HotelID       uuid.UUID `json:"hotel_id"`
	Name          string    `json:"name"`
	Rate          float64   `json:"rate"`
	BreakfastRate *float64  `json:"breakfast_rate,omitempty"`
	IsBooked      bool      `json:"is_booked"`
	CreatedAt     time.Time `json:"created_at"`
}

type Repository struct {
	DB booking_models.DBTX
}

func NewRepository(db booking_models.DBTX) *Repository {
	return &Repository{DB: db}
}

// GetHotel fetches a hotel. A missing row is a NotFound error.
func (r *Repository) GetHotel(ctx context.Context, id uuid.UUID) (*Hotel, error) {
	h := &Hotel{}
	err := r.DB.QueryRow(ctx,
		`SELECT id, owner_id, name, created_at FROM hotels WHERE id = $1`, id,
	).Scan(&h.ID, &h.OwnerID, &h.Name, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("hotel")
		}
		logger.ErrorLogger.Errorf("Failed to fetch hotel %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching hotel: %w", err)
	}
	return h, nil
}

const roomColumns = `id, hotel_id, name, rate::float8, breakfast_rate::float8, is_booked, created_at`

func scanRoom(row pgx.Row) (*Room, error) {
	rm := &Room{}
	if err := row.Scan(&rm.ID, &rm.HotelID, &rm.Name, &rm.Rate, &rm.BreakfastRate, &rm.IsBooked, &rm.CreatedAt); err != nil {
		return nil, err
	}
	return rm, nil
}

// GetRoom fetches a room. A missing row is a NotFound error.
func (r *Repository) GetRoom(ctx context.Context, id int64) (*Room, error) {
	rm, err := scanRoom(r.DB.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("room")
		}
		logger.ErrorLogger.Errorf("Failed to fetch room %d: %v", id, err)
		return nil, fmt.Errorf("database error fetching room: %w", err)
	}
	return rm, nil
}

// ListRooms returns a hotel's rooms ordered by id.
func (r *Repository) ListRooms(ctx context.Context, hotelID uuid.UUID) ([]Room, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+roomColumns+` FROM rooms WHERE hotel_id = $1 ORDER BY id`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, *rm)
	}
	return rooms, rows.Err()
}

// SetRoomBooked updates the is_booked hint.
func (r *Repository) SetRoomBooked(ctx context.Context, roomID int64, booked bool) error {
	_, err := r.DB.Exec(ctx, `UPDATE rooms SET is_booked = $2 WHERE id = $1`, roomID, booked)
	if err != nil {
		return fmt.Errorf("failed to update room %d booked flag: %w", roomID, err)
	}
	return nil
}
