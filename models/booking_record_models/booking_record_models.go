// Package booking_record_models stores the per-booking management records an owner keeps
// (guest profile, room assignment, check-in/out, invoice, service requests). Every kind
// follows the same contract: one record per booking, updated if present, inserted otherwise.
package booking_record_models

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/utils"
)

type Kind string

const (
	KindGuestProfile   Kind = "guest_profile"
	KindRoomAssignment Kind = "room_assignment"
	KindCheckInOut     Kind = "check_in_out"
	KindInvoice        Kind = "invoice"
	KindServiceRequest Kind = "service_request"
)

// Payload is implemented by every record body.
type Payload interface {
	Kind() Kind
	Validate() error
}

type GuestProfile struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Nationality string `json:"nationality,omitempty"`
	IDDocument  string `json:"id_document,omitempty"`
}

func (GuestProfile) Kind() Kind { return KindGuestProfile }

func (p GuestProfile) Validate() error {
	if p.FullName == "" {
		return utils.ValidationError("full_name is required")
	}
	return nil
}

type RoomAssignment struct {
	RoomNumber string `json:"room_number"`
	Floor      int    `json:"floor,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (RoomAssignment) Kind() Kind { return KindRoomAssignment }

func (p RoomAssignment) Validate() error {
	if p.RoomNumber == "" {
		return utils.ValidationError("room_number is required")
	}
	return nil
}

type CheckInOut struct {
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

func (CheckInOut) Kind() Kind { return KindCheckInOut }

func (p CheckInOut) Validate() error {
	if p.CheckedInAt == nil && p.CheckedOutAt == nil {
		return utils.ValidationError("checked_in_at or checked_out_at is required")
	}
	if p.CheckedInAt != nil && p.CheckedOutAt != nil && !p.CheckedOutAt.After(*p.CheckedInAt) {
		return utils.ValidationError("checked_out_at must be after checked_in_at")
	}
	return nil
}

type InvoiceLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type Invoice struct {
	Number string        `json:"number"`
	Lines  []InvoiceLine `json:"lines"`
	Total  float64       `json:"total"`
	Paid   bool          `json:"paid"`
}

func (Invoice) Kind() Kind { return KindInvoice }

func (p Invoice) Validate() error {
	if p.Number == "" {
		return utils.ValidationError("number is required")
	}
	var sum float64
	for _, l := range p.Lines {
		if l.Description == "" {
			return utils.ValidationError("invoice line description is required")
		}
		sum += l.Amount
	}
	if len(p.Lines) > 0 && (sum-p.Total > 0.01 || p.Total-sum > 0.01) {
		return utils.ValidationError("invoice total %.2f does not match lines %.2f", p.Total, sum)
	}
	return nil
}

type ServiceRequest struct {
	Items  []string `json:"items"`
	Status string   `json:"status"`
}

func (ServiceRequest) Kind() Kind { return KindServiceRequest }

func (p ServiceRequest) Validate() error {
	if len(p.Items) == 0 {
		return utils.ValidationError("items must not be empty")
	}
	switch p.Status {
	case "open", "in_progress", "done":
		return nil
	default:
		return utils.ValidationError("status must be one of open, in_progress, done")
	}
}

// Record is a stored management record with its raw JSON body.
type Record struct {
	BookingID uuid.UUID       `json:"booking_id"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func decodeAs[T Payload](raw []byte) (Payload, error) {
	var p T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, utils.ValidationError("invalid %s payload: %v", p.Kind(), err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var decoders = map[Kind]func([]byte) (Payload, error){
	KindGuestProfile:   decodeAs[GuestProfile],
	KindRoomAssignment: decodeAs[RoomAssignment],
	KindCheckInOut:     decodeAs[CheckInOut],
	KindInvoice:        decodeAs[Invoice],
	KindServiceRequest: decodeAs[ServiceRequest],
}

// ParseKind validates a kind path segment.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := decoders[k]; !ok {
		return "", utils.ValidationError("unknown record kind %q", s)
	}
	return k, nil
}

// Decode parses and validates a record body of the given kind.
func Decode(kind Kind, raw []byte) (Payload, error) {
	dec, ok := decoders[kind]
	if !ok {
		return nil, utils.ValidationError("unknown record kind %q", kind)
	}
	return dec(raw)
}

// As decodes a stored record into its typed payload.
func As[T Payload](r *Record) (T, error) {
	var p T
	if r.Kind != p.Kind() {
		return p, fmt.Errorf("record is %s, not %s", r.Kind, p.Kind())
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return p, fmt.Errorf("failed to decode %s record: %w", r.Kind, err)
	}
	return p, nil
}

type Repository struct {
	DB booking_models.DBTX
}

func NewRepository(db booking_models.DBTX) *Repository {
	return &Repository{DB: db}
}

// Upsert stores p as the booking's record of its kind, replacing any existing one.
func (r *Repository) Upsert(ctx context.Context, bookingID uuid.UUID, p Payload) (*Record, error) {
	return Upsert(ctx, r.DB, bookingID, p)
}

// Get fetches the booking's record of kind. A missing record is a NotFound error.
func (r *Repository) Get(ctx context.Context, bookingID uuid.UUID, kind Kind) (*Record, error) {
	rec := &Record{}
	err := r.DB.QueryRow(ctx, `
		SELECT booking_id, kind, payload, created_at, updated_at
		FROM booking_records
		WHERE booking_id = $1 AND kind = $2`, bookingID, kind,
	).Scan(&rec.BookingID, &rec.Kind, &rec.Payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound(string(kind) + " record")
		}
		return nil, fmt.Errorf("failed to fetch %s record: %w", kind, err)
	}
	return rec, nil
}

// Upsert is the lookup-by-foreign-key then update-or-insert contract shared by every
// record kind, done as one statement so concurrent writers cannot both insert.
func Upsert[T Payload](ctx context.Context, db booking_models.DBTX, bookingID uuid.UUID, p T) (*Record, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", p.Kind(), err)
	}

	query := `
		INSERT INTO booking_records (booking_id, kind, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (booking_id, kind)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
		RETURNING booking_id, kind, payload, created_at, updated_at`

	rec := &Record{}
	err = db.QueryRow(ctx, query, bookingID, p.Kind(), body).
		Scan(&rec.BookingID, &rec.Kind, &rec.Payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to upsert %s record for booking %s: %v", p.Kind(), bookingID, err)
		return nil, fmt.Errorf("failed to upsert %s record: %w", p.Kind(), err)
	}
	logger.InfoLogger.Infof("Stored %s record for booking %s", p.Kind(), bookingID)
	return rec, nil
}
