package webhook_event_models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/booking_models"
)

// Event is an audited processor delivery.
type Event struct {
	ID         int64           `json:"id"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	RawPayload json.RawMessage `json:"raw_payload"`
	Processed  bool            `json:"processed"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Repository struct {
	DB booking_models.DBTX
}

func NewRepository(db booking_models.DBTX) *Repository {
	return &Repository{DB: db}
}

// Record stores a verified delivery and returns its row id. A redelivery of an
// already stored event id is not an error; it returns 0.
func (r *Repository) Record(ctx context.Context, eventID, eventType string, raw []byte) (int64, error) {
	query := `
		INSERT INTO webhook_events (event_id, event_type, raw_payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) WHERE event_id <> '' DO NOTHING
		RETURNING id`

	var id int64
	err := r.DB.QueryRow(ctx, query, eventID, eventType, raw).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.InfoLogger.Infof("Webhook event %s already recorded", eventID)
			return 0, nil
		}
		logger.ErrorLogger.Errorf("Failed to store webhook event %s (%s): %v", eventID, eventType, err)
		return 0, fmt.Errorf("failed to store webhook event: %w", err)
	}
	return id, nil
}

// MarkProcessed flags a stored delivery as handled.
func (r *Repository) MarkProcessed(ctx context.Context, id int64) error {
	if id == 0 {
		return nil
	}
	if _, err := r.DB.Exec(ctx, `UPDATE webhook_events SET processed = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark webhook event %d processed: %w", id, err)
	}
	return nil
}
