package alerts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
)

const entityDeliveryLog = "delivery_log"

// DeliveryRepository keeps a log of every delivery attempt
type DeliveryRepository struct {
	db *pgxpool.Pool
}

// NewDeliveryRepository creates a new instance of DeliveryRepository
func NewDeliveryRepository(db *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// Insert logs a delivery attempt and returns its record id
func (r *DeliveryRepository) Insert(ctx context.Context, delivery alert.Delivery) (uuid.UUID, error) {
	// default record Id in case inserting to DB fails
	recordID := uuid.New()

	query := `
		INSERT INTO delivery_logs (id, alert_id, unique_id, channel, route, status, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;
	`

	err := r.db.QueryRow(ctx, query, recordID, delivery.AlertID, delivery.UniqueID, delivery.Channel,
		delivery.Route, delivery.Status.String(), delivery.Message).Scan(&recordID)
	if err != nil {
		return recordID, errors.Wrap(entityDeliveryLog, "unable to log delivery of "+delivery.AlertID, err)
	}

	return recordID, nil
}

// UpdateStatus updates the delivery status and optionally logs an error message
func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status alert.SendStatus, message string) error {
	query := `
		UPDATE delivery_logs
		SET status = $1, message = $2, updated_at = NOW()
		WHERE id = $3;
	`
	tag, err := r.db.Exec(ctx, query, status.String(), message, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound(entityDeliveryLog, fmt.Sprintf("could not update status of delivery log, id: %s", id))
	}
	return nil
}
