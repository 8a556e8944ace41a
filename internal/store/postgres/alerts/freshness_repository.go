package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
	"github.com/goto/sentinel/internal/store/postgres"
)

const (
	freshnessColumns = `alert_id, unique_id, status, detected_at, alias, tags, owners, subscribers,
snapshotted_at, max_loaded_at, max_loaded_at_time_ago_in_s,
source_name, identifier, path, freshness_error_after, freshness_warn_after, freshness_filter, error`
)

// FreshnessRepository reads source freshness check results waiting to be sent.
type FreshnessRepository struct {
	db *pgxpool.Pool
}

func NewFreshnessRepository(db *pgxpool.Pool) *FreshnessRepository {
	return &FreshnessRepository{db: db}
}

func (r *FreshnessRepository) Insert(ctx context.Context, record alert.FreshnessRecord) error {
	query := `INSERT INTO ` + alert.TableSourceFreshness + ` (` + freshnessColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.Exec(ctx, query,
		record.AlertID, record.UniqueID, record.Status, record.DetectedAt, nullable(record.Alias),
		record.Tags, record.Owners, record.Subscribers,
		record.SnapshottedAt, record.MaxLoadedAt, record.MaxLoadedAtTimeAgoInS,
		record.SourceName, record.Identifier, nullable(record.Path),
		nullable(record.FreshnessErrorAfter), nullable(record.FreshnessWarnAfter), nullable(record.FreshnessFilter),
		nullable(record.Error),
	)
	if err != nil {
		if postgres.ErrorCodeEqual(err, postgres.ErrPgCodeUniqueConstraints) {
			return errors.AlreadyExists(alert.EntityFreshnessAlert, "alert already stored: "+record.AlertID)
		}
		return errors.Wrap(alert.EntityFreshnessAlert, "unable to store alert "+record.AlertID, err)
	}
	return nil
}

// GetPending returns pending alerts detected after the given time, oldest first.
func (r *FreshnessRepository) GetPending(ctx context.Context, detectedAfter time.Time, limit int) ([]alert.FreshnessRecord, error) {
	query := `SELECT ` + freshnessColumns + ` FROM ` + alert.TableSourceFreshness + `
WHERE send_status = $1 AND detected_at > $2
ORDER BY detected_at ASC
LIMIT $3`

	rows, err := r.db.Query(ctx, query, alert.SendStatusPending.String(), detectedAfter, limit)
	if err != nil {
		return nil, errors.Wrap(alert.EntityFreshnessAlert, "unable to get pending alerts", err)
	}
	defer rows.Close()

	var records []alert.FreshnessRecord
	for rows.Next() {
		var row freshnessRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, errors.Wrap(alert.EntityFreshnessAlert, "error scanning pending alert", err)
		}
		records = append(records, row.toRecord())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(alert.EntityFreshnessAlert, "error iterating pending alerts", err)
	}
	return records, nil
}

func (r *FreshnessRepository) UpdateSendStatus(ctx context.Context, alertID string, status alert.SendStatus) error {
	query := `UPDATE ` + alert.TableSourceFreshness + `
SET send_status = $1, sent_at = CASE WHEN $1 = 'sent' THEN NOW() ELSE sent_at END
WHERE alert_id = $2`

	tag, err := r.db.Exec(ctx, query, status.String(), alertID)
	if err != nil {
		return errors.Wrap(alert.EntityFreshnessAlert, "unable to update send status of "+alertID, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound(alert.EntityFreshnessAlert, fmt.Sprintf("could not update send status of alert, id: %s", alertID))
	}
	return nil
}
