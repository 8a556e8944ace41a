package alerts

import (
	"time"

	"github.com/goto/sentinel/core/alert"
)

type freshnessRow struct {
	AlertID     string
	UniqueID    string
	Status      string
	DetectedAt  time.Time
	Alias       *string
	Tags        []string
	Owners      []string
	Subscribers []string

	SnapshottedAt         *string
	MaxLoadedAt           *string
	MaxLoadedAtTimeAgoInS *float64

	SourceName          string
	Identifier          string
	Path                *string
	FreshnessErrorAfter *string
	FreshnessWarnAfter  *string
	FreshnessFilter     *string
	Error               *string
}

func (r *freshnessRow) scanTargets() []any {
	return []any{
		&r.AlertID, &r.UniqueID, &r.Status, &r.DetectedAt, &r.Alias, &r.Tags, &r.Owners, &r.Subscribers,
		&r.SnapshottedAt, &r.MaxLoadedAt, &r.MaxLoadedAtTimeAgoInS,
		&r.SourceName, &r.Identifier, &r.Path, &r.FreshnessErrorAfter, &r.FreshnessWarnAfter, &r.FreshnessFilter, &r.Error,
	}
}

func (r *freshnessRow) toRecord() alert.FreshnessRecord {
	return alert.FreshnessRecord{
		AlertID:               r.AlertID,
		UniqueID:              r.UniqueID,
		Status:                r.Status,
		DetectedAt:            r.DetectedAt,
		Alias:                 orEmpty(r.Alias),
		Tags:                  r.Tags,
		Owners:                r.Owners,
		Subscribers:           r.Subscribers,
		SnapshottedAt:         r.SnapshottedAt,
		MaxLoadedAt:           r.MaxLoadedAt,
		MaxLoadedAtTimeAgoInS: r.MaxLoadedAtTimeAgoInS,
		SourceName:            r.SourceName,
		Identifier:            r.Identifier,
		Path:                  orEmpty(r.Path),
		FreshnessErrorAfter:   orEmpty(r.FreshnessErrorAfter),
		FreshnessWarnAfter:    orEmpty(r.FreshnessWarnAfter),
		FreshnessFilter:       orEmpty(r.FreshnessFilter),
		Error:                 orEmpty(r.Error),
	}
}

func orEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
