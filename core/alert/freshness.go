package alert

import (
	"strings"
	"time"

	"github.com/goto/sentinel/internal/errors"
	"github.com/goto/sentinel/internal/lib/duration"
)

const (
	EntityFreshnessAlert = "freshness_alert"

	TableSourceFreshness = "alerts_source_freshness"
)

// TimeConverter turns a UTC timestamp string into its representation in timezone.
type TimeConverter interface {
	Convert(utcTimestamp, timezone string) (string, error)
}

// FreshnessRecord is a source freshness check result as stored by the monitor.
type FreshnessRecord struct {
	AlertID     string    `json:"alert_id"    yaml:"alert_id"`
	UniqueID    string    `json:"unique_id"   yaml:"unique_id"`
	Status      string    `json:"status"      yaml:"status"`
	DetectedAt  time.Time `json:"detected_at" yaml:"detected_at"`
	Alias       string    `json:"alias"       yaml:"alias"`
	Tags        []string  `json:"tags"        yaml:"tags"`
	Owners      []string  `json:"owners"      yaml:"owners"`
	Subscribers []string  `json:"subscribers" yaml:"subscribers"`

	SnapshottedAt         *string  `json:"snapshotted_at"              yaml:"snapshotted_at"`
	MaxLoadedAt           *string  `json:"max_loaded_at"               yaml:"max_loaded_at"`
	MaxLoadedAtTimeAgoInS *float64 `json:"max_loaded_at_time_ago_in_s" yaml:"max_loaded_at_time_ago_in_s"`

	SourceName string `json:"source_name" yaml:"source_name"`
	Identifier string `json:"identifier"  yaml:"identifier"`
	Path       string `json:"path"        yaml:"path"`

	FreshnessErrorAfter string `json:"freshness_error_after" yaml:"freshness_error_after"`
	FreshnessWarnAfter  string `json:"freshness_warn_after"  yaml:"freshness_warn_after"`
	FreshnessFilter     string `json:"freshness_filter"      yaml:"freshness_filter"`

	Error string `json:"error" yaml:"error"`
}

// FreshnessOutcome is either a FreshnessResult or a FreshnessFailure.
type FreshnessOutcome interface {
	isFreshnessOutcome()
}

// FreshnessResult is the outcome of a check that could compute freshness. Any of
// the values may be missing.
type FreshnessResult struct {
	TimeAgo       *duration.Elapsed
	MaxLoadedAt   *string
	SnapshottedAt *string
}

func (FreshnessResult) isFreshnessOutcome() {}

// FreshnessFailure is the outcome of a check that failed to run.
type FreshnessFailure struct {
	Message string
}

func (FreshnessFailure) isFreshnessOutcome() {}

type FreshnessAlert struct {
	Alert

	uniqueID string

	snapshottedAt         *string
	maxLoadedAt           *string
	maxLoadedAtTimeAgoInS *float64

	sourceName string
	identifier string
	path       string

	errorAfter string
	warnAfter  string
	filter     string

	err string

	outcome FreshnessOutcome
}

// NewFreshnessAlert validates the record and converts its timestamps into the
// display timezone. Empty timestamps are never passed to the converter.
// An empty timezone means UTC.
func NewFreshnessAlert(record FreshnessRecord, timezone string, converter TimeConverter) (*FreshnessAlert, error) {
	if strings.TrimSpace(record.UniqueID) == "" {
		return nil, errors.InvalidArgument(EntityFreshnessAlert, "unique_id is empty")
	}
	if strings.TrimSpace(record.SourceName) == "" {
		return nil, errors.InvalidArgument(EntityFreshnessAlert, "source_name is empty for "+record.UniqueID)
	}
	if strings.TrimSpace(record.Identifier) == "" {
		return nil, errors.InvalidArgument(EntityFreshnessAlert, "identifier is empty for "+record.UniqueID)
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.InvalidArgument(EntityFreshnessAlert, "unknown timezone "+timezone)
	}

	snapshottedAt, err := convertIfPresent(converter, record.SnapshottedAt, timezone)
	if err != nil {
		return nil, errors.AddErrContext(err, EntityFreshnessAlert, "invalid snapshotted_at for "+record.UniqueID)
	}
	maxLoadedAt, err := convertIfPresent(converter, record.MaxLoadedAt, timezone)
	if err != nil {
		return nil, errors.AddErrContext(err, EntityFreshnessAlert, "invalid max_loaded_at for "+record.UniqueID)
	}

	alias := record.Alias
	if alias == "" {
		alias = record.SourceName + "." + record.Identifier
	}

	f := &FreshnessAlert{
		Alert: Alert{
			ID:          record.AlertID,
			Status:      StatusFrom(record.Status),
			DetectedAt:  record.DetectedAt.In(location),
			Alias:       alias,
			Tags:        record.Tags,
			Owners:      record.Owners,
			Subscribers: record.Subscribers,
			Timezone:    timezone,
		},
		uniqueID:              record.UniqueID,
		snapshottedAt:         snapshottedAt,
		maxLoadedAt:           maxLoadedAt,
		maxLoadedAtTimeAgoInS: copyFloat(record.MaxLoadedAtTimeAgoInS),
		sourceName:            record.SourceName,
		identifier:            record.Identifier,
		path:                  record.Path,
		errorAfter:            record.FreshnessErrorAfter,
		warnAfter:             record.FreshnessWarnAfter,
		filter:                record.FreshnessFilter,
		err:                   record.Error,
	}
	f.outcome = f.decideOutcome()
	return f, nil
}

func (f *FreshnessAlert) decideOutcome() FreshnessOutcome {
	if f.Status.IsRuntimeError() {
		return FreshnessFailure{Message: f.err}
	}

	result := FreshnessResult{
		MaxLoadedAt:   copyString(f.maxLoadedAt),
		SnapshottedAt: copyString(f.snapshottedAt),
	}
	if f.maxLoadedAtTimeAgoInS != nil && duration.Representable(*f.maxLoadedAtTimeAgoInS) {
		elapsed := duration.FromSeconds(*f.maxLoadedAtTimeAgoInS)
		result.TimeAgo = &elapsed
	}
	return result
}

func (f *FreshnessAlert) UniqueID() string { return f.uniqueID }

func (f *FreshnessAlert) SourceName() string { return f.sourceName }

func (f *FreshnessAlert) Identifier() string { return f.identifier }

func (f *FreshnessAlert) Path() string { return f.path }

func (f *FreshnessAlert) ErrorAfter() string { return f.errorAfter }

func (f *FreshnessAlert) WarnAfter() string { return f.warnAfter }

func (f *FreshnessAlert) Filter() string { return f.filter }

// ErrorMessage is the failure message of the check, only meaningful for runtime errors.
func (f *FreshnessAlert) ErrorMessage() string { return f.err }

func (f *FreshnessAlert) SnapshottedAt() (string, bool) { return deref(f.snapshottedAt) }

func (f *FreshnessAlert) MaxLoadedAt() (string, bool) { return deref(f.maxLoadedAt) }

func (f *FreshnessAlert) MaxLoadedAtTimeAgoInS() (float64, bool) {
	if f.maxLoadedAtTimeAgoInS == nil {
		return 0, false
	}
	return *f.maxLoadedAtTimeAgoInS, true
}

func (f *FreshnessAlert) Outcome() FreshnessOutcome {
	return f.outcome
}

func convertIfPresent(converter TimeConverter, raw *string, timezone string) (*string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	converted, err := converter.Convert(*raw, timezone)
	if err != nil {
		return nil, err
	}
	return &converted, nil
}

func deref(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	return *value, true
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func copyFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
