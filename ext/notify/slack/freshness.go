package slack

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
	"github.com/goto/sentinel/internal/utils"
)

const (
	DefaultDatetimeFormat = "2006-01-02 15:04:05"

	freshnessAlertTitle = "dbt source freshness alert"
	freshnessFailedText = "Failed to calculate the source freshness"

	noTags        = "_No tags_"
	noOwners      = "_No owners_"
	noSubscribers = "_No subscribers_"
	notAvailable  = "_Not available_"
)

type labelledValue struct {
	label string
	value string
}

// FreshnessRenderer lays a source freshness alert out as a chat message.
type FreshnessRenderer struct {
	datetimeFormat string
}

func NewFreshnessRenderer(datetimeFormat string) *FreshnessRenderer {
	return &FreshnessRenderer{
		datetimeFormat: utils.GetFirstNonEmpty(datetimeFormat, DefaultDatetimeFormat),
	}
}

// Render builds the message for the alert. isWorkflow is accepted for parity with the
// other alert renderers and does not change the layout of freshness alerts.
func (r *FreshnessRenderer) Render(a *alert.FreshnessAlert, _ bool) (*Message, error) {
	icon, err := StatusIcon(a.Status)
	if err != nil {
		return nil, err
	}

	result, err := r.resultBlocks(a.Outcome())
	if err != nil {
		return nil, err
	}

	return &Message{
		Title:         r.titleBlocks(a, icon),
		Preview:       r.previewBlocks(a),
		Result:        result,
		Configuration: r.configurationBlocks(a),
		Color:         StatusColor(a.Status),
	}, nil
}

func (r *FreshnessRenderer) titleBlocks(a *alert.FreshnessAlert, icon string) []slack.Block {
	return []slack.Block{
		HeaderBlock(fmt.Sprintf("%s %s", icon, freshnessAlertTitle)),
		ContextBlock(
			fmt.Sprintf("*Source:* %s     |", a.Alias),
			fmt.Sprintf("*Status:* %s     |", a.Status),
			fmt.Sprintf("*%s*", a.DetectedAt.Format(r.datetimeFormat)),
		),
	}
}

func (*FreshnessRenderer) previewBlocks(a *alert.FreshnessAlert) []slack.Block {
	return CompactedSectionsBlocks(
		"*Tags*\n"+prettifyOr(a.Tags, noTags),
		"*Owners*\n"+prettifyOr(a.Owners, noOwners),
		"*Subscribers*\n"+prettifyOr(a.Subscribers, noSubscribers),
	)
}

func (*FreshnessRenderer) resultBlocks(outcome alert.FreshnessOutcome) ([]slack.Block, error) {
	switch o := outcome.(type) {
	case alert.FreshnessFailure:
		return []slack.Block{
			ContextBlock("*Result message*"),
			TextSectionBlock(fmt.Sprintf("%s\n```%s```", freshnessFailedText, o.Message)),
		}, nil

	case alert.FreshnessResult:
		timeAgo := notAvailable
		if o.TimeAgo != nil {
			timeAgo = o.TimeAgo.String()
		}
		return CompactedSectionsBlocks(
			"*Time Elapsed*\n"+timeAgo,
			"*Last Record At*\n"+valueOr(o.MaxLoadedAt, notAvailable),
			"*Sampled At*\n"+valueOr(o.SnapshottedAt, notAvailable),
		), nil

	default:
		return nil, errors.InternalError(EntitySlack, fmt.Sprintf("unknown freshness outcome %T", outcome), nil)
	}
}

func (*FreshnessRenderer) configurationBlocks(a *alert.FreshnessAlert) []slack.Block {
	fields := []labelledValue{
		{label: "Error after", value: a.ErrorAfter()},
		{label: "Warn after", value: a.WarnAfter()},
		{label: "Filter", value: a.Filter()},
		{label: "Path", value: a.Path()},
	}

	var blocks []slack.Block
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		blocks = append(blocks,
			ContextBlock(fmt.Sprintf("*%s*", field.label)),
			TextSectionBlock(fmt.Sprintf("`%s`", field.value)),
		)
	}
	return blocks
}

func prettifyOr(values []string, placeholder string) string {
	if pretty := utils.PrettifyJSONStrSet(values); pretty != "" {
		return pretty
	}
	return placeholder
}

func valueOr(value *string, placeholder string) string {
	if value == nil || *value == "" {
		return placeholder
	}
	return *value
}
