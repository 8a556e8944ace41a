package lark

import (
	"encoding/json"
	"fmt"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
	"github.com/goto/sentinel/internal/utils"
)

const (
	DefaultDatetimeFormat = "2006-01-02 15:04:05"

	freshnessCardTitle = "dbt source freshness alert"
	notAvailable       = "Not available"
)

var statusTemplates = map[alert.Status]string{
	alert.StatusPass:         "green",
	alert.StatusWarn:         "orange",
	alert.StatusFail:         "red",
	alert.StatusError:        "red",
	alert.StatusRuntimeError: "red",
}

type card struct {
	Config   cardConfig    `json:"config"`
	Header   cardHeader    `json:"header"`
	Elements []cardElement `json:"elements"`
}

type cardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

type cardHeader struct {
	Template string   `json:"template"`
	Title    cardText `json:"title"`
}

type cardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type cardField struct {
	IsShort bool     `json:"is_short"`
	Text    cardText `json:"text"`
}

type cardElement struct {
	Tag    string      `json:"tag"`
	Text   *cardText   `json:"text,omitempty"`
	Fields []cardField `json:"fields,omitempty"`
}

func markdown(content string) *cardText {
	return &cardText{Tag: "lark_md", Content: content}
}

func divider() cardElement {
	return cardElement{Tag: "hr"}
}

func textElement(content string) cardElement {
	return cardElement{Tag: "div", Text: markdown(content)}
}

func fieldsElement(contents ...string) cardElement {
	fields := make([]cardField, len(contents))
	for i, content := range contents {
		fields[i] = cardField{IsShort: true, Text: *markdown(content)}
	}
	return cardElement{Tag: "div", Fields: fields}
}

// CardRenderer lays a source freshness alert out as an interactive card with the
// same sections as the slack message.
type CardRenderer struct {
	datetimeFormat string
}

func NewCardRenderer(datetimeFormat string) *CardRenderer {
	return &CardRenderer{datetimeFormat: utils.GetFirstNonEmpty(datetimeFormat, DefaultDatetimeFormat)}
}

func (r *CardRenderer) Render(a *alert.FreshnessAlert) (string, error) {
	template, ok := statusTemplates[a.Status]
	if !ok {
		return "", errors.InvalidArgument(EntityLark, fmt.Sprintf("no card template for status [%s]", a.Status))
	}

	elements := []cardElement{
		textElement(fmt.Sprintf("**Source:** %s | **Status:** %s | **%s**",
			a.Alias, a.Status, a.DetectedAt.Format(r.datetimeFormat))),
		divider(),
		fieldsElement(
			"**Tags**\n"+utils.GetFirstNonEmpty(utils.PrettifyJSONStrSet(a.Tags), "No tags"),
			"**Owners**\n"+utils.GetFirstNonEmpty(utils.PrettifyJSONStrSet(a.Owners), "No owners"),
			"**Subscribers**\n"+utils.GetFirstNonEmpty(utils.PrettifyJSONStrSet(a.Subscribers), "No subscribers"),
		),
		divider(),
	}

	switch o := a.Outcome().(type) {
	case alert.FreshnessFailure:
		elements = append(elements, textElement("**Result message**\nFailed to calculate the source freshness\n"+o.Message))
	case alert.FreshnessResult:
		timeAgo := notAvailable
		if o.TimeAgo != nil {
			timeAgo = o.TimeAgo.String()
		}
		elements = append(elements, fieldsElement(
			"**Time Elapsed**\n"+timeAgo,
			"**Last Record At**\n"+orNotAvailable(o.MaxLoadedAt),
			"**Sampled At**\n"+orNotAvailable(o.SnapshottedAt),
		))
	default:
		return "", errors.InternalError(EntityLark, fmt.Sprintf("unknown freshness outcome %T", o), nil)
	}

	configuration := []struct{ label, value string }{
		{"Error after", a.ErrorAfter()},
		{"Warn after", a.WarnAfter()},
		{"Filter", a.Filter()},
		{"Path", a.Path()},
	}
	for _, item := range configuration {
		if item.value == "" {
			continue
		}
		elements = append(elements, textElement(fmt.Sprintf("**%s**\n`%s`", item.label, item.value)))
	}

	content, err := json.Marshal(card{
		Config: cardConfig{WideScreenMode: true},
		Header: cardHeader{
			Template: template,
			Title:    cardText{Tag: "plain_text", Content: freshnessCardTitle},
		},
		Elements: elements,
	})
	if err != nil {
		return "", errors.InternalError(EntityLark, "unable to encode card", err)
	}
	return string(content), nil
}

func orNotAvailable(value *string) string {
	if value == nil || *value == "" {
		return notAvailable
	}
	return *value
}
