package slack

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
)

const (
	EntitySlack = "slack"

	// maxSectionFields is the number of fields a section block accepts.
	maxSectionFields = 10
)

var statusIcons = map[alert.Status]string{
	alert.StatusPass:         ":white_check_mark:",
	alert.StatusWarn:         ":warning:",
	alert.StatusFail:         ":small_red_triangle:",
	alert.StatusError:        ":x:",
	alert.StatusRuntimeError: ":x:",
}

var statusColors = map[alert.Status]string{
	alert.StatusPass:         "#33b989",
	alert.StatusWarn:         "#ffcc00",
	alert.StatusFail:         "#ff0000",
	alert.StatusError:        "#ff0000",
	alert.StatusRuntimeError: "#ff0000",
}

func StatusIcon(status alert.Status) (string, error) {
	icon, ok := statusIcons[status]
	if !ok {
		return "", errors.InvalidArgument(EntitySlack, fmt.Sprintf("no icon for status [%s]", status))
	}
	return icon, nil
}

// StatusColor is the attachment bar color, unknown statuses get none.
func StatusColor(status alert.Status) string {
	return statusColors[status]
}

func HeaderBlock(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, text, true, false))
}

func ContextBlock(texts ...string) slack.Block {
	elements := make([]slack.MixedElement, len(texts))
	for i, text := range texts {
		elements[i] = slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
	}
	return slack.NewContextBlock("", elements...)
}

func TextSectionBlock(text string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

// CompactedSectionsBlocks lays the texts out as side by side fields, starting a new
// section whenever one is full.
func CompactedSectionsBlocks(texts ...string) []slack.Block {
	var blocks []slack.Block
	for start := 0; start < len(texts); start += maxSectionFields {
		end := min(start+maxSectionFields, len(texts))

		fields := make([]*slack.TextBlockObject, 0, end-start)
		for _, text := range texts[start:end] {
			fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, text, false, false))
		}
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	}
	return blocks
}
