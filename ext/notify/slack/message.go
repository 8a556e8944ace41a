package slack

import (
	"github.com/slack-go/slack"
)

// Message is a rendered alert. Title goes on top of the message, the other parts
// are grouped in an attachment carrying the status color.
type Message struct {
	Title         []slack.Block
	Preview       []slack.Block
	Result        []slack.Block
	Configuration []slack.Block

	Color string
}

func (m *Message) attachmentBlocks() []slack.Block {
	var blocks []slack.Block
	for _, part := range [][]slack.Block{m.Preview, m.Result, m.Configuration} {
		if len(part) == 0 {
			continue
		}
		if len(blocks) > 0 {
			blocks = append(blocks, slack.NewDividerBlock())
		}
		blocks = append(blocks, part...)
	}
	return blocks
}

func (m *Message) Attachment() slack.Attachment {
	return slack.Attachment{
		Color:  m.Color,
		Blocks: slack.Blocks{BlockSet: m.attachmentBlocks()},
	}
}

// WebhookMessage assembles the payload accepted by incoming webhooks.
func (m *Message) WebhookMessage() *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Blocks:      &slack.Blocks{BlockSet: m.Title},
		Attachments: []slack.Attachment{m.Attachment()},
	}
}

// MsgOptions assembles the same payload for chat.postMessage.
func (m *Message) MsgOptions() []slack.MsgOption {
	return []slack.MsgOption{
		slack.MsgOptionBlocks(m.Title...),
		slack.MsgOptionAttachments(m.Attachment()),
	}
}
