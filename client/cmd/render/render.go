package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/olekukonko/tablewriter"
	slackapi "github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/ext/notify/slack"
	"github.com/goto/sentinel/internal/lib/timezone"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

type renderCommand struct {
	timezone       string
	datetimeFormat string
	format         string
	isWorkflow     bool
}

// NewRenderCommand initializes command to preview the chat message of a freshness alert
func NewRenderCommand() *cobra.Command {
	r := &renderCommand{}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a source freshness alert as a chat message",
		Long: heredoc.Doc(`
			Reads a source freshness alert record from a YAML or JSON file
			and prints the chat message it would be delivered as.`),
		Example: heredoc.Doc(`
			$ sentinel render alert.yaml
			$ sentinel render alert.json --timezone Asia/Jakarta --format table`),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("alert file is required")
			}
			return nil
		},
		RunE: r.RunE,
	}

	cmd.Flags().StringVar(&r.timezone, "timezone", "UTC", "Timezone the alert timestamps are shown in")
	cmd.Flags().StringVar(&r.datetimeFormat, "datetime-format", slack.DefaultDatetimeFormat, "Layout of the detected at timestamp")
	cmd.Flags().StringVarP(&r.format, "format", "f", formatJSON, "Output format, json or table")
	cmd.Flags().BoolVar(&r.isWorkflow, "workflow", false, "Render for a workflow message")
	return cmd
}

func (r *renderCommand) RunE(cmd *cobra.Command, args []string) error {
	record, err := readRecord(args[0])
	if err != nil {
		return err
	}

	freshnessAlert, err := alert.NewFreshnessAlert(record, r.timezone, timezone.NewConverter())
	if err != nil {
		return err
	}

	message, err := slack.NewFreshnessRenderer(r.datetimeFormat).Render(freshnessAlert, r.isWorkflow)
	if err != nil {
		return err
	}

	switch r.format {
	case formatJSON:
		return writeJSON(cmd.OutOrStdout(), message)
	case formatTable:
		writeTable(cmd.OutOrStdout(), message)
		return nil
	default:
		return fmt.Errorf("unknown format [%s], expected %s or %s", r.format, formatJSON, formatTable)
	}
}

// readRecord decodes yaml, which also covers json files.
func readRecord(path string) (alert.FreshnessRecord, error) {
	var record alert.FreshnessRecord

	content, err := os.ReadFile(path)
	if err != nil {
		return record, fmt.Errorf("unable to read alert file: %w", err)
	}
	if err := yaml.Unmarshal(content, &record); err != nil {
		return record, fmt.Errorf("unable to decode alert file %s: %w", path, err)
	}
	return record, nil
}

func writeJSON(out io.Writer, message *slack.Message) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(message.WebhookMessage())
}

func writeTable(out io.Writer, message *slack.Message) {
	table := tablewriter.NewWriter(out)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{
		"Section",
		"Block",
		"Text",
	})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	sections := []struct {
		name   string
		blocks []slackapi.Block
	}{
		{"title", message.Title},
		{"preview", message.Preview},
		{"result", message.Result},
		{"configuration", message.Configuration},
	}
	for _, section := range sections {
		for _, block := range section.blocks {
			table.Append([]string{section.name, string(block.BlockType()), blockText(block)})
		}
	}
	table.Render()
}

func blockText(block slackapi.Block) string {
	var texts []string
	switch b := block.(type) {
	case *slackapi.HeaderBlock:
		texts = append(texts, b.Text.Text)
	case *slackapi.ContextBlock:
		for _, element := range b.ContextElements.Elements {
			if text, ok := element.(*slackapi.TextBlockObject); ok {
				texts = append(texts, text.Text)
			}
		}
	case *slackapi.SectionBlock:
		if b.Text != nil {
			texts = append(texts, b.Text.Text)
		}
		for _, field := range b.Fields {
			texts = append(texts, field.Text)
		}
	}
	return strings.Join(texts, " | ")
}
