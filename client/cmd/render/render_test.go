package render_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goto/sentinel/client/cmd/render"
)

const warnAlert = `
alert_id: alert-1
unique_id: source.shop.raw.orders
status: warn
detected_at: 2024-03-01T07:00:00Z
tags: ["finance"]
owners: ["@data-team"]
max_loaded_at: "2024-03-01 06:00:00"
max_loaded_at_time_ago_in_s: 3600
source_name: raw
identifier: orders
path: models/sources.yml
freshness_warn_after: '{"count": 1, "period": "hour"}'
`

func TestRenderCommand(t *testing.T) {
	writeAlert := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "alert.yaml")
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	execute := func(args ...string) (string, error) {
		cmd := render.NewRenderCommand()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	t.Run("prints webhook payload as json", func(t *testing.T) {
		output, err := execute(writeAlert(t, warnAlert))
		assert.NoError(t, err)

		var payload struct {
			Blocks      []map[string]any `json:"blocks"`
			Attachments []struct {
				Color  string           `json:"color"`
				Blocks []map[string]any `json:"blocks"`
			} `json:"attachments"`
		}
		assert.NoError(t, json.Unmarshal([]byte(output), &payload))
		assert.Len(t, payload.Blocks, 2)
		assert.Equal(t, "header", payload.Blocks[0]["type"])
		assert.Len(t, payload.Attachments, 1)
		assert.Equal(t, "#ffcc00", payload.Attachments[0].Color)
	})
	t.Run("prints blocks as a table", func(t *testing.T) {
		output, err := execute(writeAlert(t, warnAlert), "--format", "table")
		assert.NoError(t, err)
		assert.Contains(t, output, ":warning: dbt source freshness alert")
		assert.Contains(t, output, "*Time Elapsed*")
		assert.Contains(t, output, "1:00:00")
		assert.Contains(t, output, "2024-03-01T06:00:00+00:00")
		assert.Contains(t, output, "`models/sources.yml`")
		assert.NotContains(t, output, "Error after")
	})
	t.Run("returns error for unknown format", func(t *testing.T) {
		_, err := execute(writeAlert(t, warnAlert), "--format", "xml")
		assert.EqualError(t, err, "unknown format [xml], expected json or table")
	})
	t.Run("returns error for unknown timezone", func(t *testing.T) {
		_, err := execute(writeAlert(t, warnAlert), "--timezone", "Mars/Olympus")
		assert.ErrorContains(t, err, "unknown timezone Mars/Olympus")
	})
	t.Run("returns error when file is missing", func(t *testing.T) {
		_, err := execute(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "unable to read alert file")
	})
	t.Run("returns error without file argument", func(t *testing.T) {
		_, err := execute()
		assert.EqualError(t, err, "alert file is required")
	})
}
