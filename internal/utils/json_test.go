package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goto/sentinel/internal/utils"
)

func TestUnpackAndFlatten(t *testing.T) {
	t.Run("expands json encoded members", func(t *testing.T) {
		actual := utils.UnpackAndFlatten([]string{`["finance","pii"]`, "core"})

		assert.Equal(t, []string{"finance", "pii", "core"}, actual)
	})
	t.Run("keeps members that only look like json", func(t *testing.T) {
		actual := utils.UnpackAndFlatten([]string{"[draft"})

		assert.Equal(t, []string{"[draft"}, actual)
	})
	t.Run("drops blank members", func(t *testing.T) {
		actual := utils.UnpackAndFlatten([]string{"", "  ", `[]`})

		assert.Empty(t, actual)
	})
}

func TestPrettifyJSONStrSet(t *testing.T) {
	t.Run("joins sorted unique members", func(t *testing.T) {
		actual := utils.PrettifyJSONStrSet([]string{"@data-eng", `["@analytics","@data-eng"]`})

		assert.Equal(t, "@analytics, @data-eng", actual)
	})
	t.Run("returns empty string for empty set", func(t *testing.T) {
		assert.Equal(t, "", utils.PrettifyJSONStrSet(nil))
	})
}
