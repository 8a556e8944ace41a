package utils_test

import (
	"errors"
	"testing"

	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"

	"github.com/goto/sentinel/internal/utils"
)

func TestRetry(t *testing.T) {
	logger := log.NewNoop()

	t.Run("stops at the first success", func(t *testing.T) {
		calls := 0
		err := utils.Retry(logger, 3, 0, func() error {
			calls++
			if calls < 2 {
				return errors.New("temporary")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
	t.Run("returns the last error when attempts run out", func(t *testing.T) {
		calls := 0
		err := utils.Retry(logger, 3, 0, func() error {
			calls++
			return errors.New("rate_limited")
		})
		assert.EqualError(t, err, "rate_limited")
		assert.Equal(t, 3, calls)
	})
	t.Run("returns permanent errors without another attempt", func(t *testing.T) {
		calls := 0
		err := utils.Retry(logger, 3, 0, func() error {
			calls++
			return utils.Permanent(errors.New("channel_not_found"))
		})
		assert.EqualError(t, err, "channel_not_found")
		assert.Equal(t, 1, calls)
	})
	t.Run("keeps nil when marking a nil error permanent", func(t *testing.T) {
		assert.NoError(t, utils.Permanent(nil))
	})
}
