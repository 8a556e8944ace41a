package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/goto/sentinel/core/alert/service"
	"github.com/goto/sentinel/internal/errors"
)

func TestDispatchWorker(t *testing.T) {
	logger := log.NewNoop()

	t.Run("Start", func(t *testing.T) {
		t.Run("returns error for invalid schedule", func(t *testing.T) {
			worker := service.NewDispatchWorker(logger, new(mockSender), "every minute")
			err := worker.Start(context.Background())
			assert.True(t, errors.IsErrorType(err, errors.ErrInvalidArgument))
		})
		t.Run("sends pending alerts on schedule and survives failures", func(t *testing.T) {
			calls := make(chan struct{}, 10)
			sender := new(mockSender)
			sender.On("SendPending", mock.Anything).Return(fmt.Errorf("some alerts failed")).
				Run(func(mock.Arguments) { calls <- struct{}{} })

			worker := service.NewDispatchWorker(logger, sender, "@every 1s")
			assert.NoError(t, worker.Start(context.Background()))
			defer worker.Stop()

			for i := 0; i < 2; i++ {
				select {
				case <-calls:
				case <-time.After(5 * time.Second):
					t.Fatal("pending alerts were not sent")
				}
			}
		})
		t.Run("recovers from panics in sender", func(t *testing.T) {
			calls := make(chan struct{}, 10)
			sender := new(mockSender)
			sender.On("SendPending", mock.Anything).Run(func(mock.Arguments) {
				calls <- struct{}{}
				panic("unexpected")
			})

			worker := service.NewDispatchWorker(logger, sender, "@every 1s")
			assert.NoError(t, worker.Start(context.Background()))
			defer worker.Stop()

			for i := 0; i < 2; i++ {
				select {
				case <-calls:
				case <-time.After(5 * time.Second):
					t.Fatal("worker stopped after panic")
				}
			}
		})
	})
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendPending(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
