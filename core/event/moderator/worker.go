package moderator

import (
	"context"
	"sync"
	"time"

	"github.com/goto/salt/log"
)

const (
	DefaultBatchInterval = time.Second * 5

	// MaxFailedFlushes is how many writes a batch gets before it is dropped.
	MaxFailedFlushes = 3
)

type Writer interface {
	Write(messages [][]byte) error
	Close() error
}

// Worker collects messages from a channel and writes them in batches.
type Worker struct {
	mu            sync.Mutex
	messages      [][]byte
	failedFlushes int

	messageChan   <-chan []byte
	batchInterval time.Duration
	wg            sync.WaitGroup
	writer        Writer
	logger        log.Logger
}

// NewWorker prepares a worker, Run has to be started before Close is called.
func NewWorker(messageChan <-chan []byte, writer Writer, batchInterval time.Duration, logger log.Logger) *Worker {
	if batchInterval <= 0 {
		batchInterval = DefaultBatchInterval
	}
	w := &Worker{
		messageChan:   messageChan,
		batchInterval: batchInterval,
		writer:        writer,
		logger:        logger,
	}
	w.wg.Add(1)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.batchInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-w.messageChan:
			w.mu.Lock()
			w.messages = append(w.messages, message)
			w.mu.Unlock()
		case <-ticker.C:
			w.Flush()
		case <-ctx.Done():
			w.Flush()
			return
		}
	}
}

// Flush writes the pending batch. A failed batch is kept for the next flush,
// after MaxFailedFlushes failures in a row it is dropped.
func (w *Worker) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.messages) == 0 {
		return
	}

	if err := w.writer.Write(w.messages); err != nil {
		w.failedFlushes++
		w.logger.Error("error writing messages", "count", len(w.messages), "attempt", w.failedFlushes, "error", err)
		if w.failedFlushes < MaxFailedFlushes {
			return
		}
		w.logger.Error("dropping messages after repeated write failures", "count", len(w.messages))
	}
	w.failedFlushes = 0
	w.messages = make([][]byte, 0) // clear the messages
}

func (w *Worker) Close() error {
	// drain batches
	w.wg.Wait()
	return w.writer.Close()
}
