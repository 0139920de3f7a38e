package auditlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/auth-service/internal"
)

// Writer persists audit entries off the request path. Entries are queued
// and written by a small worker pool; when the queue is full the entry is
// dropped with a warning rather than blocking the caller.
type Writer struct {
	repo   Repository
	logger *slog.Logger

	queue   chan *Entry
	workers int
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type WriterConfig struct {
	Workers      int
	QueueSize    int
	WriteTimeout time.Duration
}

func NewWriter(repo Repository, cfg WriterConfig, logger *slog.Logger) *Writer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Writer{
		repo:    repo,
		logger:  logger,
		queue:   make(chan *Entry, queueSize),
		workers: workers,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
	w.start()
	return w
}

func (w *Writer) start() {
	w.once.Do(func() {
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.run(i)
		}
		w.logger.Info("audit writer started",
			"workers", w.workers,
			"queue_size", cap(w.queue))
	})
}

func (w *Writer) run(id int) {
	defer w.wg.Done()

	for {
		select {
		case entry := <-w.queue:
			w.write(entry)
		case <-w.ctx.Done():
			// drain what is already queued before exiting
			for {
				select {
				case entry := <-w.queue:
					w.write(entry)
				default:
					w.logger.Debug("audit worker shutting down", "worker_id", id)
					return
				}
			}
		}
	}
}

func (w *Writer) write(entry *Entry) {
	ctx, cancel := internal.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.repo.Insert(ctx, entry); err != nil {
		w.logger.Error("audit write failed",
			"error", err,
			"event_name", entry.EventName,
			"username", entry.Username)
	}
}

// Enqueue queues an entry for background persistence. Never blocks.
func (w *Writer) Enqueue(entry *Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	select {
	case w.queue <- entry:
	default:
		w.logger.Warn("audit queue full, dropping entry",
			"event_name", entry.EventName,
			"queue_capacity", cap(w.queue))
	}
}

// Shutdown stops the workers after draining the queue.
func (w *Writer) Shutdown() {
	w.cancel()
	w.wg.Wait()
	w.logger.Info("audit writer stopped")
}
