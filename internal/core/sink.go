package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/roomhub/internal/store"
)

const (
	defaultSinkQueue   = 256
	defaultSinkTimeout = 5 * time.Second
	drainTimeout       = 2 * time.Second
)

// Sink hands chat messages to a MessageStore on its own goroutine so that a
// slow store never delays delivery. Messages are written at most once; failures
// are logged and dropped.
type Sink struct {
	store   store.MessageStore
	queue   chan ChatMessage
	timeout time.Duration
	log     *zerolog.Logger
}

// NewSink builds a sink over st. Non-positive sizes select defaults.
func NewSink(st store.MessageStore, queueSize int, timeout time.Duration, logger *zerolog.Logger) *Sink {
	if queueSize <= 0 {
		queueSize = defaultSinkQueue
	}
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Sink{
		store:   st,
		queue:   make(chan ChatMessage, queueSize),
		timeout: timeout,
		log:     logger,
	}
}

// Enqueue schedules msg for persistence without blocking.
// It returns false when the queue is full and the message was dropped.
func (s *Sink) Enqueue(msg ChatMessage) bool {
	select {
	case s.queue <- msg:
		return true
	default:
		s.log.Warn().
			Str("room", msg.Room).
			Str("author", msg.Author).
			Msg("sink queue full, message not persisted")
		return false
	}
}

// Run persists queued messages until ctx is done, then drains what is left
// with a short deadline. Canceling ctx does not abort a write in progress;
// cancel it only after every producer has stopped calling Enqueue.
func (s *Sink) Run(ctx context.Context) {
	for {
		select {
		case msg := <-s.queue:
			s.persist(context.Background(), msg)
		case <-ctx.Done():
			s.drain()
			return
		}
	}
}

func (s *Sink) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case msg := <-s.queue:
			s.persist(ctx, msg)
		default:
			return
		}
	}
}

func (s *Sink) persist(ctx context.Context, msg ChatMessage) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.Persist(ctx, msg); err != nil {
		s.log.Error().Err(err).
			Str("room", msg.Room).
			Str("author", msg.Author).
			Msg("failed to persist chat message")
	}
}

// Persist writes msg to the store synchronously.
func (s *Sink) Persist(ctx context.Context, msg ChatMessage) error {
	record := &store.Message{
		Room:      msg.Room,
		Author:    msg.Author,
		Body:      msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if err := s.store.AppendMessage(ctx, record); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
