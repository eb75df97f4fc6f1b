package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vovakirdan/roomhub/internal/store"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "roomhub:messages"

const sequenceSpan = 1000

// Store appends chat messages to a Redis stream.
type Store struct {
	client *goredis.Client
	stream string
	maxLen int64
}

var _ store.MessageStore = (*Store)(nil)

// New wraps an existing client. A positive maxLen caps the stream approximately.
func New(client *goredis.Client, stream string, maxLen int64) *Store {
	if stream == "" {
		stream = DefaultStream
	}
	return &Store{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Dial connects to addr and verifies the server responds.
func Dial(ctx context.Context, addr, stream string, maxLen int64) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client, stream, maxLen), nil
}

// AppendMessage adds msg as a stream entry and stores an ID derived from the
// entry ID in msg.ID.
func (s *Store) AppendMessage(ctx context.Context, msg *store.Message) error {
	args := &goredis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"room":       msg.Room,
			"author":     msg.Author,
			"body":       msg.Body,
			"created_at": msg.CreatedAt.UTC().UnixMilli(),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	msg.ID = entrySequence(id)
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// entrySequence packs a stream ID like "1700000000000-3" into
// ms*1000 + seq. IDs stay unique and ordered while a millisecond holds fewer
// than 1000 entries.
func entrySequence(id string) int64 {
	msPart, seqPart, _ := strings.Cut(id, "-")
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return 0
	}
	var seq int64
	if seqPart != "" {
		if seq, err = strconv.ParseInt(seqPart, 10, 64); err != nil {
			return 0
		}
	}
	return ms*sequenceSpan + seq
}
