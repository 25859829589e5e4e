package stream

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/vitalflow/analytics/internal/logger"
)

// Source delivers decoded envelopes to the worker. Implementations own the
// transport mechanics; the engine only ranges over the channel. The channel
// closes when the source is exhausted or the context is cancelled.
type Source interface {
	Events() <-chan Envelope
}

// ChannelSource adapts an in-process channel into a Source, for embedding
// the engine in the same process as the record service and for tests.
type ChannelSource struct {
	ch chan Envelope
}

// NewChannelSource creates a channel-backed source with the given buffer.
func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{ch: make(chan Envelope, buffer)}
}

// Send enqueues one envelope.
func (s *ChannelSource) Send(env Envelope) {
	s.ch <- env
}

// Close marks the source exhausted.
func (s *ChannelSource) Close() {
	close(s.ch)
}

func (s *ChannelSource) Events() <-chan Envelope {
	return s.ch
}

// ReaderSource streams newline-delimited JSON envelopes from a reader,
// typically stdin or a replay file. Malformed lines are logged and skipped;
// one bad line must not halt the stream.
type ReaderSource struct {
	r   io.Reader
	log logger.Logger
	ch  chan Envelope
}

// NewReaderSource creates a source over NDJSON input and starts reading.
func NewReaderSource(r io.Reader, log logger.Logger) *ReaderSource {
	s := &ReaderSource{
		r:   r,
		log: log,
		ch:  make(chan Envelope, 64),
	}
	go s.run()
	return s
}

func (s *ReaderSource) run() {
	defer close(s.ch)

	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			s.log.Warn("skipping malformed event line", logger.Err(err))
			continue
		}
		s.ch <- env
	}

	if err := scanner.Err(); err != nil {
		s.log.Error("event input read failed", logger.Err(err))
	}
}

func (s *ReaderSource) Events() <-chan Envelope {
	return s.ch
}
