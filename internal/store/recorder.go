package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/core"
)

const writeTimeout = 5 * time.Second

// Recorder moves closed-room records off the coordinator's critical path and
// writes them to a journal from its own goroutine.
type Recorder struct {
	writer JournalWriter
	queue  chan RoomSession
	done   chan struct{}
	log    *zerolog.Logger
}

// NewRecorder creates a recorder with the given queue size.
func NewRecorder(writer JournalWriter, buffer int, logger *zerolog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 128
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Recorder{
		writer: writer,
		queue:  make(chan RoomSession, buffer),
		done:   make(chan struct{}),
		log:    logger,
	}
}

// Observe is a core.LifecycleHook. It never blocks; records are dropped when
// the queue is full.
func (r *Recorder) Observe(ev core.Lifecycle) {
	if ev.Kind != core.RoomClosed {
		return
	}
	session := RoomSession{
		RoomID:           ev.RoomID,
		OpenedAt:         ev.OpenedAt,
		ClosedAt:         ev.ClosedAt,
		PeakParticipants: ev.PeakParticipants,
		MessageCount:     ev.MessageCount,
	}
	select {
	case r.queue <- session:
	default:
		r.log.Warn().Str("room_id", ev.RoomID).Msg("journal queue full, session dropped")
	}
}

// Run writes queued sessions until ctx is cancelled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case s := <-r.queue:
			r.write(ctx, s)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

// Wait blocks until Run has returned.
func (r *Recorder) Wait() {
	<-r.done
}

func (r *Recorder) flush() {
	for {
		select {
		case s := <-r.queue:
			r.write(context.Background(), s)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, s RoomSession) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := r.writer.RecordSession(ctx, &s); err != nil {
		r.log.Error().Err(err).Str("room_id", s.RoomID).Msg("record room session")
		return
	}
	r.log.Debug().Str("room_id", s.RoomID).Int64("session_id", s.ID).Msg("room session recorded")
}
