package activity

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// VoiceSink receives whole minutes of voice presence to accrue.
type VoiceSink func(guildID, userID string, minutes int)

// Tracker maintains, per guild, when each user's current voice presence
// began. Leave events and the periodic flush both consume it; the mutex
// makes leave-side removal atomic with respect to a racing flush, so a
// session is never counted twice.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]map[string]time.Time // guildID -> userID -> checkpoint

	interval time.Duration
	sink     VoiceSink
	done     chan struct{}
	stopOnce sync.Once
}

// NewTracker creates a tracker that reports accrued minutes to sink and
// flushes live sessions every interval once started.
func NewTracker(interval time.Duration, sink VoiceSink) *Tracker {
	return &Tracker{
		sessions: make(map[string]map[string]time.Time),
		interval: interval,
		sink:     sink,
		done:     make(chan struct{}),
	}
}

// Join records the start of a voice session. A user already in voice
// keeps their existing checkpoint.
func (t *Tracker) Join(guildID, userID string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.sessions[guildID]
	if !ok {
		users = make(map[string]time.Time)
		t.sessions[guildID] = users
	}
	if _, active := users[userID]; !active {
		users[userID] = now
	}
}

// Active reports whether a voice session is currently tracked.
func (t *Tracker) Active(guildID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.sessions[guildID][userID]
	return ok
}

// Leave ends a voice session and accrues the whole minutes since the last
// checkpoint. Sub-minute remainders are dropped, not banked.
func (t *Tracker) Leave(guildID, userID string, now time.Time) {
	t.mu.Lock()
	start, ok := t.sessions[guildID][userID]
	if ok {
		delete(t.sessions[guildID], userID)
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	if minutes := wholeMinutes(start, now); minutes > 0 {
		t.sink(guildID, userID, minutes)
	}
}

// Start launches the periodic flush loop.
func (t *Tracker) Start() {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				// A tick that raced with Stop must not flush.
				select {
				case <-t.done:
					return
				default:
				}
				t.flush(now)
			case <-t.done:
				return
			}
		}
	}()
	log.Debug().Dur("interval", t.interval).Msg("voice tracker started")
}

// Stop cancels the flush loop. Sessions still tracked are abandoned;
// their un-flushed minutes are lost with the process.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

type voiceIncrement struct {
	guildID string
	userID  string
	minutes int
}

// flush accrues whole minutes for every live session and resets each
// accrued session's checkpoint to now, so long-lived sessions pay out
// incrementally. Sink calls happen outside the lock.
func (t *Tracker) flush(now time.Time) {
	t.mu.Lock()
	var due []voiceIncrement
	for guildID, users := range t.sessions {
		for userID, start := range users {
			if minutes := wholeMinutes(start, now); minutes > 0 {
				users[userID] = now
				due = append(due, voiceIncrement{guildID: guildID, userID: userID, minutes: minutes})
			}
		}
	}
	t.mu.Unlock()

	for _, inc := range due {
		t.sink(inc.guildID, inc.userID, inc.minutes)
	}
}

func wholeMinutes(start, now time.Time) int {
	return int(now.Sub(start).Minutes())
}
