// Package status provides a thread-safe status tracker for the mistfan
// daemon. The control loop writes it after every tick; the HTTP server and
// MQTT system events read point-in-time snapshots.
package status

import (
	"sync"
	"time"

	"github.com/aaronkirschen/mistFan/internal/control"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs    int64
	TimeoutMs int64
	Broker    string
	HTTPAddr  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	MistOn        bool
	FanPercent    int
	Cycle         *control.CycleSpec // active repeating cycle, nil if none
	Deadline      time.Time          // inactivity shutoff deadline, zero if unarmed
	Counts        control.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the device state, cycle, shutoff deadline and counters.
// Called from the control loop on every tick.
func (t *Tracker) Update(mistOn bool, fanPercent int, cycle *control.CycleSpec, deadline time.Time, counts control.EventCounts) {
	t.mu.Lock()
	t.snap.MistOn = mistOn
	t.snap.FanPercent = fanPercent
	t.snap.Cycle = cycle
	t.snap.Deadline = deadline
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
