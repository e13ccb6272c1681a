package main

// GameClock gates board updates to a fixed cadence derived from the tempo.
// It is a gate, not a fixed-timestep loop: when an update fires, any time
// past msPerUpdate is dropped rather than carried into the next window.
type GameClock struct {
	msPerUpdate   float64
	accumulatedMs float64
	lastTickMs    float64
}

// MsPerUpdate converts a tempo and the number of updates per beat into
// milliseconds between updates
func MsPerUpdate(bpm, updatesPerBeat float64) float64 {
	if bpm <= 0 {
		bpm = DEFAULT_BPM
	}
	if updatesPerBeat <= 0 {
		updatesPerBeat = UPDATES_PER_BEAT
	}
	return 1000.0 / ((bpm / 60.0) * updatesPerBeat)
}

// NewGameClock creates a clock for the given tempo. The cadence is fixed
// for the lifetime of the clock.
func NewGameClock(bpm, updatesPerBeat float64) *GameClock {
	return &GameClock{
		msPerUpdate: MsPerUpdate(bpm, updatesPerBeat),
	}
}

// Start anchors the clock at nowMs
func (c *GameClock) Start(nowMs float64) {
	c.lastTickMs = nowMs
	c.accumulatedMs = 0
}

// ShouldUpdate reports whether a full update interval has passed since the
// last accepted update, and restarts the interval if so
func (c *GameClock) ShouldUpdate(nowMs float64) bool {
	c.accumulatedMs = nowMs - c.lastTickMs
	if c.accumulatedMs < c.msPerUpdate {
		return false
	}
	c.lastTickMs = nowMs
	c.accumulatedMs = 0
	return true
}

// MsPerUpdate returns the update interval
func (c *GameClock) MsPerUpdate() float64 {
	return c.msPerUpdate
}

// Elapsed returns the time accumulated towards the next update, as of the
// last ShouldUpdate call
func (c *GameClock) Elapsed() float64 {
	return c.accumulatedMs
}
