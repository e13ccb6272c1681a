package main

import (
	"go.uber.org/zap"
)

// Game constants
const (
	LANE_COUNT           = 4
	BOARD_HEIGHT         = 16  // One measure of 16th notes
	UPDATES_PER_BEAT     = 4.0 // Beat = quarter note, one update per 16th
	DEFAULT_BPM          = 120.0
	LOOK_AHEAD_MS        = 50.0
	BASE_SCORE_INCREMENT = 10
	NOTE_CHANNEL         = 0
	NOTE_VELOCITY        = 111
	QUIT_KEY             = 'q'
)

// Config holds everything the command line can change
type Config struct {
	MIDIPath    string
	SoundFont   string
	Program     int
	Velocity    int
	BoardHeight int
	LookAheadMs float64
	Volume      float64
	Mute        bool
	Debug       bool
	LogFile     string
	LogLevel    string
}

// DefaultConfig returns the configuration used when no flags are given
func DefaultConfig() Config {
	return Config{
		MIDIPath:    "resources/midi-files/twinkle_twinkle.mid",
		SoundFont:   "resources/sound-fonts/Masterpiece.sf2",
		Program:     0, // Piano
		Velocity:    NOTE_VELOCITY,
		BoardHeight: BOARD_HEIGHT,
		LookAheadMs: LOOK_AHEAD_MS,
		Volume:      1.0,
		LogFile:     "terminal-hero.log",
		LogLevel:    "info",
	}
}

// sessionConfig is assembled from SessionOptions by NewSession
type sessionConfig struct {
	boardHeight int
	lookAheadMs float64
	subdivision float64
	velocity    int
	logger      *zap.Logger
}

// SessionOption customises a Session at construction time
type SessionOption func(*sessionConfig)

// WithBoardHeight sets the number of slots per lane
func WithBoardHeight(height int) SessionOption {
	return func(c *sessionConfig) {
		if height > 1 {
			c.boardHeight = height
		}
	}
}

// WithLookAhead sets how far ahead of "now" a note-on counts as due
func WithLookAhead(ms float64) SessionOption {
	return func(c *sessionConfig) {
		if ms >= 0 {
			c.lookAheadMs = ms
		}
	}
}

// WithSubdivision sets how many board updates happen per beat
func WithSubdivision(updatesPerBeat float64) SessionOption {
	return func(c *sessionConfig) {
		if updatesPerBeat > 0 {
			c.subdivision = updatesPerBeat
		}
	}
}

// WithVelocity sets the velocity used when a hit plays its note
func WithVelocity(velocity int) SessionOption {
	return func(c *sessionConfig) {
		c.velocity = clamp(velocity, 1, 127)
	}
}

// WithLogger sets the parent logger for all session components
func WithLogger(logger *zap.Logger) SessionOption {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func defaultSessionConfig() *sessionConfig {
	return &sessionConfig{
		boardHeight: BOARD_HEIGHT,
		lookAheadMs: LOOK_AHEAD_MS,
		subdivision: UPDATES_PER_BEAT,
		velocity:    NOTE_VELOCITY,
		logger:      zap.NewNop(),
	}
}
