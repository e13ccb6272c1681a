package main

import (
	"go.uber.org/zap"
)

// GameState represents the current state of the game
type GameState int

const (
	StatePlaying GameState = iota
	StateGameOver
)

func (s GameState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Session owns all state of one game, from the first update to quitting
type Session struct {
	timeline  *MIDITimeline
	clock     *GameClock
	lanes     *LaneBuffer
	scheduler *NoteScheduler
	judge     *InputJudge
	score     *ScoreKeeper
	state     GameState
	startMs   float64
	songMs    float64
	updates   int
	logger    *zap.Logger
}

// Frame is a read-only view of a session for drawing
type Frame struct {
	Lanes       [LANE_COUNT][]Slot
	Score       ScoreState
	State       GameState
	SongMs      float64
	CurrentBPM  float64
	MsPerUpdate float64
	Updates     int
	Spawned     int
	Dropped     int
	LastSpawn   MIDIEvent
}

// NewSession wires a game around timeline. The board cadence is taken from
// the score's initial tempo and does not follow later tempo changes.
func NewSession(timeline *MIDITimeline, audio AudioSink, opts ...SessionOption) *Session {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	timeline.SetLookAhead(cfg.lookAheadMs)
	lanes := NewLaneBuffer(cfg.boardHeight)
	score := NewScoreKeeper()

	s := &Session{
		timeline:  timeline,
		clock:     NewGameClock(timeline.InitialBPM(), cfg.subdivision),
		lanes:     lanes,
		scheduler: NewNoteScheduler(timeline, lanes, cfg.logger.Named("scheduler")),
		judge:     NewInputJudge(lanes, score, audio, cfg.velocity, cfg.logger.Named("judge")),
		score:     score,
		state:     StatePlaying,
		logger:    cfg.logger.Named("session"),
	}

	s.logger.Info("session created",
		zap.Float64("bpm", timeline.InitialBPM()),
		zap.Float64("msPerUpdate", s.clock.MsPerUpdate()),
		zap.Int("boardHeight", lanes.Height()),
	)
	return s
}

// Start anchors the song and the clock at nowMs
func (s *Session) Start(nowMs float64) {
	s.startMs = nowMs
	s.songMs = 0
	s.clock.Start(nowMs)
	s.logger.Info("game started")
}

// Update runs one board update if the clock allows it: notes move one slot
// down, then newly due notes spawn. It reports whether an update ran.
func (s *Session) Update(nowMs float64) bool {
	s.songMs = nowMs - s.startMs
	if s.state != StatePlaying {
		return false
	}
	if !s.clock.ShouldUpdate(nowMs) {
		return false
	}

	s.lanes.ShiftAll()
	s.scheduler.Tick(s.songMs)
	s.updates++

	if s.timeline.Exhausted() && s.lanes.Empty() {
		s.EndGame()
	}
	return true
}

// HandleKey judges a key press. Keys without a lane, and any key once the
// game is over, return false.
func (s *Session) HandleKey(key rune) (Judgment, bool) {
	if s.state != StatePlaying {
		return Judgment{}, false
	}
	return s.judge.OnKeyPress(key)
}

// EndGame ends the game and transitions to game over state
func (s *Session) EndGame() {
	if s.state == StateGameOver {
		return
	}
	s.state = StateGameOver

	final := s.score.State()
	s.logger.Info("game over",
		zap.Int("score", final.Score),
		zap.Int("maxStreak", final.MaxStreak),
		zap.Int("hits", final.Hits),
		zap.Int("misses", final.Misses),
		zap.Int("dropped", s.scheduler.Dropped()),
	)
}

// State returns the current game state
func (s *Session) State() GameState {
	return s.state
}

// Score returns the current score
func (s *Session) Score() ScoreState {
	return s.score.State()
}

// Lanes returns the board
func (s *Session) Lanes() *LaneBuffer {
	return s.lanes
}

// Frame snapshots everything the renderer needs
func (s *Session) Frame() Frame {
	return Frame{
		Lanes:       s.lanes.Snapshot(),
		Score:       s.score.State(),
		State:       s.state,
		SongMs:      s.songMs,
		CurrentBPM:  s.timeline.CurrentBPM(),
		MsPerUpdate: s.clock.MsPerUpdate(),
		Updates:     s.updates,
		Spawned:     s.scheduler.Spawned(),
		Dropped:     s.scheduler.Dropped(),
		LastSpawn:   s.scheduler.LastSpawn(),
	}
}
