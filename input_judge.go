package main

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// LaneBinding ties a lane to its key, its arrow key alternative and how it
// is drawn. Input handling and rendering both read this table.
type LaneBinding struct {
	Lane   LaneID
	Key    rune
	Label  rune
	Arrow  tcell.Key
	Column int
	Color  tcell.Color
}

var laneBindings = [LANE_COUNT]LaneBinding{
	{Lane: LaneA, Key: 'a', Label: 'A', Arrow: tcell.KeyLeft, Column: 2, Color: tcell.ColorGreen},
	{Lane: LaneS, Key: 's', Label: 'S', Arrow: tcell.KeyDown, Column: 5, Color: tcell.ColorRed},
	{Lane: LaneD, Key: 'd', Label: 'D', Arrow: tcell.KeyUp, Column: 8, Color: tcell.ColorYellow},
	{Lane: LaneF, Key: 'f', Label: 'F', Arrow: tcell.KeyRight, Column: 11, Color: tcell.ColorBlue},
}

// laneForKey maps a key to its lane. Letters match in either case.
func laneForKey(key rune) (LaneID, bool) {
	key = unicode.ToLower(key)
	for _, binding := range laneBindings {
		if binding.Key == key {
			return binding.Lane, true
		}
	}
	return 0, false
}

// Outcome is the result kind of a judged key press
type Outcome int

const (
	Miss Outcome = iota
	Hit
)

func (o Outcome) String() string {
	if o == Hit {
		return "hit"
	}
	return "miss"
}

// Judgment is the result of a judged key press. Pitch is only set on a hit.
type Judgment struct {
	Outcome Outcome
	Lane    LaneID
	Pitch   int
}

// InputJudge decides whether a key press hit a note
type InputJudge struct {
	lanes    *LaneBuffer
	score    *ScoreKeeper
	audio    AudioSink
	channel  int
	velocity int
	logger   *zap.Logger
}

// NewInputJudge creates a judge reading lanes and reporting to score and
// audio
func NewInputJudge(lanes *LaneBuffer, score *ScoreKeeper, audio AudioSink, velocity int, logger *zap.Logger) *InputJudge {
	if audio == nil {
		audio = silentSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InputJudge{
		lanes:    lanes,
		score:    score,
		audio:    audio,
		channel:  NOTE_CHANNEL,
		velocity: velocity,
		logger:   logger,
	}
}

// OnKeyPress judges a key press. A note on the hit line is a hit: it is
// played and scored. The note stays on the board, so pressing again before
// the next update scores it again. An empty hit line is a miss and breaks
// the streak. Keys without a lane return false and change nothing.
func (j *InputJudge) OnKeyPress(key rune) (Judgment, bool) {
	lane, ok := laneForKey(key)
	if !ok {
		return Judgment{}, false
	}

	slot := j.lanes.PeekHit(lane)
	if slot.IsEmpty() {
		j.score.RecordMiss()
		j.logger.Debug("miss", zap.Stringer("lane", lane))
		return Judgment{Outcome: Miss, Lane: lane}, true
	}

	j.audio.NoteOn(j.channel, slot.Pitch(), j.velocity)
	j.score.RecordHit()
	j.logger.Debug("hit",
		zap.Stringer("lane", lane),
		zap.Int("pitch", slot.Pitch()),
		zap.Int("score", j.score.State().Score),
	)
	return Judgment{Outcome: Hit, Lane: lane, Pitch: slot.Pitch()}, true
}
