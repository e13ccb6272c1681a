package main

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pitches(events []MIDIEvent) []int {
	out := make([]int, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Pitch)
	}
	return out
}

func TestLoadTimelineComputesEventTimes(t *testing.T) {
	timeline := loadScore(t, []scoreEvent{tempo(0, 120), note(0, 60), note(960, 62)})

	assert := assert.New(t)
	assert.Equal(120.0, timeline.InitialBPM())
	assert.Equal(2, timeline.NoteCount())

	var notes []MIDIEvent
	for _, ev := range timeline.Tracks()[0] {
		if ev.IsNoteOn {
			notes = append(notes, ev)
		}
	}
	require.Len(t, notes, 2)
	assert.InDelta(0.0, notes[0].TimeSeconds, 1e-9)
	assert.InDelta(1.0, notes[1].TimeSeconds, 1e-9)
	assert.InDelta(0.125, notes[0].DurationSeconds, 1e-9)
	assert.Equal(int64(960), notes[1].Tick)
	assert.Equal(100, notes[1].Velocity)
}

func TestLoadTimelineDefaultsTo120BPM(t *testing.T) {
	timeline := loadScore(t, []scoreEvent{note(480, 60)})

	assert.Equal(t, DEFAULT_BPM, timeline.InitialBPM())
	ev := timeline.Tracks()[0][0]
	assert.InDelta(t, 0.5, ev.TimeSeconds, 1e-9)
}

func TestLoadTimelineAppliesTempoChanges(t *testing.T) {
	// One beat at 120 BPM, then one beat at 60 BPM
	timeline := loadScore(t, []scoreEvent{tempo(0, 120), tempo(480, 60), note(960, 60)})

	var onset float64
	for _, ev := range timeline.Tracks()[0] {
		if ev.IsNoteOn {
			onset = ev.TimeSeconds
		}
	}
	assert.InDelta(t, 1.5, onset, 1e-9)
	assert.Equal(t, 120.0, timeline.InitialBPM())
}

func TestNextDueEventsHonoursLookAhead(t *testing.T) {
	timeline := loadScore(t, []scoreEvent{tempo(0, 120), note(960, 60)})

	assert := assert.New(t)
	assert.Empty(slices.Collect(timeline.NextDueEvents(900)))
	assert.Equal([]int{60}, pitches(slices.Collect(timeline.NextDueEvents(950))))
	assert.True(timeline.Exhausted())
}

func TestNextDueEventsNeverRepeatsAnEvent(t *testing.T) {
	timeline := loadScore(t, []scoreEvent{note(0, 60), note(480, 61)})

	first := slices.Collect(timeline.NextDueEvents(1000))
	second := slices.Collect(timeline.NextDueEvents(1000))
	third := slices.Collect(timeline.NextDueEvents(5000))

	assert := assert.New(t)
	assert.Equal([]int{60, 61}, pitches(first))
	assert.Empty(second)
	assert.Empty(third)
}

func TestNextDueEventsMergesTracksInTimeOrder(t *testing.T) {
	timeline := loadScore(t,
		[]scoreEvent{tempo(0, 120), note(480, 60)},
		[]scoreEvent{note(240, 62), note(720, 64)},
	)

	due := slices.Collect(timeline.NextDueEvents(10000))
	assert.Equal(t, []int{62, 60, 64}, pitches(due))
	assert.Equal(t, []int{1, 0, 1}, []int{due[0].Track, due[1].Track, due[2].Track})
}

func TestNextDueEventsIsLazy(t *testing.T) {
	timeline := loadScore(t, []scoreEvent{note(0, 60), note(0, 61), note(0, 62)})

	for ev := range timeline.NextDueEvents(0) {
		assert.Equal(t, 60, ev.Pitch)
		break
	}

	rest := slices.Collect(timeline.NextDueEvents(0))
	assert.Equal(t, []int{61, 62}, pitches(rest))
}

func TestNextDueEventsTracksCurrentTempo(t *testing.T) {
	timeline := loadScore(t, []scoreEvent{tempo(0, 120), note(0, 60), tempo(960, 90), note(1920, 62)})

	assert := assert.New(t)
	slices.Collect(timeline.NextDueEvents(100))
	assert.Equal(120.0, timeline.CurrentBPM())

	slices.Collect(timeline.NextDueEvents(1000))
	// Tempo is stored as whole microseconds per beat, so 90 BPM is not exact
	assert.InDelta(90.0, timeline.CurrentBPM(), 1e-3)
	assert.Equal(120.0, timeline.InitialBPM())
	assert.False(timeline.Exhausted())
}

func TestLoadTimelineRejectsBadInput(t *testing.T) {
	cases := map[string][]byte{
		"garbage":  []byte("definitely not a midi file"),
		"empty":    {},
		"no notes": scoreBytes(t, []scoreEvent{tempo(0, 100)}),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			timeline, err := LoadTimelineFrom(bytes.NewReader(data), name, zap.NewNop())
			assert.Nil(t, timeline)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, name, parseErr.Source)
		})
	}
}

func TestLoadTimelineMissingFile(t *testing.T) {
	_, err := LoadTimeline("testdata/does-not-exist.mid", nil)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.True(t, strings.Contains(err.Error(), "does-not-exist.mid"))
}
