package main

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

const testTicksPerQuarter = 480

// scoreEvent is a note (pitch set) or a tempo change (tempo set) at an
// absolute tick. Notes last 120 ticks.
type scoreEvent struct {
	tick  uint32
	pitch uint8
	tempo float64
}

func note(tick uint32, pitch uint8) scoreEvent {
	return scoreEvent{tick: tick, pitch: pitch}
}

func tempo(tick uint32, bpm float64) scoreEvent {
	return scoreEvent{tick: tick, tempo: bpm}
}

// scoreBytes writes a standard MIDI file with one track per argument
func scoreBytes(t *testing.T, tracks ...[]scoreEvent) []byte {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(testTicksPerQuarter)

	type timed struct {
		tick uint32
		msg  []byte
	}

	for _, events := range tracks {
		var timedEvents []timed
		for _, ev := range events {
			if ev.tempo > 0 {
				timedEvents = append(timedEvents, timed{ev.tick, smf.MetaTempo(ev.tempo)})
				continue
			}
			timedEvents = append(timedEvents,
				timed{ev.tick, midi.NoteOn(0, ev.pitch, 100)},
				timed{ev.tick + 120, midi.NoteOff(0, ev.pitch)},
			)
		}
		sort.SliceStable(timedEvents, func(i, j int) bool {
			return timedEvents[i].tick < timedEvents[j].tick
		})

		var track smf.Track
		var last uint32
		for _, ev := range timedEvents {
			track.Add(ev.tick-last, ev.msg)
			last = ev.tick
		}
		track.Close(0)
		require.NoError(t, s.Add(track))
	}

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func loadScore(t *testing.T, tracks ...[]scoreEvent) *MIDITimeline {
	t.Helper()
	timeline, err := LoadTimelineFrom(bytes.NewReader(scoreBytes(t, tracks...)), "test.mid", zap.NewNop())
	require.NoError(t, err)
	return timeline
}

// placeAtHit spawns pitch in lane and scrolls it down to the hit line
func placeAtHit(t *testing.T, lanes *LaneBuffer, lane LaneID, pitch int) {
	t.Helper()
	require.True(t, lanes.Spawn(lane, pitch))
	for i := 0; i < lanes.Height()-1; i++ {
		lanes.ShiftAll()
	}
	require.Equal(t, Slot(pitch), lanes.PeekHit(lane))
}

type playedNote struct {
	channel, pitch, velocity int
}

type recordingSink struct {
	played []playedNote
}

func (r *recordingSink) NoteOn(channel, pitch, velocity int) {
	r.played = append(r.played, playedNote{channel, pitch, velocity})
}

func (r *recordingSink) NoteOff(channel, pitch int) {}
