package main

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

// MIDIEvent represents a single timed event from the score
type MIDIEvent struct {
	Track           int
	Tick            int64   // Absolute tick within the track
	TimeSeconds     float64 // Absolute time, tempo changes applied
	IsNoteOn        bool
	IsTempoMeta     bool
	Channel         int
	Pitch           int // MIDI note number (0-127)
	Velocity        int
	TempoBPM        float64 // Only set for tempo meta events
	DurationSeconds float64 // Only set for note-ons with a matching note-off
}

// TimeMs returns the event time in milliseconds
func (e MIDIEvent) TimeMs() float64 {
	return e.TimeSeconds * 1000
}

// ParseError is returned when the score cannot be read or understood
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot load score %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MIDITimeline holds every track of the score and a read cursor per track.
// Cursors only move forward, so each event is handed out at most once.
type MIDITimeline struct {
	source         string
	tracks         [][]MIDIEvent
	cursors        []int
	initialBPM     float64
	currentBPM     float64
	lookAheadMs    float64
	noteCount      int
	remainingNotes int
	logger         *zap.Logger
}

type tempoPoint struct {
	tick    int64
	bpm     float64
	seconds float64
}

// LoadTimeline reads and parses a standard MIDI file from disk
func LoadTimeline(path string, logger *zap.Logger) (*MIDITimeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: errors.Wrap(err, "failed to read file")}
	}

	if absPath, err := filepath.Abs(path); err == nil {
		path = absPath
	}
	return LoadTimelineFrom(bytes.NewReader(data), path, logger)
}

// LoadTimelineFrom parses a standard MIDI file from r. source is only used
// for messages.
func LoadTimelineFrom(r io.Reader, source string, logger *zap.Logger) (timeline *MIDITimeline, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// smf panics on some truncated files instead of returning an error
	defer func() {
		if rec := recover(); rec != nil {
			timeline = nil
			err = &ParseError{Source: source, Err: errors.Errorf("decoder panic: %v", rec)}
		}
	}()

	file, err := smf.ReadFrom(r)
	if err != nil {
		return nil, &ParseError{Source: source, Err: errors.Wrap(err, "failed to parse MIDI file")}
	}

	ticks, ok := file.TimeFormat.(smf.MetricTicks)
	if !ok || ticks.Resolution() == 0 {
		return nil, &ParseError{Source: source, Err: errors.New("only metric time formats are supported")}
	}

	tempos := buildTempoMap(file.Tracks, float64(ticks.Resolution()))

	timeline = &MIDITimeline{
		source:      source,
		tracks:      make([][]MIDIEvent, 0, len(file.Tracks)),
		initialBPM:  DEFAULT_BPM,
		lookAheadMs: LOOK_AHEAD_MS,
		logger:      logger,
	}

	for trackIndex, track := range file.Tracks {
		events := convertTrack(trackIndex, track, tempos)
		for _, ev := range events {
			if ev.IsNoteOn {
				timeline.noteCount++
			}
		}
		timeline.tracks = append(timeline.tracks, events)
	}
	timeline.cursors = make([]int, len(timeline.tracks))
	timeline.remainingNotes = timeline.noteCount

	if timeline.noteCount == 0 {
		return nil, &ParseError{Source: source, Err: errors.New("score has no note-on events")}
	}

	if tempos.firstBPM > 0 {
		timeline.initialBPM = tempos.firstBPM
	}
	timeline.currentBPM = timeline.initialBPM

	logger.Info("score loaded",
		zap.String("source", source),
		zap.Int("tracks", len(timeline.tracks)),
		zap.Int("notes", timeline.noteCount),
		zap.Uint16("ticksPerQuarter", ticks.Resolution()),
		zap.Float64("bpm", timeline.initialBPM),
	)

	return timeline, nil
}

// tempoMap converts absolute ticks to seconds, honouring every tempo
// change in the file
type tempoMap struct {
	points     []tempoPoint
	resolution float64
	firstBPM   float64 // First tempo event in the file, 0 if there is none
}

// buildTempoMap collects tempo meta events from every track, ordered by tick,
// with the seconds offset at which each one takes effect
func buildTempoMap(tracks []smf.Track, resolution float64) *tempoMap {
	points := make([]tempoPoint, 0)
	for _, track := range tracks {
		var absTick int64
		for _, ev := range track {
			absTick += int64(ev.Delta)
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				points = append(points, tempoPoint{tick: absTick, bpm: bpm})
			}
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].tick < points[j].tick
	})

	tm := &tempoMap{resolution: resolution}
	if len(points) > 0 {
		tm.firstBPM = points[0].bpm
	}

	// Everything before the first tempo event plays at the default tempo
	if len(points) == 0 || points[0].tick > 0 {
		points = append([]tempoPoint{{tick: 0, bpm: DEFAULT_BPM}}, points...)
	}

	for i := 1; i < len(points); i++ {
		prev := points[i-1]
		points[i].seconds = prev.seconds + tm.span(points[i].tick-prev.tick, prev.bpm)
	}
	tm.points = points
	return tm
}

func (tm *tempoMap) span(ticks int64, bpm float64) float64 {
	return float64(ticks) / tm.resolution * 60.0 / bpm
}

// Seconds returns the absolute time of tick
func (tm *tempoMap) Seconds(tick int64) float64 {
	i := sort.Search(len(tm.points), func(i int) bool {
		return tm.points[i].tick > tick
	}) - 1
	if i < 0 {
		i = 0
	}
	p := tm.points[i]
	return p.seconds + tm.span(tick-p.tick, p.bpm)
}

// convertTrack turns one smf track into timeline events. Note-ons are
// paired with their note-offs to fill in durations.
func convertTrack(trackIndex int, track smf.Track, tm *tempoMap) []MIDIEvent {
	events := make([]MIDIEvent, 0, len(track))
	open := make(map[int][]int) // channel<<8|pitch -> indexes of sounding note-ons

	var absTick int64
	for _, ev := range track {
		absTick += int64(ev.Delta)
		seconds := tm.Seconds(absTick)

		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) {
			if bpm <= 0 {
				continue
			}
			events = append(events, MIDIEvent{
				Track:       trackIndex,
				Tick:        absTick,
				TimeSeconds: seconds,
				IsTempoMeta: true,
				TempoBPM:    bpm,
			})
			continue
		}

		msg := midi.Message(ev.Message)
		var channel, key, velocity uint8
		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			id := int(channel)<<8 | int(key)
			open[id] = append(open[id], len(events))
			events = append(events, MIDIEvent{
				Track:       trackIndex,
				Tick:        absTick,
				TimeSeconds: seconds,
				IsNoteOn:    true,
				Channel:     int(channel),
				Pitch:       int(key),
				Velocity:    int(velocity),
			})
		case msg.GetNoteEnd(&channel, &key):
			id := int(channel)<<8 | int(key)
			if started := open[id]; len(started) > 0 {
				on := &events[started[0]]
				on.DurationSeconds = seconds - on.TimeSeconds
				open[id] = started[1:]
			}
			events = append(events, MIDIEvent{
				Track:       trackIndex,
				Tick:        absTick,
				TimeSeconds: seconds,
				Channel:     int(channel),
				Pitch:       int(key),
			})
		}
	}
	return events
}

// SetLookAhead sets how far ahead of the query time a note-on counts as due
func (t *MIDITimeline) SetLookAhead(ms float64) {
	if ms >= 0 {
		t.lookAheadMs = ms
	}
}

// NextDueEvents yields, in time order across all tracks, every unconsumed
// note-on event due at nowMs. Each event is consumed as it is reached, and
// the first event beyond the look-ahead window ends the sequence. Tempo
// events passed on the way update CurrentBPM.
func (t *MIDITimeline) NextDueEvents(nowMs float64) iter.Seq[MIDIEvent] {
	return func(yield func(MIDIEvent) bool) {
		for {
			track, ok := t.earliestPending()
			if !ok {
				return
			}

			ev := t.tracks[track][t.cursors[track]]
			if ev.TimeMs() > nowMs+t.lookAheadMs {
				return
			}
			t.cursors[track]++

			switch {
			case ev.IsTempoMeta:
				if ev.TempoBPM != t.currentBPM {
					t.logger.Debug("tempo change",
						zap.Float64("from", t.currentBPM),
						zap.Float64("to", ev.TempoBPM),
						zap.Float64("at", ev.TimeSeconds),
					)
				}
				t.currentBPM = ev.TempoBPM
			case ev.IsNoteOn:
				t.remainingNotes--
				if !yield(ev) {
					return
				}
			}
		}
	}
}

// earliestPending returns the track whose next unconsumed event comes
// first. Ties go to the lower track index.
func (t *MIDITimeline) earliestPending() (int, bool) {
	best := -1
	for track, events := range t.tracks {
		cursor := t.cursors[track]
		if cursor >= len(events) {
			continue
		}
		if best < 0 || events[cursor].TimeSeconds < t.tracks[best][t.cursors[best]].TimeSeconds {
			best = track
		}
	}
	return best, best >= 0
}

// InitialBPM returns the tempo used to derive the board cadence
func (t *MIDITimeline) InitialBPM() float64 {
	return t.initialBPM
}

// CurrentBPM returns the last tempo the cursor has passed
func (t *MIDITimeline) CurrentBPM() float64 {
	return t.currentBPM
}

// Exhausted reports whether every note-on has been handed out
func (t *MIDITimeline) Exhausted() bool {
	return t.remainingNotes <= 0
}

// NoteCount returns the number of note-on events in the score
func (t *MIDITimeline) NoteCount() int {
	return t.noteCount
}

// Tracks returns the parsed events of every track
func (t *MIDITimeline) Tracks() [][]MIDIEvent {
	return t.tracks
}

// Source returns where the score was loaded from
func (t *MIDITimeline) Source() string {
	return t.source
}

// DurationSeconds returns the time of the last event in the score
func (t *MIDITimeline) DurationSeconds() float64 {
	var last float64
	for _, events := range t.tracks {
		if n := len(events); n > 0 && events[n-1].TimeSeconds > last {
			last = events[n-1].TimeSeconds
		}
	}
	return last
}
