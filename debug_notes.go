package main

import (
	"go.uber.org/zap"
)

// DebugTimeline logs every event of the score, track by track, followed by
// a short summary of when each lane first receives a note
func DebugTimeline(timeline *MIDITimeline, logger *zap.Logger) {
	tracks := timeline.Tracks()
	logger.Debug("=== SCORE DEBUG ===",
		zap.String("source", timeline.Source()),
		zap.Int("tracks", len(tracks)),
		zap.Int("notes", timeline.NoteCount()),
		zap.Float64("initialBPM", timeline.InitialBPM()),
		zap.Float64("duration", timeline.DurationSeconds()),
	)

	for _, events := range tracks {
		for _, ev := range events {
			fields := []zap.Field{
				zap.Int("track", ev.Track),
				zap.Int64("tick", ev.Tick),
				zap.Float64("seconds", ev.TimeSeconds),
			}
			switch {
			case ev.IsTempoMeta:
				logger.Debug("tempo", append(fields, zap.Float64("bpm", ev.TempoBPM))...)
			case ev.IsNoteOn:
				logger.Debug("note on", append(fields,
					zap.Float64("duration", ev.DurationSeconds),
					zap.Int("channel", ev.Channel),
					zap.Int("pitch", ev.Pitch),
					zap.Int("velocity", ev.Velocity),
				)...)
			default:
				logger.Debug("note off", append(fields,
					zap.Int("channel", ev.Channel),
					zap.Int("pitch", ev.Pitch),
				)...)
			}
		}
	}

	// First note per preferred lane
	var first [LANE_COUNT]float64
	for i := range first {
		first[i] = -1
	}
	for _, events := range tracks {
		for _, ev := range events {
			if !ev.IsNoteOn {
				continue
			}
			lane := CandidateLanes(ev.Pitch)[0]
			if first[lane] < 0 || ev.TimeSeconds < first[lane] {
				first[lane] = ev.TimeSeconds
			}
		}
	}
	for i, startTime := range first {
		if startTime >= 0 {
			logger.Debug("first note for lane", zap.Stringer("lane", LaneID(i)), zap.Float64("at", startTime))
		} else {
			logger.Debug("no notes prefer lane", zap.Stringer("lane", LaneID(i)))
		}
	}
}
