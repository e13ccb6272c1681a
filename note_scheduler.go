package main

import (
	"go.uber.org/zap"
)

// NoteScheduler moves due notes from the timeline onto the board
type NoteScheduler struct {
	timeline *MIDITimeline
	lanes    *LaneBuffer
	logger   *zap.Logger

	spawned   int
	dropped   int
	lastSpawn MIDIEvent
}

// NewNoteScheduler creates a scheduler feeding lanes from timeline
func NewNoteScheduler(timeline *MIDITimeline, lanes *LaneBuffer, logger *zap.Logger) *NoteScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteScheduler{
		timeline: timeline,
		lanes:    lanes,
		logger:   logger,
	}
}

// Tick spawns every note due at nowMs. It runs once per approved board
// update, after the board has shifted. Notes with no free lane are dropped.
func (s *NoteScheduler) Tick(nowMs float64) {
	for ev := range s.timeline.NextDueEvents(nowMs) {
		lane, ok := AssignLane(ev.Pitch, s.lanes.Occupancy())
		if !ok {
			s.dropped++
			s.logger.Debug("no free lane, note dropped",
				zap.Int("pitch", ev.Pitch),
				zap.Float64("at", ev.TimeSeconds),
			)
			continue
		}

		s.lanes.Spawn(lane, ev.Pitch)
		s.spawned++
		s.lastSpawn = ev
		s.logger.Debug("note spawned",
			zap.Int("pitch", ev.Pitch),
			zap.Stringer("lane", lane),
			zap.Float64("at", ev.TimeSeconds),
			zap.Float64("now", nowMs/1000),
		)
	}
}

// Spawned returns how many notes reached the board
func (s *NoteScheduler) Spawned() int {
	return s.spawned
}

// Dropped returns how many due notes found no free lane
func (s *NoteScheduler) Dropped() int {
	return s.dropped
}

// LastSpawn returns the most recent event placed on the board
func (s *NoteScheduler) LastSpawn() MIDIEvent {
	return s.lastSpawn
}
