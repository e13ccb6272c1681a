package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickSpawnsDueNoteInPreferredLane(t *testing.T) {
	// Pitch 60 at 1000ms
	timeline := loadScore(t, []scoreEvent{tempo(0, 120), note(960, 60)})
	lanes := NewLaneBuffer(BOARD_HEIGHT)
	scheduler := NewNoteScheduler(timeline, lanes, nil)

	lanes.ShiftAll()
	scheduler.Tick(875)
	assert.True(t, lanes.Empty())

	lanes.ShiftAll()
	scheduler.Tick(1000)

	board := lanes.Snapshot()
	assert.Equal(t, Slot(60), board[LaneA][lanes.SpawnIndex()])
	assert.Equal(t, 1, scheduler.Spawned())
	assert.Equal(t, 60, scheduler.LastSpawn().Pitch)
}

func TestTickSpreadsSimultaneousNotes(t *testing.T) {
	timeline := loadScore(t, []scoreEvent{note(0, 60), note(0, 61), note(0, 62)})
	lanes := NewLaneBuffer(BOARD_HEIGHT)
	scheduler := NewNoteScheduler(timeline, lanes, nil)

	scheduler.Tick(0)

	board := lanes.Snapshot()
	top := lanes.SpawnIndex()
	assert.Equal(t, Slot(60), board[LaneA][top])
	assert.Equal(t, Slot(61), board[LaneS][top])
	assert.Equal(t, Slot(62), board[LaneD][top])
	assert.True(t, board[LaneF][top].IsEmpty())
}

func TestTickDropsNotesWithoutFreeLane(t *testing.T) {
	// All four prefer lane A and may fall back to S and D only
	timeline := loadScore(t, []scoreEvent{note(0, 60), note(0, 64), note(0, 68), note(0, 72)})
	lanes := NewLaneBuffer(BOARD_HEIGHT)
	scheduler := NewNoteScheduler(timeline, lanes, nil)

	scheduler.Tick(0)

	board := lanes.Snapshot()
	top := lanes.SpawnIndex()
	assert.Equal(t, Slot(60), board[LaneA][top])
	assert.Equal(t, Slot(64), board[LaneS][top])
	assert.Equal(t, Slot(68), board[LaneD][top])
	assert.True(t, board[LaneF][top].IsEmpty())
	assert.Equal(t, 3, scheduler.Spawned())
	assert.Equal(t, 1, scheduler.Dropped())
	assert.True(t, timeline.Exhausted())
}
