package main

import "fmt"

// LaneID identifies one of the four lanes, left to right
type LaneID int

const (
	LaneA LaneID = iota
	LaneS
	LaneD
	LaneF
)

func (id LaneID) String() string {
	if id < 0 || int(id) >= len(laneBindings) {
		return fmt.Sprintf("LaneID(%d)", int(id))
	}
	return string(laneBindings[id].Label)
}

// Slot is one position in a lane: empty, or the pitch of a falling note
type Slot int

// EmptySlot marks a slot without a note
const EmptySlot Slot = -1

// IsEmpty reports whether the slot holds no note
func (s Slot) IsEmpty() bool {
	return s < 0
}

// Pitch returns the note held by the slot
func (s Slot) Pitch() int {
	return int(s)
}

// Lane is a single column of the board. Slot 0 sits on the hit line and
// the last slot is where new notes spawn.
type Lane struct {
	ID     LaneID
	Key    rune
	Column int // Offset of the lane inside the board, in cells
	slots  []Slot
}

// LaneBuffer is the falling-note board
type LaneBuffer struct {
	lanes  [LANE_COUNT]Lane
	height int
}

// NewLaneBuffer creates an empty board with height slots per lane
func NewLaneBuffer(height int) *LaneBuffer {
	if height < 2 {
		height = BOARD_HEIGHT
	}

	lb := &LaneBuffer{height: height}
	for i := range lb.lanes {
		binding := laneBindings[i]
		lb.lanes[i] = Lane{
			ID:     binding.Lane,
			Key:    binding.Key,
			Column: binding.Column,
			slots:  make([]Slot, height),
		}
		for j := range lb.lanes[i].slots {
			lb.lanes[i].slots[j] = EmptySlot
		}
	}
	return lb
}

// Height returns the number of slots per lane
func (lb *LaneBuffer) Height() int {
	return lb.height
}

// SpawnIndex returns the index of the topmost slot
func (lb *LaneBuffer) SpawnIndex() int {
	return lb.height - 1
}

// ShiftAll moves every note one slot closer to the hit line and empties the
// spawn slots. Whatever sat on the hit line is dropped, judged or not.
func (lb *LaneBuffer) ShiftAll() {
	for i := range lb.lanes {
		slots := lb.lanes[i].slots
		copy(slots, slots[1:])
		slots[len(slots)-1] = EmptySlot
	}
}

// PeekHit returns the slot on the hit line without changing it
func (lb *LaneBuffer) PeekHit(lane LaneID) Slot {
	return lb.lanes[lane].slots[0]
}

// Clear empties a single slot
func (lb *LaneBuffer) Clear(lane LaneID, position int) {
	if position < 0 || position >= lb.height {
		return
	}
	lb.lanes[lane].slots[position] = EmptySlot
}

// SpawnFree reports whether the lane's spawn slot is empty
func (lb *LaneBuffer) SpawnFree(lane LaneID) bool {
	return lb.lanes[lane].slots[lb.SpawnIndex()].IsEmpty()
}

// Spawn places pitch in the lane's spawn slot. It returns false if the slot
// is already taken.
func (lb *LaneBuffer) Spawn(lane LaneID, pitch int) bool {
	if !lb.SpawnFree(lane) {
		return false
	}
	lb.lanes[lane].slots[lb.SpawnIndex()] = Slot(pitch)
	return true
}

// Occupancy reports, per lane, whether the spawn slot is taken
func (lb *LaneBuffer) Occupancy() [LANE_COUNT]bool {
	var occupied [LANE_COUNT]bool
	for i := range lb.lanes {
		occupied[i] = !lb.SpawnFree(LaneID(i))
	}
	return occupied
}

// Empty reports whether no lane holds a note
func (lb *LaneBuffer) Empty() bool {
	for i := range lb.lanes {
		for _, slot := range lb.lanes[i].slots {
			if !slot.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Lane returns a lane's identity. Its slots are not exposed; use Snapshot.
func (lb *LaneBuffer) Lane(id LaneID) Lane {
	lane := lb.lanes[id]
	lane.slots = nil
	return lane
}

// Snapshot copies every lane's slots, hit line first
func (lb *LaneBuffer) Snapshot() [LANE_COUNT][]Slot {
	var out [LANE_COUNT][]Slot
	for i := range lb.lanes {
		out[i] = append([]Slot(nil), lb.lanes[i].slots...)
	}
	return out
}
