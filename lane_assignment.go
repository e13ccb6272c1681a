package main

// laneCandidates lists, per pitch mod 4, the lanes a new note may take in
// order of preference. Each remainder starts on its own lane and falls back
// to the next two to the right, wrapping around.
var laneCandidates = [LANE_COUNT][3]LaneID{
	{LaneA, LaneS, LaneD},
	{LaneS, LaneD, LaneF},
	{LaneD, LaneF, LaneA},
	{LaneF, LaneA, LaneS},
}

// CandidateLanes returns the lanes pitch may be placed in, most preferred
// first
func CandidateLanes(pitch int) [3]LaneID {
	remainder := ((pitch % LANE_COUNT) + LANE_COUNT) % LANE_COUNT
	return laneCandidates[remainder]
}

// AssignLane picks the first candidate lane for pitch whose spawn slot is
// free. It returns false when every candidate is taken and the note has to
// be dropped.
func AssignLane(pitch int, occupied [LANE_COUNT]bool) (LaneID, bool) {
	for _, lane := range CandidateLanes(pitch) {
		if !occupied[lane] {
			return lane, true
		}
	}
	return 0, false
}
