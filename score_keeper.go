package main

// ScoreState is what the scoreboard shows
type ScoreState struct {
	Score     int
	Streak    int
	MaxStreak int
	Hits      int
	Misses    int
}

// ScoreKeeper updates the score from judgments
type ScoreKeeper struct {
	state ScoreState
}

// NewScoreKeeper creates a keeper with a zero score
func NewScoreKeeper() *ScoreKeeper {
	return &ScoreKeeper{}
}

// RecordHit adds the base increment and extends the streak
func (k *ScoreKeeper) RecordHit() {
	k.state.Score += BASE_SCORE_INCREMENT
	k.state.Streak++
	k.state.Hits++

	if k.state.Streak > k.state.MaxStreak {
		k.state.MaxStreak = k.state.Streak
	}
}

// RecordMiss breaks the streak
func (k *ScoreKeeper) RecordMiss() {
	k.state.Streak = 0
	k.state.Misses++
}

// State returns the current score
func (k *ScoreKeeper) State() ScoreState {
	return k.state
}
