package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Board layout, in terminal cells
const (
	BOARD_START_X = 2
	BOARD_START_Y = 2
	BOARD_WIDTH   = 13
	PANEL_GAP     = 4
)

var guitarArt = []string{
	"                           ____         ___",
	"                         ,' __ ``.._..''   `.",
	"                         `.`. ``-.___..-.    :",
	" ,---..____________________>/          _,'_  |",
	" `-:._,:_|_|_|_|_|_|_|_|_|_|_|.:SSt:.:|-|(/  |",
	"                        _.' )   ____  '-'    ;",
	"                       (    `-''  __``-'    /",
	"                        ``-....-''  ``-..-''",
}

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Renderer handles all drawing operations
type Renderer struct {
	screen      tcell.Screen
	debug       bool
	loopDeltaMs float64
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen, debug bool) *Renderer {
	return &Renderer{
		screen: screen,
		debug:  debug,
	}
}

// SetLoopDelta records the last main loop duration for the debug panel
func (r *Renderer) SetLoopDelta(ms float64) {
	r.loopDeltaMs = ms
}

// Draw renders the entire game
func (r *Renderer) Draw(frame Frame) {
	r.screen.Clear()

	height := len(frame.Lanes[0])
	finishLine := BOARD_START_Y + height - 1

	r.drawBoard(finishLine)
	r.drawLanes(finishLine)
	r.drawNotes(frame, finishLine)
	r.drawScoreboard(frame.Score)
	r.drawArt(finishLine + 2)

	if r.debug {
		r.drawDebug(frame, finishLine+2+len(guitarArt)+1)
	}
	if frame.State == StateGameOver {
		r.drawGameOver(frame.Score)
	}

	r.screen.Show()
}

// drawBoard draws the border around the lanes. The bottom edge is the hit
// line.
func (r *Renderer) drawBoard(finishLine int) {
	left := BOARD_START_X
	right := BOARD_START_X + BOARD_WIDTH
	top := BOARD_START_Y - 1

	r.screen.SetContent(left, top, tcell.RuneULCorner, nil, styleBorder)
	r.screen.SetContent(right, top, tcell.RuneURCorner, nil, styleBorder)
	r.screen.SetContent(left, finishLine, tcell.RuneLLCorner, nil, styleBorder)
	r.screen.SetContent(right, finishLine, tcell.RuneLRCorner, nil, styleBorder)

	for x := left + 1; x < right; x++ {
		r.screen.SetContent(x, top, tcell.RuneHLine, nil, styleBorder)
		r.screen.SetContent(x, finishLine, tcell.RuneHLine, nil, styleBorder)
	}
	for y := BOARD_START_Y; y < finishLine; y++ {
		r.screen.SetContent(left, y, tcell.RuneVLine, nil, styleBorder)
		r.screen.SetContent(right, y, tcell.RuneVLine, nil, styleBorder)
	}

	// Gaps in the top edge where notes fall in
	for _, binding := range laneBindings {
		r.screen.SetContent(left+binding.Column, top, ' ', nil, styleDefault)
	}
}

// drawLanes draws each lane's hit marker and key label
func (r *Renderer) drawLanes(finishLine int) {
	for _, binding := range laneBindings {
		x := BOARD_START_X + binding.Column
		style := tcell.StyleDefault.Foreground(binding.Color)
		r.screen.SetContent(x, finishLine, tcell.RuneDiamond, nil, style.Dim(true))
		r.screen.SetContent(x, finishLine+1, binding.Label, nil, style)
	}
}

// drawNotes draws every falling note. Slot 0 sits on the hit line.
func (r *Renderer) drawNotes(frame Frame, finishLine int) {
	for i, slots := range frame.Lanes {
		binding := laneBindings[i]
		x := BOARD_START_X + binding.Column
		style := tcell.StyleDefault.Foreground(binding.Color).Bold(true)

		for position, slot := range slots {
			if slot.IsEmpty() {
				continue
			}
			r.screen.SetContent(x, finishLine-position, tcell.RuneDiamond, nil, style)
		}
	}
}

func (r *Renderer) drawScoreboard(score ScoreState) {
	x := BOARD_START_X + BOARD_WIDTH + PANEL_GAP
	r.drawText(x, BOARD_START_Y, styleBorder, fmt.Sprintf("Score: %d", score.Score))
	r.drawText(x, BOARD_START_Y+1, styleBorder, fmt.Sprintf("Streak: %d", score.Streak))
	r.drawText(x, BOARD_START_Y+2, styleDim, fmt.Sprintf("Best streak: %d", score.MaxStreak))
	r.drawText(x, BOARD_START_Y+4, styleDim, "Keys: A S D F or arrows")
	r.drawText(x, BOARD_START_Y+5, styleDim, "Q to quit")
}

func (r *Renderer) drawArt(y int) {
	for i, line := range guitarArt {
		r.drawText(0, y+i, styleDefault, line)
	}
}

func (r *Renderer) drawDebug(frame Frame, y int) {
	last := frame.LastSpawn
	lines := []string{
		fmt.Sprintf("ms per loop:\t%.3f", r.loopDeltaMs),
		fmt.Sprintf("Now in ms:\t%.0f", frame.SongMs),
		fmt.Sprintf("BPM:\t\t%.2f (%.1f ms/update)", frame.CurrentBPM, frame.MsPerUpdate),
		fmt.Sprintf("Updates:\t%d", frame.Updates),
		fmt.Sprintf("Last note:\t%d at %.3fs", last.Pitch, last.TimeSeconds),
		fmt.Sprintf("Spawned:\t%d dropped: %d", frame.Spawned, frame.Dropped),
	}
	for i, line := range lines {
		r.drawText(0, y+i, styleDim, line)
	}
}

// drawGameOver draws the final score next to the board
func (r *Renderer) drawGameOver(score ScoreState) {
	x := BOARD_START_X + BOARD_WIDTH + PANEL_GAP
	y := BOARD_START_Y + 7

	r.drawText(x, y, styleTitle, "Song over!")
	stats := []string{
		fmt.Sprintf("Final score: %d", score.Score),
		fmt.Sprintf("Max streak: %d", score.MaxStreak),
		fmt.Sprintf("Hits: %d", score.Hits),
		fmt.Sprintf("Misses: %d", score.Misses),
	}
	for i, stat := range stats {
		r.drawText(x, y+2+i, styleBorder, stat)
	}
	r.drawText(x, y+3+len(stats), styleDim, "Press Q to quit")
}

// drawText writes s starting at x, y. Tabs advance to the next multiple of
// eight columns.
func (r *Renderer) drawText(x, y int, style tcell.Style, s string) {
	col := x
	for _, ch := range s {
		if ch == '\t' {
			col += 8 - (col-x)%8
			continue
		}
		r.screen.SetContent(col, y, ch, nil, style)
		col++
	}
}
