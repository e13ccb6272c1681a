package main

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// Clock provides monotonic time in milliseconds
type Clock interface {
	NowMs() float64
}

type monotonicClock struct {
	start time.Time
}

func newMonotonicClock() *monotonicClock {
	return &monotonicClock{start: time.Now()}
}

// NowMs returns milliseconds since the clock was created
func (c *monotonicClock) NowMs() float64 {
	return float64(time.Since(c.start).Microseconds()) / 1000
}

// KeySource is polled by the game loop and must never block
type KeySource interface {
	PollKey() (rune, bool)
}

// Terminal owns the tcell screen and turns its events into key presses
type Terminal struct {
	screen    tcell.Screen
	events    chan tcell.Event
	closeOnce sync.Once
}

// NewTerminal takes over the terminal
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create screen")
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize screen")
	}
	return newTerminalWithScreen(screen), nil
}

// newTerminalWithScreen wraps an initialised screen and starts reading its
// events
func newTerminalWithScreen(screen tcell.Screen) *Terminal {
	screen.HideCursor()
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	t := &Terminal{
		screen: screen,
		events: make(chan tcell.Event, 64),
	}

	// PollEvent blocks, so it gets its own goroutine. It returns nil once
	// the screen is finalised.
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case t.events <- ev:
			default:
			}
		}
	}()

	return t
}

// PollKey returns the next pending key press, or false immediately if there
// is none. Arrow keys come back as their lane's letter; Escape and Ctrl-C
// come back as the quit key.
func (t *Terminal) PollKey() (rune, bool) {
	for {
		select {
		case ev := <-t.events:
			if key, ok := t.translate(ev); ok {
				return key, true
			}
		default:
			return 0, false
		}
	}
}

func (t *Terminal) translate(ev tcell.Event) (rune, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyRune:
			return ev.Rune(), true
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return QUIT_KEY, true
		}
		for _, binding := range laneBindings {
			if binding.Arrow == ev.Key() {
				return binding.Key, true
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return 0, false
}

// Screen returns the underlying screen for drawing
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Close gives the terminal back. It is safe to call more than once.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		t.screen.Clear()
		t.screen.Fini()
	})
}
