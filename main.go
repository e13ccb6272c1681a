package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Sleep between polls when no key is waiting
const IDLE_POLL = time.Millisecond

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "terminal-hero [midi-file]",
		Short: "Play a MIDI file as a four-lane rhythm game in the terminal",
		Long: `Notes from the MIDI file fall down four lanes. Press A, S, D or F
(or the arrow keys) when a note reaches the line at the bottom.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.MIDIPath = args[0]
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.SoundFont, "soundfont", cfg.SoundFont, "SoundFont (.sf2) used to play hit notes")
	flags.IntVar(&cfg.Program, "program", cfg.Program, "General MIDI program for hit notes")
	flags.IntVar(&cfg.Velocity, "velocity", cfg.Velocity, "velocity of hit notes (1-127)")
	flags.Float64Var(&cfg.Volume, "volume", cfg.Volume, "playback volume (0.0-1.0)")
	flags.IntVar(&cfg.BoardHeight, "board-height", cfg.BoardHeight, "slots per lane")
	flags.Float64Var(&cfg.LookAheadMs, "look-ahead", cfg.LookAheadMs, "how early, in ms, a note may spawn")
	flags.BoolVar(&cfg.Mute, "mute", cfg.Mute, "do not open the audio device")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "dump the score to the log and show timing info")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file to write logs to")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	return cmd
}

func run(cfg Config) error {
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	logger, err := NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// The score has to load before the terminal or the speaker are touched,
	// so a bad file is reported on a normal terminal
	timeline, err := LoadTimeline(cfg.MIDIPath, logger.Named("timeline"))
	if err != nil {
		logger.Error("failed to load score", zap.Error(err))
		return err
	}
	if cfg.Debug {
		DebugTimeline(timeline, logger.Named("debug"))
	}

	var audio AudioSink = silentSink{}
	if !cfg.Mute {
		audioManager := NewAudioManager(logger.Named("audio"))
		if err := audioManager.Initialize(cfg.SoundFont, cfg.Program); err != nil {
			// Continue without audio
			logger.Warn("audio disabled", zap.Error(err))
		} else {
			audioManager.SetVolume(cfg.Volume)
			defer audioManager.Cleanup()
			audio = audioManager
		}
	}

	term, err := NewTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to initialize terminal")
	}
	defer term.Close()

	session := NewSession(timeline, audio,
		WithBoardHeight(cfg.BoardHeight),
		WithLookAhead(cfg.LookAheadMs),
		WithVelocity(cfg.Velocity),
		WithLogger(logger),
	)
	renderer := NewRenderer(term.Screen(), cfg.Debug)

	gameLoop(session, term, renderer, newMonotonicClock())

	term.Close()
	final := session.Score()
	fmt.Printf("\nThanks for playing! Score: %d, best streak: %d\n", final.Score, final.MaxStreak)
	return nil
}

// gameLoop runs until the quit key. Board updates follow the session's
// clock; keys are polled on every pass and judged as soon as they arrive.
func gameLoop(session *Session, input KeySource, renderer *Renderer, clock Clock) {
	now := clock.NowMs()
	session.Start(now)
	renderer.Draw(session.Frame())

	lastLoop := now
	for {
		now = clock.NowMs()
		renderer.SetLoopDelta(now - lastLoop)
		lastLoop = now

		if session.Update(now) {
			renderer.Draw(session.Frame())
		}

		key, ok := input.PollKey()
		if !ok {
			time.Sleep(IDLE_POLL)
			continue
		}
		if key == QUIT_KEY {
			return
		}
		if _, judged := session.HandleKey(key); judged {
			renderer.Draw(session.Frame())
		}
	}
}
