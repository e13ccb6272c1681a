package main

import (
	"math"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
	"github.com/sinshu/go-meltysynth/meltysynth"
	"go.uber.org/zap"
)

// AudioSink receives notes to play. Calls must return immediately; the
// sink owns playback.
type AudioSink interface {
	NoteOn(channel, pitch, velocity int)
	NoteOff(channel, pitch int)
}

// silentSink drops every note
type silentSink struct{}

func (silentSink) NoteOn(channel, pitch, velocity int) {}
func (silentSink) NoteOff(channel, pitch int)          {}

// noteSynth is a streamer the game loop can push notes into
type noteSynth interface {
	beep.Streamer
	noteOn(channel, pitch, velocity int)
	noteOff(channel, pitch int)
}

// AudioManager plays hit notes through the speaker. It uses a SoundFont
// when one can be loaded and a plain sine synth otherwise.
type AudioManager struct {
	sampleRate    beep.SampleRate
	isInitialized bool
	isPlaying     bool
	volume        float64
	synth         noteSynth
	output        *effects.Volume
	logger        *zap.Logger
}

// NewAudioManager creates a new audio manager
func NewAudioManager(logger *zap.Logger) *AudioManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudioManager{
		sampleRate: beep.SampleRate(44100),
		volume:     1.0,
		logger:     logger,
	}
}

// Initialize sets up the speaker and the synthesizer and starts streaming.
// A missing or broken SoundFont is not fatal.
func (am *AudioManager) Initialize(soundFontPath string, program int) error {
	if am.isInitialized {
		return errors.New("audio already initialized")
	}

	// Small buffer for low latency between key press and sound
	err := speaker.Init(am.sampleRate, am.sampleRate.N(time.Second/50))
	if err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}
	am.isInitialized = true

	synth, err := newSoundFontSynth(soundFontPath, am.sampleRate, program)
	if err != nil {
		am.logger.Warn("falling back to sine synth", zap.Error(err))
		am.synth = newToneSynth(am.sampleRate)
	} else {
		am.logger.Info("soundfont loaded", zap.String("path", soundFontPath), zap.Int("program", program))
		am.synth = synth
	}

	am.output = &effects.Volume{
		Streamer: am.synth,
		Base:     2,
	}
	am.applyVolume()

	speaker.Play(am.output)
	am.isPlaying = true

	am.logger.Info("audio system initialized", zap.Int("sampleRate", int(am.sampleRate)))
	return nil
}

// NoteOn starts a note without waiting for it to sound
func (am *AudioManager) NoteOn(channel, pitch, velocity int) {
	if !am.isPlaying {
		return
	}
	speaker.Lock()
	am.synth.noteOn(channel, pitch, velocity)
	speaker.Unlock()
}

// NoteOff releases a note
func (am *AudioManager) NoteOff(channel, pitch int) {
	if !am.isPlaying {
		return
	}
	speaker.Lock()
	am.synth.noteOff(channel, pitch)
	speaker.Unlock()
}

// SetVolume sets the playback volume (0.0 to 1.0)
func (am *AudioManager) SetVolume(volume float64) {
	am.volume = clamp(volume, 0, 1)
	if am.output == nil {
		return
	}
	speaker.Lock()
	am.applyVolume()
	speaker.Unlock()
}

func (am *AudioManager) applyVolume() {
	if am.volume <= 0 {
		am.output.Silent = true
		return
	}
	am.output.Silent = false
	am.output.Volume = math.Log2(am.volume)
}

// IsInitialized returns whether the speaker has been opened
func (am *AudioManager) IsInitialized() bool {
	return am.isInitialized
}

// IsPlaying returns whether the speaker is streaming
func (am *AudioManager) IsPlaying() bool {
	return am.isPlaying
}

// Cleanup stops all playback
func (am *AudioManager) Cleanup() {
	if am.isPlaying {
		speaker.Clear()
		am.isPlaying = false
		am.logger.Info("audio playback stopped")
	}
}

// soundFontSynth renders notes with a SoundFont
type soundFontSynth struct {
	synth *meltysynth.Synthesizer
	left  []float32
	right []float32
}

func newSoundFontSynth(path string, sampleRate beep.SampleRate, program int) (*soundFontSynth, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open soundfont")
	}
	defer f.Close()

	soundFont, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse soundfont %s", path)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	synth, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create synthesizer")
	}

	// Program change on the note channel
	synth.ProcessMidiMessage(NOTE_CHANNEL, 0xC0, int32(clamp(program, 0, 127)), 0)

	return &soundFontSynth{synth: synth}, nil
}

func (s *soundFontSynth) noteOn(channel, pitch, velocity int) {
	s.synth.NoteOn(int32(channel), int32(pitch), int32(velocity))
}

func (s *soundFontSynth) noteOff(channel, pitch int) {
	s.synth.NoteOff(int32(channel), int32(pitch))
}

// Stream implements beep.Streamer
func (s *soundFontSynth) Stream(samples [][2]float64) (n int, ok bool) {
	if cap(s.left) < len(samples) {
		s.left = make([]float32, len(samples))
		s.right = make([]float32, len(samples))
	}
	left := s.left[:len(samples)]
	right := s.right[:len(samples)]

	s.synth.Render(left, right)
	for i := range samples {
		samples[i][0] = float64(left[i])
		samples[i][1] = float64(right[i])
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (s *soundFontSynth) Err() error {
	return nil
}

// toneVoice is one decaying sine wave
type toneVoice struct {
	channel   int
	pitch     int
	frequency float64
	phase     float64
	amplitude float64
	released  bool
}

// toneSynth plays plucked sine tones. Voices decay on their own, so a
// missing note-off never leaves a note stuck.
type toneSynth struct {
	sampleRate   beep.SampleRate
	voices       []toneVoice
	decay        float64 // Per-sample amplitude factor while held
	releaseDecay float64 // Per-sample amplitude factor after note-off
}

func newToneSynth(sampleRate beep.SampleRate) *toneSynth {
	perSample := func(seconds float64) float64 {
		return math.Exp(-1 / (seconds * float64(sampleRate)))
	}
	return &toneSynth{
		sampleRate:   sampleRate,
		decay:        perSample(0.6),
		releaseDecay: perSample(0.05),
	}
}

func (ts *toneSynth) noteOn(channel, pitch, velocity int) {
	ts.voices = append(ts.voices, toneVoice{
		channel:   channel,
		pitch:     pitch,
		frequency: midiToFrequency(pitch),
		amplitude: 0.2 * float64(clamp(velocity, 0, 127)) / 127,
	})
}

func (ts *toneSynth) noteOff(channel, pitch int) {
	for i := range ts.voices {
		if ts.voices[i].channel == channel && ts.voices[i].pitch == pitch {
			ts.voices[i].released = true
		}
	}
}

// Stream implements beep.Streamer
func (ts *toneSynth) Stream(samples [][2]float64) (n int, ok bool) {
	step := 2 * math.Pi / float64(ts.sampleRate)

	for i := range samples {
		var sample float64
		for v := range ts.voices {
			voice := &ts.voices[v]
			sample += voice.amplitude * math.Sin(voice.phase)

			voice.phase += step * voice.frequency
			if voice.phase > 2*math.Pi {
				voice.phase -= 2 * math.Pi
			}
			if voice.released {
				voice.amplitude *= ts.releaseDecay
			} else {
				voice.amplitude *= ts.decay
			}
		}

		sample = clamp(sample, -1.0, 1.0)
		samples[i][0] = sample
		samples[i][1] = sample
	}

	// Drop voices that have faded out
	alive := ts.voices[:0]
	for _, voice := range ts.voices {
		if voice.amplitude > 1e-4 {
			alive = append(alive, voice)
		}
	}
	ts.voices = alive

	return len(samples), true
}

// Err implements beep.Streamer
func (ts *toneSynth) Err() error {
	return nil
}

// midiToFrequency converts a MIDI note number to frequency in Hz
func midiToFrequency(midiNote int) float64 {
	// A4 (MIDI note 69) = 440 Hz
	return 440.0 * math.Pow(2.0, float64(midiNote-69)/12.0)
}
