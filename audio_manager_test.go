package main

import (
	"math"
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peak(samples [][2]float64) float64 {
	var loudest float64
	for _, s := range samples {
		loudest = math.Max(loudest, math.Abs(s[0]))
	}
	return loudest
}

func TestToneSynthIsSilentWithoutNotes(t *testing.T) {
	synth := newToneSynth(beep.SampleRate(44100))
	samples := make([][2]float64, 512)

	n, ok := synth.Stream(samples)

	assert.Equal(t, 512, n)
	assert.True(t, ok)
	assert.Zero(t, peak(samples))
	assert.NoError(t, synth.Err())
}

func TestToneSynthPlaysAndReleasesNotes(t *testing.T) {
	synth := newToneSynth(beep.SampleRate(44100))
	samples := make([][2]float64, 512)

	synth.noteOn(NOTE_CHANNEL, 69, NOTE_VELOCITY)
	synth.Stream(samples)
	require.Greater(t, peak(samples), 0.0)
	assert.LessOrEqual(t, peak(samples), 1.0)
	for _, s := range samples {
		assert.Equal(t, s[0], s[1])
	}

	synth.noteOff(NOTE_CHANNEL, 69)
	for i := 0; i < 100; i++ {
		synth.Stream(samples)
	}
	assert.Empty(t, synth.voices)
}

func TestToneSynthVoicesFadeOnTheirOwn(t *testing.T) {
	synth := newToneSynth(beep.SampleRate(44100))
	samples := make([][2]float64, 4410)

	synth.noteOn(NOTE_CHANNEL, 60, 127)
	for i := 0; i < 100; i++ {
		synth.Stream(samples)
	}

	assert.Empty(t, synth.voices)
}

func TestMidiToFrequency(t *testing.T) {
	assert.InDelta(t, 440.0, midiToFrequency(69), 1e-9)
	assert.InDelta(t, 880.0, midiToFrequency(81), 1e-9)
	assert.InDelta(t, 261.63, midiToFrequency(60), 0.01)
}

func TestAudioManagerBeforeInitialize(t *testing.T) {
	am := NewAudioManager(nil)

	assert.NotPanics(t, func() {
		am.NoteOn(NOTE_CHANNEL, 60, NOTE_VELOCITY)
		am.NoteOff(NOTE_CHANNEL, 60)
		am.Cleanup()
	})
	assert.False(t, am.IsPlaying())
	assert.False(t, am.IsInitialized())

	am.SetVolume(3)
	assert.Equal(t, 1.0, am.volume)
	am.SetVolume(-1)
	assert.Equal(t, 0.0, am.volume)
}

func TestInitializeRefusesSecondCall(t *testing.T) {
	// The speaker can only be opened once per process
	am := NewAudioManager(nil)
	am.isInitialized = true

	err := am.Initialize("does-not-exist.sf2", 0)

	assert.Error(t, err)
	assert.False(t, am.IsPlaying())
}

func TestSoundFontSynthRejectsMissingFile(t *testing.T) {
	_, err := newSoundFontSynth("does-not-exist.sf2", beep.SampleRate(44100), 0)
	assert.Error(t, err)
}
