package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcmWAV(t *testing.T, samples []float64, sampleRate int) []byte {
	t.Helper()

	var pcm bytes.Buffer
	for _, s := range samples {
		v := int16(math.Max(-1, math.Min(1, s)) * 32767)
		require.NoError(t, binary.Write(&pcm, binary.LittleEndian, v))
	}

	var buf bytes.Buffer
	dataLen := uint32(pcm.Len())
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

func sine(freq float64, n, sampleRate int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestDecode(t *testing.T) {
	samples := sine(200, 8000, 8000, 0.5)
	clip, err := Decode(pcmWAV(t, samples, 8000))
	require.NoError(t, err)

	assert.Equal(t, 8000, clip.SampleRate)
	assert.Len(t, clip.Samples, 8000)
	assert.InDelta(t, 1.0, clip.Duration(), 1e-9)

	// First non-zero sample keeps its sign and rough magnitude.
	assert.InDelta(t, samples[10], clip.Samples[10], 0.01)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not a wav file at all"))
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.Error(t, err)
}

func TestFrameRMS(t *testing.T) {
	assert.Nil(t, FrameRMS(nil))

	// A constant signal has RMS equal to its amplitude in every frame.
	constant := make([]float64, 4096)
	for i := range constant {
		constant[i] = 0.25
	}
	for _, r := range FrameRMS(constant) {
		assert.InDelta(t, 0.25, r, 1e-9)
	}
}

func TestSplitSpeechSilence(t *testing.T) {
	assert.Nil(t, SplitSpeech(make([]float64, 8000)))
	assert.Nil(t, SplitSpeech(nil))
}

func TestSplitSpeechFindsVoicedRegion(t *testing.T) {
	// One second of silence, one of tone, one of silence.
	samples := make([]float64, 0, 24000)
	samples = append(samples, make([]float64, 8000)...)
	samples = append(samples, sine(200, 8000, 8000, 0.5)...)
	samples = append(samples, make([]float64, 8000)...)

	intervals := SplitSpeech(samples)
	require.NotEmpty(t, intervals)

	voiced := 0
	for _, iv := range intervals {
		assert.Less(t, iv.Start, iv.End)
		voiced += iv.End - iv.Start
	}
	// The voiced span is close to the one-second tone, frame-quantized.
	assert.InDelta(t, 8000, voiced, 3000)
	assert.GreaterOrEqual(t, intervals[0].Start, 8000-2048)
}

func TestTrackPitchSine(t *testing.T) {
	stats, ok := TrackPitch(sine(150, 16000, 8000, 0.5), 8000)
	require.True(t, ok)

	assert.InDelta(t, 150, stats.Mean, 5)
	assert.InDelta(t, 0, stats.Std, 2)
}

func TestTrackPitchUnvoiced(t *testing.T) {
	_, ok := TrackPitch(make([]float64, 16000), 8000)
	assert.False(t, ok)

	_, ok = TrackPitch(sine(150, 100, 8000, 0.5), 8000)
	assert.False(t, ok, "shorter than one frame")
}

func TestEnergy(t *testing.T) {
	assert.Zero(t, Energy(nil))

	e := Energy(sine(200, 8000, 8000, 0.5))
	assert.Greater(t, e.Mean, 0.2)
	assert.GreaterOrEqual(t, e.Max, e.Mean)
}
