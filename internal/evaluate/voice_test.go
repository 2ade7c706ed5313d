package evaluate

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-engine/internal/model"
)

// wavBytes packs mono float64 samples into a 16-bit PCM WAV payload.
func wavBytes(t *testing.T, samples []float64, sampleRate int) []byte {
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
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

func sineWave(freq float64, seconds float64, sampleRate int, amp float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestVoiceScorerFallback(t *testing.T) {
	scorer := NewVoiceSignalScorer(nil)

	for name, payload := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not audio"),
	} {
		t.Run(name, func(t *testing.T) {
			m := scorer.Score(payload)
			assert.False(t, m.AnalysisOK)
			assert.InDelta(t, 1.0, m.Scores.Fluency, 1e-9)
			assert.InDelta(t, 0.8, m.Scores.Clarity, 1e-9)
			assert.InDelta(t, 0.8, m.Scores.Confidence, 1e-9)
			assert.InDelta(t, 0.6, m.Scores.Pace, 1e-9)
			assert.InDelta(t, 3.2, m.Scores.Total, 1e-9)
			assert.Zero(t, m.Raw)
		})
	}
}

func TestVoiceScorerSteadySpeech(t *testing.T) {
	scorer := NewVoiceSignalScorer(nil)
	payload := wavBytes(t, sineWave(150, 3, 8000, 0.5), 8000)

	m := scorer.Score(payload)
	require.True(t, m.AnalysisOK)

	// Continuous tone: no pauses, estimated rate 2.2 words/s = 132 wpm.
	assert.InDelta(t, 3.0, m.Raw.Duration, 0.01)
	assert.InDelta(t, 0.0, m.Raw.PauseRatio, 0.01)
	assert.InDelta(t, 132.0, m.Raw.SpeechRateWPM, 2.0)
	assert.InDelta(t, 150.0, m.Raw.PitchMean, 5.0)

	// rate in [120,200] and pause < 0.15.
	assert.InDelta(t, 1.8, m.Scores.Fluency, 0.01)
	assert.InDelta(t, m.Scores.Total,
		m.Scores.Fluency+m.Scores.Clarity+m.Scores.Confidence+m.Scores.Pace, 1e-9)
}

func TestVoiceScorerSilence(t *testing.T) {
	scorer := NewVoiceSignalScorer(nil)
	payload := wavBytes(t, make([]float64, 16000), 8000)

	m := scorer.Score(payload)
	require.True(t, m.AnalysisOK)

	assert.InDelta(t, 1.0, m.Raw.PauseRatio, 1e-9)
	assert.Zero(t, m.Raw.SpeechRateWPM)
	assert.Zero(t, m.Raw.SpeechSegments)

	// rate < 100 and pauseRatio > 0.4 both penalize fluency.
	assert.InDelta(t, 0.3, m.Scores.Fluency, 1e-9)
}

func TestVoiceScoreBounds(t *testing.T) {
	scorer := NewVoiceSignalScorer(nil)

	payloads := [][]byte{
		wavBytes(t, sineWave(150, 3, 8000, 0.5), 8000),
		wavBytes(t, sineWave(440, 1, 16000, 0.9), 16000),
		wavBytes(t, make([]float64, 8000), 8000),
		nil,
	}
	for _, payload := range payloads {
		m := scorer.Score(payload)
		assert.GreaterOrEqual(t, m.Scores.Fluency, 0.0)
		assert.LessOrEqual(t, m.Scores.Fluency, model.VoiceFluencyMax)
		assert.GreaterOrEqual(t, m.Scores.Clarity, 0.0)
		assert.LessOrEqual(t, m.Scores.Clarity, model.VoiceClarityMax)
		assert.GreaterOrEqual(t, m.Scores.Confidence, 0.0)
		assert.LessOrEqual(t, m.Scores.Confidence, model.VoiceConfidenceMax)
		assert.GreaterOrEqual(t, m.Scores.Pace, 0.0)
		assert.LessOrEqual(t, m.Scores.Pace, model.VoicePaceMax)
	}
}
