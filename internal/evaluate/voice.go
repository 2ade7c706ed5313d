package evaluate

import (
	"go.uber.org/zap"

	"interview-engine/internal/audio"
	"interview-engine/internal/model"
)

// Pitch fallback used when per-frame tracking yields no voiced frames.
const (
	fallbackPitchMean  = 150.0
	fallbackPitchStd   = 20.0
	fallbackPitchRange = 50.0
)

// Syllable-segment to word conversion factor for the estimated speech rate.
const wordsPerSpeechSecond = 2.2

const maxSpeechRateWPM = 200.0

// VoiceSignalScorer extracts delivery metrics from raw audio and folds them
// into four bounded composite scores. Any failure degrades to a fixed
// default result; it never returns an error to the interview flow.
type VoiceSignalScorer struct {
	log *zap.Logger
}

// NewVoiceSignalScorer creates a voice scorer.
func NewVoiceSignalScorer(log *zap.Logger) *VoiceSignalScorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &VoiceSignalScorer{log: log}
}

// Score analyzes an audio payload. Empty or undecodable input returns the
// deterministic default fallback with AnalysisOK=false.
func (s *VoiceSignalScorer) Score(audioData []byte) model.VoiceMetrics {
	if len(audioData) == 0 {
		return defaultVoiceMetrics()
	}

	clip, err := audio.Decode(audioData)
	if err != nil {
		s.log.Warn("voice analysis fallback", zap.Error(err))
		return defaultVoiceMetrics()
	}

	duration := clip.Duration()
	intervals := audio.SplitSpeech(clip.Samples)

	speechDuration := 0.0
	for _, iv := range intervals {
		speechDuration += float64(iv.End-iv.Start) / float64(clip.SampleRate)
	}
	pauseRatio := 1.0
	if duration > 0 {
		pauseRatio = 1.0 - speechDuration/duration
	}

	rate := speechRateWPM(duration, speechDuration)

	pitch, ok := audio.TrackPitch(clip.Samples, clip.SampleRate)
	if !ok {
		pitch = audio.PitchStats{Mean: fallbackPitchMean, Std: fallbackPitchStd, Range: fallbackPitchRange}
	}
	energy := audio.Energy(clip.Samples)

	scores := model.VoiceScores{
		Fluency:    scoreFluency(rate, pauseRatio),
		Clarity:    scoreVoiceClarity(energy, duration),
		Confidence: scoreConfidence(pitch, energy, rate),
		Pace:       scorePace(rate, duration),
	}
	scores.Total = scores.Fluency + scores.Clarity + scores.Confidence + scores.Pace

	return model.VoiceMetrics{
		Scores: scores,
		Raw: model.VoiceRawMetrics{
			Duration:       duration,
			SpeechRateWPM:  rate,
			PitchMean:      pitch.Mean,
			PitchStd:       pitch.Std,
			PitchRange:     pitch.Range,
			EnergyMean:     energy.Mean,
			EnergyStd:      energy.Std,
			PauseRatio:     pauseRatio,
			SpeechSegments: len(intervals),
			SpeechDuration: speechDuration,
		},
		AnalysisOK: true,
	}
}

// speechRateWPM estimates words per minute from the voiced portion of the
// clip using a fixed syllable-to-word conversion, capped at 200.
func speechRateWPM(duration, speechDuration float64) float64 {
	if duration <= 0 || speechDuration <= 0 {
		return 0
	}
	estWords := wordsPerSpeechSecond * speechDuration
	wpm := estWords / duration * 60
	if wpm > maxSpeechRateWPM {
		wpm = maxSpeechRateWPM
	}
	return wpm
}

func scoreFluency(rate, pauseRatio float64) float64 {
	score := 1.0
	switch {
	case rate >= 140 && rate <= 180:
		score += 0.5
	case rate >= 120 && rate <= 200:
		score += 0.3
	case rate < 100 || rate > 220:
		score -= 0.3
	}
	switch {
	case pauseRatio < 0.15:
		score += 0.5
	case pauseRatio < 0.25:
		score += 0.3
	case pauseRatio > 0.4:
		score -= 0.4
	}
	return clamp(score, 0, model.VoiceFluencyMax)
}

func scoreVoiceClarity(energy audio.EnergyStats, duration float64) float64 {
	score := 0.5
	if energy.Std < 0.5*energy.Mean {
		score += 0.4
	}
	if energy.Mean > 0.01 {
		score += 0.3
	}
	switch {
	case duration > 10:
		score += 0.3
	case duration > 5:
		score += 0.2
	}
	return clamp(score, 0, model.VoiceClarityMax)
}

func scoreConfidence(pitch audio.PitchStats, energy audio.EnergyStats, rate float64) float64 {
	score := 0.5
	switch {
	case pitch.Std > 15:
		score += 0.4
	case pitch.Std > 10:
		score += 0.2
	}
	switch {
	case energy.Mean > 0.02:
		score += 0.3
	case energy.Mean > 0.01:
		score += 0.2
	}
	if rate >= 130 && rate <= 190 {
		score += 0.3
	}
	return clamp(score, 0, model.VoiceConfidenceMax)
}

func scorePace(rate, duration float64) float64 {
	score := 0.3
	switch {
	case rate >= 140 && rate <= 170:
		score += 0.4
	case rate >= 120 && rate <= 190:
		score += 0.3
	}
	switch {
	case duration >= 15 && duration <= 120:
		score += 0.3
	case duration >= 10 && duration <= 180:
		score += 0.2
	}
	return clamp(score, 0, model.VoicePaceMax)
}

// defaultVoiceMetrics is the documented degradation result: mid-range
// composite scores with zeroed raw metrics.
func defaultVoiceMetrics() model.VoiceMetrics {
	return model.VoiceMetrics{
		Scores: model.VoiceScores{
			Fluency:    1.0,
			Clarity:    0.8,
			Confidence: 0.8,
			Pace:       0.6,
			Total:      3.2,
		},
		AnalysisOK: false,
	}
}
