package model

// Per-score upper bounds for the voice composites.
const (
	VoiceFluencyMax    = 2.0
	VoiceClarityMax    = 1.5
	VoiceConfidenceMax = 1.5
	VoicePaceMax       = 1.0
)

// VoiceScores are the four composite delivery scores. Total is always their
// sum; each composite stays within its documented bound.
type VoiceScores struct {
	Fluency    float64 `json:"fluency" bson:"fluency"`
	Clarity    float64 `json:"clarity" bson:"clarity"`
	Confidence float64 `json:"confidence" bson:"confidence"`
	Pace       float64 `json:"pace" bson:"pace"`
	Total      float64 `json:"total" bson:"total"`
}

// VoiceRawMetrics are the measured features the composites are built from.
type VoiceRawMetrics struct {
	Duration       float64 `json:"duration" bson:"duration"`
	SpeechRateWPM  float64 `json:"speechRateWpm" bson:"speech_rate_wpm"`
	PitchMean      float64 `json:"pitchMean" bson:"pitch_mean"`
	PitchStd       float64 `json:"pitchStd" bson:"pitch_std"`
	PitchRange     float64 `json:"pitchRange" bson:"pitch_range"`
	EnergyMean     float64 `json:"energyMean" bson:"energy_mean"`
	EnergyStd      float64 `json:"energyStd" bson:"energy_std"`
	PauseRatio     float64 `json:"pauseRatio" bson:"pause_ratio"`
	SpeechSegments int     `json:"speechSegments" bson:"speech_segments"`
	SpeechDuration float64 `json:"speechDuration" bson:"speech_duration"`
}

// VoiceMetrics is the full voice-analysis record for one answer.
// AnalysisOK is false when the deterministic default fallback was used.
type VoiceMetrics struct {
	Scores     VoiceScores     `json:"scores" bson:"scores"`
	Raw        VoiceRawMetrics `json:"raw" bson:"raw"`
	AnalysisOK bool            `json:"analysisOk" bson:"analysis_ok"`
}
