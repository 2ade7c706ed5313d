package model

import "time"

// Fit bands for the overall 0-10 interview score.
const (
	BandStrongFit  = "Strong Fit"
	BandAverageFit = "Average Fit"
	BandWeakFit    = "Weak Fit"
	BandNoHire     = "No Hire"
)

// VoiceSummary averages the voice composites over every analyzed answer.
type VoiceSummary struct {
	Samples       int     `json:"samples" bson:"samples"`
	AvgFluency    float64 `json:"avgFluency" bson:"avg_fluency"`
	AvgClarity    float64 `json:"avgClarity" bson:"avg_clarity"`
	AvgConfidence float64 `json:"avgConfidence" bson:"avg_confidence"`
	AvgPace       float64 `json:"avgPace" bson:"avg_pace"`
	AvgTotal      float64 `json:"avgTotal" bson:"avg_total"`
}

// SessionReport is the final fold over all per-answer evaluations.
type SessionReport struct {
	SessionID         string             `json:"sessionId" bson:"_id"`
	AnswerCount       int                `json:"answerCount" bson:"answer_count"`
	DimensionAverages map[string]float64 `json:"dimensionAverages" bson:"dimension_averages"`
	OverallScore      float64            `json:"overallScore" bson:"overall_score"`
	FitScore          float64            `json:"fitScore" bson:"fit_score"`
	Band              string             `json:"band" bson:"band"`
	Strengths         []string           `json:"strengths" bson:"strengths"`
	Weaknesses        []string           `json:"weaknesses" bson:"weaknesses"`
	Recommendations   []string           `json:"recommendations" bson:"recommendations"`
	Voice             *VoiceSummary      `json:"voice,omitempty" bson:"voice,omitempty"`
	SuspicionFlagged  bool               `json:"suspicionFlagged" bson:"suspicion_flagged"`
	GeneratedAt       time.Time          `json:"generatedAt" bson:"generated_at"`
}
