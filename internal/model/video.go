package model

// RiskLevel is a categorical band over a derived risk score.
type RiskLevel string

const (
	RiskNone    RiskLevel = "NONE"
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// CheatingRisk is the heuristic 0-100 on-camera risk assessment. The score
// and level are always derived from the frame aggregates, never set directly
// by callers.
type CheatingRisk struct {
	Level        RiskLevel `json:"level" bson:"level"`
	Score        int       `json:"score" bson:"score"`
	Indicators   []string  `json:"indicators" bson:"indicators"`
	IsSuspicious bool      `json:"isSuspicious" bson:"is_suspicious"`
}

// VideoMetrics aggregates per-frame behavior signals over a whole clip.
type VideoMetrics struct {
	DurationSeconds    float64      `json:"durationSeconds" bson:"duration_seconds"`
	TotalFrames        int          `json:"totalFrames" bson:"total_frames"`
	FacePresencePct    float64      `json:"facePresencePct" bson:"face_presence_pct"`
	MultipleFacesPct   float64      `json:"multipleFacesPct" bson:"multiple_faces_pct"`
	LookingAwayPct     float64      `json:"lookingAwayPct" bson:"looking_away_pct"`
	AvgEyeContact      float64      `json:"avgEyeContact" bson:"avg_eye_contact"`
	BlinkCount         int          `json:"blinkCount" bson:"blink_count"`
	BlinksPerMinute    float64      `json:"blinksPerMinute" bson:"blinks_per_minute"`
	HeadStability      float64      `json:"headStability" bson:"head_stability"`
	BehaviorScore      float64      `json:"behaviorScore" bson:"behavior_score"`
	Cheating           CheatingRisk `json:"cheating" bson:"cheating"`
	AnalysisOK         bool         `json:"analysisOk" bson:"analysis_ok"`
	FaceDetectedFrames int          `json:"faceDetectedFrames" bson:"face_detected_frames"`
}
