package model

// SimilarityRisk is the embedding-based originality assessment of a
// transcript. RiskScore is always derived from the three sub-signals.
type SimilarityRisk struct {
	RiskScore          float64   `json:"riskScore" bson:"risk_score"`
	RiskLevel          RiskLevel `json:"riskLevel" bson:"risk_level"`
	MaxSimilarity      float64   `json:"maxSimilarity" bson:"max_similarity"`
	RepetitionScore    float64   `json:"repetitionScore" bson:"repetition_score"`
	GenericScore       float64   `json:"genericScore" bson:"generic_score"`
	Indicators         []string  `json:"indicators" bson:"indicators"`
	PlagiarismDetected bool      `json:"plagiarismDetected" bson:"plagiarism_detected"`
	AnalysisOK         bool      `json:"analysisOk" bson:"analysis_ok"`
}
