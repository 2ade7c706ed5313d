package model

import "time"

// Evaluation is the merged per-answer record: rubric and similarity always,
// voice and video only when their inputs were present.
type Evaluation struct {
	ID         string          `json:"id" bson:"_id,omitempty"`
	SessionID  string          `json:"sessionId" bson:"sessionId"`
	AnswerID   string          `json:"answerId" bson:"answerId"`
	Stage      Stage           `json:"stage" bson:"stage"`
	Competency string          `json:"competency" bson:"competency"`
	Rubric     RubricScore     `json:"rubric" bson:"rubric"`
	Voice      *VoiceMetrics   `json:"voice,omitempty" bson:"voice,omitempty"`
	Video      *VideoMetrics   `json:"video,omitempty" bson:"video,omitempty"`
	Similarity *SimilarityRisk `json:"similarity,omitempty" bson:"similarity,omitempty"`
	CreatedAt  time.Time       `json:"createdAt" bson:"createdAt"`
}
