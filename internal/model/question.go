package model

// QuestionMeta describes the question an answer responds to. It is produced
// by the external question writer and threaded through evaluation so scorers
// can weigh competency-specific signals.
type QuestionMeta struct {
	Competency      string   `json:"competency" bson:"competency"`
	Difficulty      string   `json:"difficulty" bson:"difficulty"`
	Text            string   `json:"text,omitempty" bson:"text,omitempty"`
	ExpectedSignals []string `json:"expectedSignals,omitempty" bson:"expected_signals,omitempty"`
	Pitfalls        []string `json:"pitfalls,omitempty" bson:"pitfalls,omitempty"`
}

// FollowUpQuestion is a probe targeting a weak area of a prior answer.
type FollowUpQuestion struct {
	Area         string   `json:"area" bson:"area"`
	Text         string   `json:"text" bson:"text"`
	ContextHints []string `json:"contextHints,omitempty" bson:"context_hints,omitempty"`
}

// FollowUpDecision is the aggregator's recommendation consumed by the stage
// controller and by the external question writer.
type FollowUpDecision struct {
	Recommended bool               `json:"recommended"`
	Reason      string             `json:"reason"`
	Areas       []string           `json:"areas,omitempty"`
	FollowUps   []FollowUpQuestion `json:"followUps,omitempty"`
}
