package model

import "time"

// Stage is one step of the fixed interview progression.
type Stage string

const (
	StageIntro      Stage = "intro"
	StageHR         Stage = "hr"
	StageTechnical  Stage = "technical"
	StageBehavioral Stage = "behavioral"
	StageManagerial Stage = "managerial"
	StageWrapUp     Stage = "wrap-up"
)

// StageOrder is the forward-only progression. Stages are never skipped
// backward; a stage is only revisited via bounded follow-up loops.
var StageOrder = []Stage{
	StageIntro,
	StageHR,
	StageTechnical,
	StageBehavioral,
	StageManagerial,
	StageWrapUp,
}

// Next returns the following stage and false once the order is exhausted.
func (s Stage) Next() (Stage, bool) {
	for i, st := range StageOrder {
		if st == s && i+1 < len(StageOrder) {
			return StageOrder[i+1], true
		}
	}
	return s, false
}

// TopicPolicy tells the external question writer what a stage may and may
// not cover.
type TopicPolicy struct {
	Instruction string   `json:"instruction"`
	Allowed     []string `json:"allowed"`
	Forbidden   []string `json:"forbidden"`
}

// Turn is one question/answer exchange recorded in stage history.
type Turn struct {
	Stage      Stage     `json:"stage" bson:"stage"`
	AnswerID   string    `json:"answerId" bson:"answer_id"`
	IsFollowUp bool      `json:"isFollowUp" bson:"is_follow_up"`
	At         time.Time `json:"at" bson:"at"`
}

// StageState is the per-session interview position. It is owned by exactly
// one session and only ever replaced through StageController.Advance; it is
// never mutated in place by callers.
type StageState struct {
	Current             Stage  `json:"current" bson:"current"`
	History             []Turn `json:"history" bson:"history"`
	FollowUpsInStage    int    `json:"followUpsInStage" bson:"follow_ups_in_stage"`
	Completed           bool   `json:"completed" bson:"completed"`
}
