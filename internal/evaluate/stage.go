package evaluate

import (
	"time"

	"interview-engine/internal/model"
)

// Per-stage follow-up caps. Technical answers may be probed twice; every
// other stage allows a single follow-up before forced advance.
var stageFollowUpCaps = map[model.Stage]int{
	model.StageIntro:      1,
	model.StageHR:         1,
	model.StageTechnical:  2,
	model.StageBehavioral: 1,
	model.StageManagerial: 1,
	model.StageWrapUp:     1,
}

// Topic policies consumed by the external question writer.
var stagePolicies = map[model.Stage]model.TopicPolicy{
	model.StageIntro: {
		Instruction: "Start with CV highlights, small talk, and ice-breaker questions.",
		Allowed:     []string{"background", "career summary", "motivation for applying"},
		Forbidden:   []string{"deep technical drills", "compensation", "hypothetical crises"},
	},
	model.StageHR: {
		Instruction: "Ask about motivations, culture fit, strengths, and weaknesses.",
		Allowed:     []string{"motivation", "culture fit", "strengths", "weaknesses", "career goals"},
		Forbidden:   []string{"system design", "coding specifics", "people-management scenarios"},
	},
	model.StageTechnical: {
		Instruction: "Ask role-specific technical questions from JD and CV.",
		Allowed:     []string{"system design", "technologies used", "debugging", "architecture decisions"},
		Forbidden:   []string{"salary", "personal life", "behavioral conflict stories"},
	},
	model.StageBehavioral: {
		Instruction: "Ask STAR-based behavioral questions (Situation, Task, Action, Result).",
		Allowed:     []string{"conflict resolution", "deadlines", "teamwork", "failure and learning"},
		Forbidden:   []string{"pure technical trivia", "brainteasers"},
	},
	model.StageManagerial: {
		Instruction: "Ask leadership, decision-making, and conflict resolution scenarios.",
		Allowed:     []string{"leadership", "delegation", "stakeholder management", "prioritization"},
		Forbidden:   []string{"low-level implementation details"},
	},
	model.StageWrapUp: {
		Instruction: "Ask final closing questions, candidate queries, and wrap-up.",
		Allowed:     []string{"candidate questions", "next steps", "closing remarks"},
		Forbidden:   []string{"new evaluation topics"},
	},
}

// StageController is the bounded state machine over the fixed stage order.
// Advance is pure: it returns a new state and never mutates its input, so
// the caller keeps the single-writer discipline.
type StageController struct{}

// NewStageController creates a stage controller.
func NewStageController() *StageController {
	return &StageController{}
}

// NewState returns the initial stage state for a fresh session.
func (c *StageController) NewState() model.StageState {
	return model.StageState{Current: model.StageIntro}
}

// Policy returns the topic policy for a stage.
func (c *StageController) Policy(stage model.Stage) model.TopicPolicy {
	return stagePolicies[stage]
}

// FollowUpCap returns the per-stage follow-up bound.
func (c *StageController) FollowUpCap(stage model.Stage) int {
	if n, ok := stageFollowUpCaps[stage]; ok {
		return n
	}
	return 1
}

// Advance applies one evaluated turn to the state. The interview loops in
// the current stage while a follow-up is recommended and the per-stage cap
// has headroom; otherwise it moves forward. Wrap-up never loops: its turn
// completes the interview. Completed states are returned unchanged.
func (c *StageController) Advance(state model.StageState, answerID string, decision model.FollowUpDecision) model.StageState {
	if state.Completed {
		return state
	}

	next := state
	next.History = append(append([]model.Turn(nil), state.History...), model.Turn{
		Stage:      state.Current,
		AnswerID:   answerID,
		IsFollowUp: state.FollowUpsInStage > 0,
		At:         time.Now().UTC(),
	})

	followUp := decision.Recommended &&
		state.Current != model.StageWrapUp &&
		state.FollowUpsInStage < c.FollowUpCap(state.Current)

	if followUp {
		next.FollowUpsInStage++
		return next
	}

	if nextStage, ok := state.Current.Next(); ok {
		next.Current = nextStage
		next.FollowUpsInStage = 0
	} else {
		next.Completed = true
	}
	return next
}
