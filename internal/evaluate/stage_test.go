package evaluate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-engine/internal/model"
)

func followUp(recommended bool) model.FollowUpDecision {
	return model.FollowUpDecision{Recommended: recommended}
}

func TestStageControllerNewState(t *testing.T) {
	c := NewStageController()
	state := c.NewState()

	assert.Equal(t, model.StageIntro, state.Current)
	assert.False(t, state.Completed)
	assert.Zero(t, state.FollowUpsInStage)
	assert.Empty(t, state.History)
}

func TestStageControllerForwardProgression(t *testing.T) {
	c := NewStageController()
	state := c.NewState()

	for i, want := range model.StageOrder[1:] {
		state = c.Advance(state, fmt.Sprintf("a%d", i), followUp(false))
		assert.Equal(t, want, state.Current)
		assert.Zero(t, state.FollowUpsInStage)
	}
	assert.False(t, state.Completed)

	// One more turn at wrap-up finishes the interview.
	state = c.Advance(state, "last", followUp(false))
	assert.True(t, state.Completed)
	assert.Len(t, state.History, len(model.StageOrder))
}

func TestStageControllerTechnicalFollowUpCap(t *testing.T) {
	c := NewStageController()
	state := model.StageState{Current: model.StageTechnical}

	state = c.Advance(state, "a1", followUp(true))
	assert.Equal(t, model.StageTechnical, state.Current)
	assert.Equal(t, 1, state.FollowUpsInStage)

	state = c.Advance(state, "a2", followUp(true))
	assert.Equal(t, model.StageTechnical, state.Current)
	assert.Equal(t, 2, state.FollowUpsInStage)

	// Cap reached: a third recommendation forces the advance.
	state = c.Advance(state, "a3", followUp(true))
	assert.Equal(t, model.StageBehavioral, state.Current)
	assert.Zero(t, state.FollowUpsInStage)
}

func TestStageControllerSingleFollowUpStages(t *testing.T) {
	c := NewStageController()

	for _, stage := range []model.Stage{model.StageIntro, model.StageHR, model.StageBehavioral, model.StageManagerial} {
		state := model.StageState{Current: stage}
		state = c.Advance(state, "a1", followUp(true))
		assert.Equal(t, stage, state.Current, "first follow-up loops")

		state = c.Advance(state, "a2", followUp(true))
		next, _ := stage.Next()
		assert.Equal(t, next, state.Current, "second recommendation advances")
	}
}

func TestStageControllerWrapUpNeverLoops(t *testing.T) {
	c := NewStageController()
	state := model.StageState{Current: model.StageWrapUp}

	state = c.Advance(state, "final", followUp(true))
	assert.True(t, state.Completed)
	assert.Equal(t, model.StageWrapUp, state.Current)
}

func TestStageControllerCompletedIsTerminal(t *testing.T) {
	c := NewStageController()
	state := model.StageState{Current: model.StageWrapUp, Completed: true}

	after := c.Advance(state, "ignored", followUp(false))
	assert.Equal(t, state, after)
}

func TestStageControllerAdvanceIsPure(t *testing.T) {
	c := NewStageController()
	state := c.NewState()

	next := c.Advance(state, "a1", followUp(false))
	assert.Empty(t, state.History)
	assert.Equal(t, model.StageIntro, state.Current)
	require.Len(t, next.History, 1)
	assert.Equal(t, model.StageIntro, next.History[0].Stage)
	assert.False(t, next.History[0].IsFollowUp)
}

func TestStageControllerHistoryMarksFollowUps(t *testing.T) {
	c := NewStageController()
	state := model.StageState{Current: model.StageTechnical}

	state = c.Advance(state, "a1", followUp(true))
	state = c.Advance(state, "a2", followUp(false))

	require.Len(t, state.History, 2)
	assert.False(t, state.History[0].IsFollowUp)
	assert.True(t, state.History[1].IsFollowUp)
}

func TestStageControllerPolicies(t *testing.T) {
	c := NewStageController()

	for _, stage := range model.StageOrder {
		policy := c.Policy(stage)
		assert.NotEmpty(t, policy.Instruction, string(stage))
		assert.NotEmpty(t, policy.Allowed, string(stage))
		assert.NotEmpty(t, policy.Forbidden, string(stage))
	}

	assert.Equal(t, 2, c.FollowUpCap(model.StageTechnical))
	assert.Equal(t, 1, c.FollowUpCap(model.StageHR))
	assert.Equal(t, 1, c.FollowUpCap(model.Stage("unknown")))
}
