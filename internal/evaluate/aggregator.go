package evaluate

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"interview-engine/internal/model"
)

// Rubric dimensions below this mark an improvement area.
const improvementThreshold = 3.5

// Default cap on follow-up questions per answer.
const DefaultMaxFollowUps = 3

// Follow-up template sets keyed by improvement area. One template per area
// is picked at random; selection is the only randomized step in evaluation.
var followUpTemplates = map[string][]string{
	model.DimClarity: {
		"Could you restate the core of your answer in one or two sentences?",
		"What is the single most important point you want me to take away from that?",
	},
	model.DimStructure: {
		"Can you walk me through that again step by step, from the starting situation to the outcome?",
		"What happened first, and how did the situation develop from there?",
	},
	model.DimDepthSpecificity: {
		"Can you go deeper into the specifics of how that worked?",
		"What concrete details can you share about the implementation?",
	},
	model.DimRoleFit: {
		"How does that experience map to the responsibilities of this role?",
		"Which parts of that work are most relevant to what we do here?",
	},
	model.DimTechnical: {
		"What technologies did you use there, and why those?",
		"Can you describe the technical design in more detail?",
	},
	model.DimCommunication: {
		"How would you explain that to a non-technical stakeholder?",
		"Can you summarize the story so far for someone who just joined the conversation?",
	},
	model.DimOwnership: {
		"What was your personal contribution, as opposed to the team's?",
		"Which of those decisions did you make yourself?",
	},
	"metrics": {
		"Can you quantify the impact of that work? Numbers, percentages, time saved?",
		"How did you measure whether it succeeded?",
	},
	"tradeoffs": {
		"What alternatives did you consider, and why did you reject them?",
		"What were the downsides of the approach you chose?",
	},
}

var generalFollowUps = []string{
	"Is there anything you would do differently if you faced that situation again?",
	"What did you learn from that experience?",
	"Can you tell me about a related situation that tested you in a different way?",
}

// EvaluationAggregator merges the per-modality results for one answer into
// a single record and derives the follow-up recommendation. The random
// source is injectable so tests can pin template selection.
type EvaluationAggregator struct {
	maxFollowUps int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEvaluationAggregator creates an aggregator. maxFollowUps <= 0 selects
// the default cap; rng may be nil for a fixed-seed source.
func NewEvaluationAggregator(maxFollowUps int, rng *rand.Rand) *EvaluationAggregator {
	if maxFollowUps <= 0 {
		maxFollowUps = DefaultMaxFollowUps
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &EvaluationAggregator{maxFollowUps: maxFollowUps, rng: rng}
}

// Aggregate merges modality results into an evaluation and decides whether
// a follow-up is warranted.
func (a *EvaluationAggregator) Aggregate(
	answer *model.Answer,
	rubric model.RubricScore,
	voice *model.VoiceMetrics,
	video *model.VideoMetrics,
	similarity *model.SimilarityRisk,
) (model.Evaluation, model.FollowUpDecision) {
	eval := model.Evaluation{
		SessionID:  answer.SessionID,
		AnswerID:   answer.ID,
		Competency: answer.QuestionMeta.Competency,
		Rubric:     rubric,
		Voice:      voice,
		Video:      video,
		Similarity: similarity,
	}

	areas := a.improvementAreas(rubric)
	decision := model.FollowUpDecision{
		Recommended: len(areas) > 0,
		Areas:       areas,
	}
	if decision.Recommended {
		decision.Reason = fmt.Sprintf("weak areas: %s", strings.Join(areas, ", "))
		decision.FollowUps = a.followUpsFor(areas, answer.QuestionMeta)
	} else {
		decision.Reason = "all rubric dimensions above threshold"
		decision.FollowUps = []model.FollowUpQuestion{a.generalFollowUp(answer.QuestionMeta)}
	}
	return eval, decision
}

// improvementAreas collects rubric dimensions below threshold plus the
// metrics/trade-off gaps surfaced by the scorer's action items, capped at
// the configured maximum.
func (a *EvaluationAggregator) improvementAreas(rubric model.RubricScore) []string {
	var areas []string
	dims := rubric.Dimensions()
	for _, name := range model.RubricDimensions {
		if dims[name] < improvementThreshold {
			areas = append(areas, name)
		}
	}
	for _, item := range rubric.ActionItems {
		lower := strings.ToLower(item)
		if strings.Contains(lower, "quantify") {
			areas = append(areas, "metrics")
		}
		if strings.Contains(lower, "trade-off") {
			areas = append(areas, "tradeoffs")
		}
	}
	if len(areas) > a.maxFollowUps {
		areas = areas[:a.maxFollowUps]
	}
	return areas
}

func (a *EvaluationAggregator) followUpsFor(areas []string, meta model.QuestionMeta) []model.FollowUpQuestion {
	followUps := make([]model.FollowUpQuestion, 0, len(areas))
	for _, area := range areas {
		templates, ok := followUpTemplates[area]
		if !ok {
			templates = generalFollowUps
		}
		followUps = append(followUps, model.FollowUpQuestion{
			Area:         area,
			Text:         a.pick(templates),
			ContextHints: contextHints(area, meta),
		})
	}
	return followUps
}

func (a *EvaluationAggregator) generalFollowUp(meta model.QuestionMeta) model.FollowUpQuestion {
	return model.FollowUpQuestion{
		Area:         "general",
		Text:         a.pick(generalFollowUps),
		ContextHints: contextHints("general", meta),
	}
}

func (a *EvaluationAggregator) pick(templates []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return templates[a.rng.Intn(len(templates))]
}

func contextHints(area string, meta model.QuestionMeta) []string {
	hints := []string{fmt.Sprintf("probe the %s of the previous answer", area)}
	if meta.Competency != "" {
		hints = append(hints, fmt.Sprintf("stay within the %s competency", meta.Competency))
	}
	if len(meta.Pitfalls) > 0 {
		hints = append(hints, fmt.Sprintf("watch for: %s", strings.Join(meta.Pitfalls, "; ")))
	}
	return hints
}
