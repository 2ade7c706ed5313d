package evaluate

import (
	"fmt"
	"math"
	"time"

	"interview-engine/internal/model"
)

// Cut points over per-dimension averages for the report prose.
const (
	strengthCutPoint = 4.0
	weaknessCutPoint = 3.0
)

var dimensionLabels = map[string]string{
	model.DimClarity:          "clear and easy to follow answers",
	model.DimStructure:        "well-structured narratives",
	model.DimDepthSpecificity: "depth and specificity",
	model.DimRoleFit:          "alignment with the role",
	model.DimTechnical:        "technical command",
	model.DimCommunication:    "communication",
	model.DimOwnership:        "personal ownership of outcomes",
}

var dimensionRecommendations = map[string]string{
	model.DimClarity:          "Practice stating the core point first, then expanding.",
	model.DimStructure:        "Rehearse answers in STAR order before interviews.",
	model.DimDepthSpecificity: "Prepare two or three detailed project deep-dives.",
	model.DimRoleFit:          "Study the role description and map past work to it explicitly.",
	model.DimTechnical:        "Brush up on the technical fundamentals the role demands.",
	model.DimCommunication:    "Practice explaining work to a non-specialist listener.",
	model.DimOwnership:        "Describe your individual contribution, not only the team's.",
}

// SessionReportSummarizer folds all per-answer evaluations of a session
// into the final report with banding.
type SessionReportSummarizer struct{}

// NewSessionReportSummarizer creates a summarizer.
func NewSessionReportSummarizer() *SessionReportSummarizer {
	return &SessionReportSummarizer{}
}

// Summarize computes per-dimension averages, the overall score, the 0-10
// fit score and band, and the derived prose lists. An empty evaluation list
// yields a zeroed report banded "No Hire".
func (s *SessionReportSummarizer) Summarize(sessionID string, evals []model.Evaluation) model.SessionReport {
	report := model.SessionReport{
		SessionID:         sessionID,
		AnswerCount:       len(evals),
		DimensionAverages: make(map[string]float64, len(model.RubricDimensions)),
		Strengths:         []string{},
		Weaknesses:        []string{},
		Recommendations:   []string{},
		GeneratedAt:       time.Now().UTC(),
	}
	if len(evals) == 0 {
		report.Band = model.BandNoHire
		return report
	}

	sums := make(map[string]float64, len(model.RubricDimensions))
	for _, e := range evals {
		for name, v := range e.Rubric.Dimensions() {
			sums[name] += v
		}
	}

	overall := 0.0
	for _, name := range model.RubricDimensions {
		avg := round2(sums[name] / float64(len(evals)))
		report.DimensionAverages[name] = avg
		overall += avg

		switch {
		case avg >= strengthCutPoint:
			report.Strengths = append(report.Strengths, fmt.Sprintf("Consistently strong %s", dimensionLabels[name]))
		case avg < weaknessCutPoint:
			report.Weaknesses = append(report.Weaknesses, fmt.Sprintf("Needs work on %s", dimensionLabels[name]))
			report.Recommendations = append(report.Recommendations, dimensionRecommendations[name])
		}
	}

	report.OverallScore = round2(overall / float64(len(model.RubricDimensions)))
	report.FitScore = round2(report.OverallScore * 2)
	report.Band = fitBand(report.FitScore)
	report.Voice = voiceSummary(evals)
	report.SuspicionFlagged = suspicionFlagged(evals)
	return report
}

// fitBand maps the 0-10 fit score to its categorical label.
func fitBand(score float64) string {
	switch {
	case score >= 8.5:
		return model.BandStrongFit
	case score >= 7:
		return model.BandAverageFit
	case score >= 5:
		return model.BandWeakFit
	default:
		return model.BandNoHire
	}
}

func voiceSummary(evals []model.Evaluation) *model.VoiceSummary {
	var sum model.VoiceSummary
	for _, e := range evals {
		if e.Voice == nil || !e.Voice.AnalysisOK {
			continue
		}
		sum.Samples++
		sum.AvgFluency += e.Voice.Scores.Fluency
		sum.AvgClarity += e.Voice.Scores.Clarity
		sum.AvgConfidence += e.Voice.Scores.Confidence
		sum.AvgPace += e.Voice.Scores.Pace
		sum.AvgTotal += e.Voice.Scores.Total
	}
	if sum.Samples == 0 {
		return nil
	}
	n := float64(sum.Samples)
	sum.AvgFluency = round2(sum.AvgFluency / n)
	sum.AvgClarity = round2(sum.AvgClarity / n)
	sum.AvgConfidence = round2(sum.AvgConfidence / n)
	sum.AvgPace = round2(sum.AvgPace / n)
	sum.AvgTotal = round2(sum.AvgTotal / n)
	return &sum
}

func suspicionFlagged(evals []model.Evaluation) bool {
	for _, e := range evals {
		if e.Video != nil && e.Video.Cheating.IsSuspicious {
			return true
		}
		if e.Similarity != nil && e.Similarity.PlagiarismDetected {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
