package evaluate

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"interview-engine/internal/embedding"
	"interview-engine/internal/model"
)

// Risk-score weights over the three sub-signals.
const (
	similarityWeight = 0.5
	repetitionWeight = 0.3
	genericWeight    = 0.2
)

const minAnalyzableChars = 10

// Generic interview-answer templates scanned as the default reference set.
var commonResponses = []string{
	"I am a passionate software engineer with experience in backend development",
	"I have strong problem-solving skills and work well in teams",
	"I am excited about this opportunity and believe I would be a great fit",
	"My experience includes working with various technologies and frameworks",
	"I enjoy learning new technologies and staying up to date with industry trends",
	"I have worked on several projects that demonstrate my technical abilities",
	"I am a quick learner and adapt well to new environments",
	"I believe my skills and experience make me an ideal candidate",
	"I am passionate about technology and love solving complex problems",
	"I have experience working in agile development environments",
}

var genericPhrases = []string{
	"passionate about",
	"strong background in",
	"extensive experience",
	"proven track record",
	"excellent communication skills",
	"team player",
	"quick learner",
	"detail oriented",
	"results driven",
	"self motivated",
}

var similarityFillerPattern = regexp.MustCompile(`\b(um|uh|like|you know|basically|actually)\b`)

// SemanticSimilarityDetector scores transcript originality against a
// reference set using the injected embedder. The embedder is disabled for
// the remainder of the process after its first failure, logged once.
type SemanticSimilarityDetector struct {
	embedder   embedding.Embedder
	references []string
	log        *zap.Logger

	mu       sync.Mutex
	disabled bool
	logOnce  sync.Once
}

// NewSemanticSimilarityDetector creates a detector. A nil or empty
// reference set falls back to the built-in generic templates.
func NewSemanticSimilarityDetector(embedder embedding.Embedder, references []string, log *zap.Logger) *SemanticSimilarityDetector {
	if len(references) == 0 {
		references = commonResponses
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SemanticSimilarityDetector{
		embedder:   embedder,
		references: references,
		log:        log,
	}
}

// Detect scores the transcript. Missing embedder, too-short text, or an
// embedding failure all return the structured unavailable result.
func (d *SemanticSimilarityDetector) Detect(ctx context.Context, text string) model.SimilarityRisk {
	if d.embedder == nil || d.isDisabled() || len(strings.TrimSpace(text)) < minAnalyzableChars {
		return unavailableSimilarity()
	}

	cleaned := cleanForSimilarity(text)

	batch := append([]string{cleaned}, d.references...)
	vectors, err := d.embedder.Embed(ctx, batch)
	if err != nil || len(vectors) != len(batch) {
		d.disable(err)
		return unavailableSimilarity()
	}

	maxSim := 0.0
	for _, ref := range vectors[1:] {
		if sim := embedding.Cosine(vectors[0], ref); sim > maxSim {
			maxSim = sim
		}
	}

	repetition := repetitionScore(cleaned)
	generic := genericScore(cleaned)
	risk := clamp(maxSim*similarityWeight+repetition*repetitionWeight+generic*genericWeight, 0, 1)

	return model.SimilarityRisk{
		RiskScore:          risk,
		RiskLevel:          similarityRiskLevel(risk),
		MaxSimilarity:      maxSim,
		RepetitionScore:    repetition,
		GenericScore:       generic,
		Indicators:         similarityIndicators(maxSim, repetition, generic),
		PlagiarismDetected: risk >= 0.7,
		AnalysisOK:         true,
	}
}

func (d *SemanticSimilarityDetector) isDisabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disabled
}

func (d *SemanticSimilarityDetector) disable(err error) {
	d.mu.Lock()
	d.disabled = true
	d.mu.Unlock()
	d.logOnce.Do(func() {
		d.log.Warn("similarity detector disabled", zap.Error(err))
	})
}

func cleanForSimilarity(text string) string {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	text = similarityFillerPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// repetitionScore is repeated content words over total content words
// (length > 3), 0 when fewer than five words total.
func repetitionScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) < 5 {
		return 0
	}
	counts := make(map[string]int)
	total := 0
	for _, w := range words {
		if len(w) > 3 {
			counts[w]++
			total++
		}
	}
	if total == 0 {
		return 0
	}
	repeated := 0
	for _, c := range counts {
		if c > 1 {
			repeated += c - 1
		}
	}
	return float64(repeated) / float64(total)
}

func genericScore(text string) float64 {
	found := 0
	for _, p := range genericPhrases {
		if strings.Contains(text, p) {
			found++
		}
	}
	return clamp(float64(found)/3.0, 0, 1)
}

func similarityRiskLevel(risk float64) model.RiskLevel {
	switch {
	case risk >= 0.8:
		return model.RiskHigh
	case risk >= 0.6:
		return model.RiskMedium
	case risk >= 0.3:
		return model.RiskLow
	default:
		return model.RiskNone
	}
}

func similarityIndicators(similarity, repetition, generic float64) []string {
	var indicators []string
	switch {
	case similarity > 0.7:
		indicators = append(indicators, "High semantic similarity to common responses")
	case similarity > 0.5:
		indicators = append(indicators, "Moderate similarity to template answers")
	}
	switch {
	case repetition > 0.4:
		indicators = append(indicators, "Excessive word repetition detected")
	case repetition > 0.2:
		indicators = append(indicators, "Some repetitive patterns found")
	}
	switch {
	case generic > 0.6:
		indicators = append(indicators, "Multiple generic phrases detected")
	case generic > 0.3:
		indicators = append(indicators, "Some template phrases found")
	}
	if len(indicators) == 0 {
		indicators = append(indicators, "No significant plagiarism indicators")
	}
	return indicators
}

func unavailableSimilarity() model.SimilarityRisk {
	return model.SimilarityRisk{
		RiskScore:  0.0,
		RiskLevel:  model.RiskUnknown,
		Indicators: []string{"Analysis unavailable"},
		AnalysisOK: false,
	}
}
