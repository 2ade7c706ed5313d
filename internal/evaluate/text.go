package evaluate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"interview-engine/internal/model"
)

// Keyword groups for STAR narrative detection. Each phrase counts once;
// a group saturates at four matches.
var starPatterns = map[string][]string{
	"situation": {
		"situation", "context", "background", "at the time", "we were",
		"the problem was", "we faced", "challenge", "when i was", "in my previous",
	},
	"task": {
		"task", "goal", "objective", "responsible for", "my role",
		"needed to", "had to", "was asked to", "my job was",
	},
	"action": {
		"action", "i did", "i implemented", "i created", "i designed",
		"i led", "i built", "we built", "approach", "decided to", "steps i took",
	},
	"result": {
		"result", "outcome", "impact", "achieved", "improved", "increased",
		"reduced", "saved", "delivered", "successfully", "in the end",
	},
}

var starComponents = []string{"situation", "task", "action", "result"}

// Quantified-evidence patterns: percentages, multipliers, money, counts,
// and explicit increase/decrease statements.
var metricPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent)`),
	regexp.MustCompile(`\d+(\.\d+)?x\b`),
	regexp.MustCompile(`\$\d+`),
	regexp.MustCompile(`(increased|reduced|decreased|improved|grew|cut)\s+(\w+\s+)?by\s+\d+`),
	regexp.MustCompile(`\d+\s*(users|customers|requests|transactions|engineers|people|servers|services)`),
	regexp.MustCompile(`\d+k\b`),
}

var tradeoffPhrases = []string{
	"trade-off", "tradeoff", "trade off", "on the other hand", "however",
	"downside", "pros and cons", "alternative", "at the cost of",
	"balance between", "weighed", "instead of",
}

var transitionWords = []string{
	"first", "second", "third", "then", "next", "finally",
	"therefore", "as a result", "additionally", "furthermore", "consequently",
}

var fillerWords = []string{"um", "uh", "like", "you know", "basically", "actually"}

var technicalTerms = []string{
	"api", "database", "microservice", "kubernetes", "docker", "cache",
	"queue", "latency", "throughput", "algorithm", "architecture",
	"deployment", "pipeline", "sql", "index", "scaling", "distributed",
	"encryption", "monitoring", "load balancer", "schema", "endpoint",
	"concurrency", "replication",
}

var leadershipTerms = []string{
	"team", "mentored", "delegated", "stakeholder", "roadmap", "hired",
	"coached", "prioritized", "vision", "alignment", "one-on-one",
}

var exampleMarkers = []string{
	"for example", "for instance", "specifically", "such as", "in particular",
}

var personalPronouns = []string{"i ", "my ", "me ", "myself"}

var actionVerbPhrases = []string{
	"i did", "i created", "i implemented", "i designed", "i led",
}

var latencyUnitPattern = regexp.MustCompile(`\d+\s*(ms|milliseconds?|seconds?|minutes?|p9\d)`)
var durationPattern = regexp.MustCompile(`\d+\s*(hours?|days?|weeks?|months?|years?)`)

var cloudTerms = []string{
	"aws", "gcp", "azure", "cloud", "ec2", "s3", "lambda", "terraform", "infra",
}

// TextRubricScorer turns a transcript into the seven-dimension rubric using
// deterministic pattern analysis. It is a pure function of its input and is
// safe to call concurrently.
type TextRubricScorer struct{}

// NewTextRubricScorer creates a new text scorer.
func NewTextRubricScorer() *TextRubricScorer {
	return &TextRubricScorer{}
}

// textSignals are the intermediate scores the rubric is built from.
type textSignals struct {
	star       map[string]float64
	starAvg    float64
	metrics    float64
	tradeoff   float64
	structure  float64
	depth      float64
	wordCount  int
	fillers    int
	hasTrans   bool
	hasExample bool
}

// Score evaluates a transcript against the rubric.
func (s *TextRubricScorer) Score(transcript string, meta model.QuestionMeta) model.RubricScore {
	text := normalizeText(transcript)
	sig := s.analyze(text)

	rubric := model.RubricScore{
		Clarity:          s.scoreClarity(sig),
		Structure:        sig.structure,
		DepthSpecificity: sig.depth,
		RoleFit:          s.scoreRoleFit(text, meta),
		Technical:        s.scoreTechnical(text),
		Communication:    s.scoreCommunication(sig),
		Ownership:        s.scoreOwnership(text, sig),
	}
	rubric.Rationale = s.buildRationale(sig, &rubric)
	rubric.ActionItems = s.buildActionItems(sig)
	rubric.ExemplarSnippet = s.exemplarSnippet(text, sig)
	return rubric
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func (s *TextRubricScorer) analyze(text string) textSignals {
	sig := textSignals{star: make(map[string]float64, len(starComponents))}
	sig.wordCount = len(strings.Fields(text))

	sum := 0.0
	for _, comp := range starComponents {
		score := clamp(0.25*float64(countPhrases(text, starPatterns[comp])), 0, 1)
		sig.star[comp] = score
		sum += score
	}
	sig.starAvg = sum / float64(len(starComponents))

	sig.metrics = metricsStep(countMatches(text, metricPatterns))
	sig.tradeoff = tradeoffStep(countPhrases(text, tradeoffPhrases))
	sig.fillers = countPhrases(text, fillerWords)
	sig.hasExample = countPhrases(text, exampleMarkers) > 0

	transitions := countPhrases(text, transitionWords)
	sig.hasTrans = transitions > 0
	structure := 0.2 * float64(transitions)
	if sig.wordCount > 100 {
		structure += 0.3
	}
	sig.structure = clamp(structure, 0, 1)

	depth := 0.1 * float64(min(countPhrases(text, technicalTerms), 5))
	if sig.hasExample {
		depth += 0.2
	}
	if durationPattern.MatchString(text) {
		depth += 0.1
	}
	sig.depth = clamp(depth, 0, 1)

	return sig
}

// Step function over quantified-evidence match counts.
func metricsStep(n int) float64 {
	switch {
	case n >= 4:
		return 1.0
	case n == 3:
		return 0.8
	case n == 2:
		return 0.6
	case n == 1:
		return 0.3
	default:
		return 0.0
	}
}

func tradeoffStep(n int) float64 {
	switch {
	case n >= 2:
		return 1.0
	case n == 1:
		return 0.5
	default:
		return 0.0
	}
}

func lengthBonus(wordCount int) float64 {
	switch {
	case wordCount > 100:
		return 0.3
	case wordCount >= 50:
		return 0.2
	case wordCount >= 20:
		return 0.1
	default:
		return 0.0
	}
}

func (s *TextRubricScorer) scoreClarity(sig textSignals) float64 {
	penalty := 0.1 * float64(sig.fillers)
	raw := sig.starAvg*0.7 + lengthBonus(sig.wordCount) - penalty
	return clamp(raw*5, 0, 5)
}

func (s *TextRubricScorer) scoreRoleFit(text string, meta model.QuestionMeta) float64 {
	score := 3.0
	switch strings.ToLower(meta.Competency) {
	case "technical":
		if countPhrases(text, technicalTerms) > 0 {
			score += 1.0
		}
	case "leadership":
		if countPhrases(text, leadershipTerms) > 0 {
			score += 1.0
		}
	}
	return clamp(score, 0, 5)
}

func (s *TextRubricScorer) scoreTechnical(text string) float64 {
	score := 0.3 * float64(countPhrases(text, technicalTerms))
	if latencyUnitPattern.MatchString(text) {
		score += 0.5
	}
	if countPhrases(text, cloudTerms) > 0 {
		score += 0.5
	}
	return clamp(score, 0, 5)
}

func (s *TextRubricScorer) scoreCommunication(sig textSignals) float64 {
	score := sig.starAvg * 3.0
	if sig.hasTrans {
		score += 0.5
	}
	if sig.hasExample {
		score += 0.5
	}
	score -= 0.2 * float64(sig.fillers)
	return clamp(score, 0, 5)
}

func (s *TextRubricScorer) scoreOwnership(text string, sig textSignals) float64 {
	padded := " " + text + " "
	score := 0.0
	for _, p := range personalPronouns {
		if strings.Contains(padded, " "+strings.TrimSpace(p)+" ") {
			score += 0.5
		}
	}
	for _, p := range actionVerbPhrases {
		if strings.Contains(text, p) {
			score += 0.3
		}
	}
	if sig.star["result"] > 0.5 {
		score += 1.0
	}
	return clamp(score, 0, 5)
}

func (s *TextRubricScorer) buildRationale(sig textSignals, rubric *model.RubricScore) string {
	var parts []string

	switch {
	case sig.starAvg > 0.7:
		parts = append(parts, "Answer follows a clear STAR structure with all narrative components present.")
	case sig.starAvg > 0.4:
		parts = append(parts, "Answer shows partial STAR structure; some narrative components are underdeveloped.")
	default:
		parts = append(parts, "Answer lacks a recognizable STAR structure.")
	}

	switch {
	case sig.metrics > 0.7:
		parts = append(parts, "Impact is well quantified with concrete metrics.")
	case sig.metrics > 0.4:
		parts = append(parts, "Some quantified evidence is present but results could be more concrete.")
	default:
		parts = append(parts, "Little quantified evidence of impact.")
	}

	switch {
	case sig.tradeoff > 0.7:
		parts = append(parts, "Trade-offs and alternatives are discussed explicitly.")
	case sig.tradeoff > 0.4:
		parts = append(parts, "Trade-offs are touched on but not explored in depth.")
	default:
		parts = append(parts, "No discussion of trade-offs or alternatives.")
	}

	switch mean := rubric.Mean(); {
	case mean > 4.0:
		parts = append(parts, "Overall a strong answer.")
	case mean > 3.0:
		parts = append(parts, "Overall a solid answer with room to improve.")
	default:
		parts = append(parts, "Overall the answer needs substantial improvement.")
	}

	return strings.Join(parts, " ")
}

func (s *TextRubricScorer) buildActionItems(sig textSignals) []string {
	items := []string{}
	if sig.starAvg < 0.7 {
		items = append(items, "Structure answers using the STAR method: situation, task, action, result.")
	}
	if sig.star["result"] < 0.5 {
		items = append(items, "Close answers with the measurable outcome of your work.")
	}
	if sig.metrics < 0.5 {
		items = append(items, "Quantify your impact with specific metrics and numbers.")
	}
	if sig.tradeoff < 0.5 {
		items = append(items, "Discuss trade-offs and the alternatives you considered.")
	}
	if sig.structure < 0.5 {
		items = append(items, "Use clear transitions to organize the flow of your answer.")
	}
	if sig.depth < 0.5 {
		items = append(items, "Add specific technical details and concrete examples.")
	}
	return items
}

// exemplarSnippet extracts the text around the strongest STAR component, or
// the opening of the transcript when nothing scored above 0.5.
func (s *TextRubricScorer) exemplarSnippet(text string, sig textSignals) string {
	best := ""
	bestScore := 0.5
	for _, comp := range starComponents {
		if sig.star[comp] > bestScore {
			bestScore = sig.star[comp]
			best = comp
		}
	}
	if best == "" {
		return truncate(text, 100)
	}

	idx := -1
	for _, phrase := range starPatterns[best] {
		if i := strings.Index(text, phrase); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	if idx < 0 {
		return truncate(text, 100)
	}
	start := runeFloor(text, max(0, idx-50))
	end := runeFloor(text, min(len(text), idx+100))
	return text[start:end]
}

func countPhrases(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, strings.TrimSpace(p)) {
			n++
		}
	}
	return n
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllString(text, -1))
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:runeFloor(s, n)]
}

// runeFloor backs i up to the nearest rune boundary, so slicing at i never
// splits a multi-byte character.
func runeFloor(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
