package evaluate

import (
	"math"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"interview-engine/internal/model"
	"interview-engine/internal/vision"
)

const (
	// Blink detected when EAR crosses downward through this value.
	blinkEARThreshold = 0.2

	// Frames with an eye-contact score below this count as looking away.
	lookingAwayThreshold = 0.5

	// Iris deviation from eye center beyond this means fully off-camera.
	maxIrisDeviation = 0.15

	defaultFramesPerSecond = 15.0
)

// VideoBehaviorAnalyzer walks a clip frame by frame, reading face landmarks
// through the injected detector, and aggregates behavior metrics plus a
// cheating-risk assessment. Detector failure on a frame counts the frame as
// no-face rather than aborting the clip.
type VideoBehaviorAnalyzer struct {
	detector vision.Detector
	fps      float64
	log      *zap.Logger
}

// NewVideoBehaviorAnalyzer creates a video analyzer. fps <= 0 selects the
// default frame rate used to derive clip duration.
func NewVideoBehaviorAnalyzer(detector vision.Detector, fps float64, log *zap.Logger) *VideoBehaviorAnalyzer {
	if fps <= 0 {
		fps = defaultFramesPerSecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &VideoBehaviorAnalyzer{detector: detector, fps: fps, log: log}
}

type headPose struct {
	yaw   float64
	pitch float64
}

// Analyze processes a clip payload. A missing detector or an unreadable
// payload degrades to an empty result with AnalysisOK=false.
func (a *VideoBehaviorAnalyzer) Analyze(videoData []byte) model.VideoMetrics {
	if a.detector == nil {
		return model.VideoMetrics{AnalysisOK: false, HeadStability: 1.0, Cheating: noRisk()}
	}
	frames, err := vision.SplitFrames(videoData)
	if err != nil {
		a.log.Warn("video analysis fallback", zap.Error(err))
		return model.VideoMetrics{AnalysisOK: false, HeadStability: 1.0, Cheating: noRisk()}
	}

	var (
		faceFrames     int
		multiFrames    int
		lookingAway    int
		blinks         int
		eyeContact     []float64
		poses          []headPose
		prevEAR        float64
		prevEARValid   bool
	)

	for _, frame := range frames {
		faces, err := a.detector.Detect(frame)
		if err != nil || len(faces) == 0 {
			prevEARValid = false
			continue
		}
		faceFrames++
		if len(faces) > 1 {
			multiFrames++
		}

		face := faces[0]
		score := eyeContactScore(face)
		eyeContact = append(eyeContact, score)
		if score < lookingAwayThreshold {
			lookingAway++
		}

		ear := eyeAspectRatio(face.Left)
		if prevEARValid && prevEAR > blinkEARThreshold && ear < blinkEARThreshold {
			blinks++
		}
		prevEAR = ear
		prevEARValid = true

		poses = append(poses, poseOf(face))
	}

	total := len(frames)
	duration := float64(total) / a.fps

	facePresence := percent(faceFrames, total)
	multiPct := percent(multiFrames, total)
	lookingPct := percent(lookingAway, faceFrames)
	avgEye := 0.0
	if len(eyeContact) > 0 {
		avgEye, _ = stats.Mean(eyeContact)
	}
	blinkRate := 0.0
	if duration > 0 {
		blinkRate = float64(blinks) / duration * 60
	}
	stability := headStability(poses)
	risk := detectCheating(multiPct, lookingPct, stability, facePresence)

	return model.VideoMetrics{
		DurationSeconds:    duration,
		TotalFrames:        total,
		FacePresencePct:    facePresence,
		MultipleFacesPct:   multiPct,
		LookingAwayPct:     lookingPct,
		AvgEyeContact:      avgEye,
		BlinkCount:         blinks,
		BlinksPerMinute:    blinkRate,
		HeadStability:      stability,
		BehaviorScore:      behaviorScore(avgEye, stability, facePresence, risk.Score),
		Cheating:           risk,
		AnalysisOK:         true,
		FaceDetectedFrames: faceFrames,
	}
}

// eyeContactScore maps iris position within the eye corners to [0,1]:
// 1.0 centered on camera, 0.0 fully off-center, averaged across both eyes.
func eyeContactScore(face vision.Face) float64 {
	left, lok := irisDeviation(face.Left)
	right, rok := irisDeviation(face.Right)
	if !lok || !rok {
		return 0.0
	}
	dev := (left + right) / 2
	if dev > maxIrisDeviation {
		return 0.0
	}
	return clamp(1.0-dev/maxIrisDeviation, 0, 1)
}

func irisDeviation(eye vision.Eye) (float64, bool) {
	width := math.Abs(eye.Inner.X - eye.Outer.X)
	if width == 0 {
		return 0, false
	}
	lo := math.Min(eye.Outer.X, eye.Inner.X)
	pos := (eye.Iris.X - lo) / width
	return math.Abs(pos - 0.5), true
}

// eyeAspectRatio computes the EAR from the six eyelid landmarks.
func eyeAspectRatio(eye vision.Eye) float64 {
	v1 := dist(eye.UpperOuter, eye.LowerOuter)
	v2 := dist(eye.UpperInner, eye.LowerInner)
	h := dist(eye.Outer, eye.Inner)
	if h == 0 {
		return 0
	}
	return (v1 + v2) / (2 * h)
}

func dist(a, b vision.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// poseOf approximates yaw and pitch from nose offsets against the eye
// midpoint, scaled to roughly degree-like units.
func poseOf(face vision.Face) headPose {
	lc := face.Left.Center()
	rc := face.Right.Center()
	eyeX := (lc.X + rc.X) / 2
	eyeY := (lc.Y + rc.Y) / 2
	return headPose{
		yaw:   (face.Nose.X - eyeX) * 100,
		pitch: (face.Nose.Y - eyeY) * 100,
	}
}

// headStability folds pose jitter into [0,1]; defined as 1.0 when fewer
// than two pose samples exist.
func headStability(poses []headPose) float64 {
	if len(poses) < 2 {
		return 1.0
	}
	yaws := make([]float64, len(poses))
	pitches := make([]float64, len(poses))
	for i, p := range poses {
		yaws[i] = p.yaw
		pitches[i] = p.pitch
	}
	yawStd, _ := stats.StandardDeviation(yaws)
	pitchStd, _ := stats.StandardDeviation(pitches)
	return clamp(1.0/(1.0+(yawStd+pitchStd)/20), 0, 1)
}

// detectCheating combines the frame aggregates into the weighted, additive
// risk score capped at 100 and its band.
func detectCheating(multiPct, lookingPct, stability, facePresence float64) model.CheatingRisk {
	indicators := []string{}
	score := 0

	if multiPct > 5 {
		indicators = append(indicators, "Multiple faces detected frequently")
		score += 30
	}
	if lookingPct > 40 {
		indicators = append(indicators, "Excessive looking away from camera")
		score += 25
	}
	if stability < 0.4 {
		indicators = append(indicators, "Unusual head movement patterns")
		score += 20
	}
	if facePresence < 70 {
		indicators = append(indicators, "Face not consistently visible")
		score += 15
	}
	if score > 100 {
		score = 100
	}

	var level model.RiskLevel
	switch {
	case score >= 50:
		level = model.RiskHigh
	case score >= 30:
		level = model.RiskMedium
	case score >= 15:
		level = model.RiskLow
	default:
		level = model.RiskNone
	}

	return model.CheatingRisk{
		Level:        level,
		Score:        score,
		Indicators:   indicators,
		IsSuspicious: score >= 30,
	}
}

func behaviorScore(eyeContact, stability, facePresence float64, cheatingScore int) float64 {
	raw := eyeContact*0.3 + stability*0.3 + facePresence/100*0.2 - float64(cheatingScore)/100*0.2
	return clamp(raw*100, 0, 100)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func noRisk() model.CheatingRisk {
	return model.CheatingRisk{Level: model.RiskNone, Indicators: []string{}}
}
