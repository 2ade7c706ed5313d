// Package audio decodes WAV payloads and extracts the waveform features the
// voice scorer is built on: voice-activity intervals, frame energy, and a
// dominant-frequency pitch track.
package audio

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-audio/wav"
	"github.com/montanaflynn/stats"
)

const (
	frameLength = 2048
	hopLength   = 512

	// Energy below maxRMS * 10^(-splitTopDB/20) is treated as silence.
	splitTopDB = 25.0

	// Pitch search band, in Hz.
	pitchMinHz = 65.0
	pitchMaxHz = 1000.0
)

// Clip is a decoded mono waveform.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Interval is a half-open [Start, End) sample range of detected speech.
type Interval struct {
	Start int
	End   int
}

// Decode parses a WAV payload into a mono float64 waveform.
func Decode(data []byte) (*Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("audio: not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode pcm: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("audio: empty pcm buffer")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := math.Pow(2, float64(dec.BitDepth-1))
	if scale <= 0 {
		scale = 1 << 15
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float64(channels)
	}
	return &Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// FrameRMS computes the root-mean-square energy of successive frames.
func FrameRMS(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	var out []float64
	for start := 0; start < len(samples); start += hopLength {
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}
		sum := 0.0
		for _, s := range samples[start:end] {
			sum += s * s
		}
		out = append(out, math.Sqrt(sum/float64(end-start)))
		if end == len(samples) {
			break
		}
	}
	return out
}

// SplitSpeech segments the waveform into speech intervals using an energy
// threshold relative to the loudest frame.
func SplitSpeech(samples []float64) []Interval {
	rms := FrameRMS(samples)
	if len(rms) == 0 {
		return nil
	}
	maxRMS := 0.0
	for _, r := range rms {
		if r > maxRMS {
			maxRMS = r
		}
	}
	if maxRMS == 0 {
		return nil
	}
	threshold := maxRMS * math.Pow(10, -splitTopDB/20)

	var intervals []Interval
	inSpeech := false
	start := 0
	for i, r := range rms {
		pos := i * hopLength
		if r >= threshold && !inSpeech {
			inSpeech = true
			start = pos
		} else if r < threshold && inSpeech {
			inSpeech = false
			intervals = append(intervals, Interval{Start: start, End: pos})
		}
	}
	if inSpeech {
		intervals = append(intervals, Interval{Start: start, End: len(samples)})
	}
	return intervals
}

// PitchStats summarizes the per-frame dominant frequency track.
type PitchStats struct {
	Mean  float64
	Std   float64
	Range float64
}

// TrackPitch estimates a per-frame dominant frequency via autocorrelation
// over voiced frames and summarizes it. Returns ok=false when no voiced
// frame yields a usable estimate.
func TrackPitch(samples []float64, sampleRate int) (PitchStats, bool) {
	if sampleRate <= 0 || len(samples) < frameLength {
		return PitchStats{}, false
	}

	minLag := int(float64(sampleRate) / pitchMaxHz)
	maxLag := int(float64(sampleRate) / pitchMinHz)
	if minLag < 1 || maxLag >= frameLength {
		return PitchStats{}, false
	}

	var track []float64
	for start := 0; start+frameLength <= len(samples); start += frameLength {
		frame := samples[start : start+frameLength]
		if f, ok := dominantFrequency(frame, sampleRate, minLag, maxLag); ok {
			track = append(track, f)
		}
	}
	if len(track) == 0 {
		return PitchStats{}, false
	}

	mean, _ := stats.Mean(track)
	std, _ := stats.StandardDeviation(track)
	lo, _ := stats.Min(track)
	hi, _ := stats.Max(track)
	return PitchStats{Mean: mean, Std: std, Range: hi - lo}, true
}

// dominantFrequency picks the autocorrelation peak within the pitch band.
func dominantFrequency(frame []float64, sampleRate, minLag, maxLag int) (float64, bool) {
	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy == 0 {
		return 0, false
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	// Require a meaningful periodic component before trusting the peak.
	if bestLag == 0 || bestCorr < 0.3*energy {
		return 0, false
	}
	return float64(sampleRate) / float64(bestLag), true
}

// EnergyStats summarizes frame RMS energy.
type EnergyStats struct {
	Mean float64
	Std  float64
	Max  float64
}

// Energy computes frame-wise RMS statistics for the waveform.
func Energy(samples []float64) EnergyStats {
	rms := FrameRMS(samples)
	if len(rms) == 0 {
		return EnergyStats{}
	}
	mean, _ := stats.Mean(rms)
	std, _ := stats.StandardDeviation(rms)
	maxV, _ := stats.Max(rms)
	return EnergyStats{Mean: mean, Std: std, Max: maxV}
}
