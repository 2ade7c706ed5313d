// Package vision holds the face-landmark types the video analyzer consumes
// and the MJPEG frame splitter for raw clip payloads. Landmark inference
// itself is an external model behind the Detector interface; it is loaded
// once per process and shared read-only across sessions.
package vision

import "fmt"

// Point is a normalized landmark coordinate (0..1 in frame space).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Eye holds the landmarks needed for gaze and blink analysis: the two
// horizontal corners, the iris center, and two eyelid point pairs.
type Eye struct {
	Outer      Point `json:"outer"`
	Inner      Point `json:"inner"`
	Iris       Point `json:"iris"`
	UpperOuter Point `json:"upperOuter"`
	UpperInner Point `json:"upperInner"`
	LowerOuter Point `json:"lowerOuter"`
	LowerInner Point `json:"lowerInner"`
}

// Center is the midpoint of the eye corners.
func (e Eye) Center() Point {
	return Point{X: (e.Outer.X + e.Inner.X) / 2, Y: (e.Outer.Y + e.Inner.Y) / 2}
}

// Face is one detected face with the landmarks the analyzer uses.
type Face struct {
	Left  Eye   `json:"left"`
	Right Eye   `json:"right"`
	Nose  Point `json:"nose"`
}

// Detector runs face-landmark inference on one encoded frame. Detect must
// be safe for concurrent use; an empty slice means no face in the frame.
type Detector interface {
	Detect(frame []byte) ([]Face, error)
}

// JPEG stream markers.
var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// SplitFrames cuts an MJPEG byte stream (concatenated JPEG images) into
// individual frames by scanning for start/end-of-image markers.
func SplitFrames(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("vision: empty video payload")
	}
	var frames [][]byte
	i := 0
	for i < len(data)-1 {
		if data[i] != jpegSOI[0] || data[i+1] != jpegSOI[1] {
			i++
			continue
		}
		end := -1
		for j := i + 2; j < len(data)-1; j++ {
			if data[j] == jpegEOI[0] && data[j+1] == jpegEOI[1] {
				end = j + 2
				break
			}
		}
		if end < 0 {
			break
		}
		frames = append(frames, data[i:end])
		i = end
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("vision: no jpeg frames found")
	}
	return frames, nil
}
