// Package timeconv converts scene frame numbers into the host's fixed-point
// rational time representation. Every time value handed to a host goes
// through one Converter so rounding is identical across a scene.
package timeconv

import (
	"errors"
	"fmt"
	"math"
)

// DefaultScale is the fixed-point factor applied to numerators and denominators.
const DefaultScale = 10000.0

// ErrInvalidFrameRate is returned for a frame rate that is not a positive finite number.
var ErrInvalidFrameRate = errors.New("invalid frame rate")

// RationalTime is a host time value: Value/Scale seconds.
type RationalTime struct {
	Value int64  `json:"value"`
	Scale uint64 `json:"scale"`
}

// Seconds returns the time in seconds.
func (t RationalTime) Seconds() float64 {
	if t.Scale == 0 {
		return 0
	}
	return float64(t.Value) / float64(t.Scale)
}

// Less compares two times that may use different scales.
func (t RationalTime) Less(o RationalTime) bool {
	// cross-multiplication in float avoids overflowing int64
	return float64(t.Value)*float64(o.Scale) < float64(o.Value)*float64(t.Scale)
}

func (t RationalTime) String() string {
	return fmt.Sprintf("%d/%d", t.Value, t.Scale)
}

// Ratio is a host rational number such as a frame rate or a stretch factor.
type Ratio struct {
	Num int64  `json:"num"`
	Den uint64 `json:"den"`
}

// Float returns the ratio as a float.
func (r Ratio) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// OneToOne is the square pixel aspect ratio.
var OneToOne = Ratio{Num: 1, Den: 1}

// Converter maps frames of one scene to host time.
type Converter struct {
	FrameRate float64
	Scale     float64
}

// New creates a converter for the frame rate using DefaultScale.
func New(frameRate float64) (Converter, error) {
	if math.IsNaN(frameRate) || math.IsInf(frameRate, 0) || frameRate <= 0 {
		return Converter{}, fmt.Errorf("%w: %v", ErrInvalidFrameRate, frameRate)
	}
	// the time denominator must stay non-zero after scaling
	if math.Round(frameRate*DefaultScale) < 1 {
		return Converter{}, fmt.Errorf("%w: %v is below the time resolution", ErrInvalidFrameRate, frameRate)
	}
	return Converter{FrameRate: frameRate, Scale: DefaultScale}, nil
}

// FrameToTime converts a (possibly fractional) frame number.
func (c Converter) FrameToTime(frame float64) RationalTime {
	return RationalTime{
		Value: int64(math.Round(frame * c.Scale)),
		Scale: uint64(math.Round(c.FrameRate * c.Scale)),
	}
}

// FrameToSeconds converts a frame number into seconds.
func (c Converter) FrameToSeconds(frame float64) float64 {
	return (1 / c.FrameRate) * frame
}

// FrameRateRatio returns the frame rate as a host ratio.
func (c Converter) FrameRateRatio() Ratio {
	return Ratio{Num: int64(math.Round(c.FrameRate * c.Scale)), Den: uint64(math.Round(c.Scale))}
}

// Stretch returns the host stretch factor for a playback speed multiplier.
func (c Converter) Stretch(timeScale float64) (Ratio, error) {
	if math.IsNaN(timeScale) || math.IsInf(timeScale, 0) || timeScale <= 0 {
		return Ratio{}, fmt.Errorf("time scale %v must be positive", timeScale)
	}
	return Ratio{Num: int64(math.Round(1 / timeScale * c.Scale)), Den: uint64(math.Round(c.Scale))}, nil
}
