package audio

import "math"

// LevelMeter maps frame energy onto a bounded 0-100 level for the recording
// indicator. Levels rise immediately with the signal and decay smoothly so
// the meter does not flicker.
type LevelMeter struct {
	// FullScale is the RMS energy mapped to level 100
	fullScale float64
	// decay is the per-frame falloff fraction applied when the signal drops
	decay float64

	level float64
}

// NewLevelMeter creates a meter; fullScale is the RMS energy treated as
// maximum loudness.
func NewLevelMeter(fullScale float64) *LevelMeter {
	if fullScale <= 0 {
		fullScale = 8000
	}
	return &LevelMeter{fullScale: fullScale, decay: 0.25}
}

// Process consumes one frame of samples and returns the current 0-100 level
func (m *LevelMeter) Process(samples []int16) int {
	rms := CalculateRMS(samples)

	instant := rms / m.fullScale * 100
	if instant > 100 {
		instant = 100
	}

	if instant >= m.level {
		m.level = instant
	} else {
		m.level -= (m.level - instant) * m.decay
	}

	return int(math.Round(m.level))
}

// Level returns the last computed level without consuming a frame
func (m *LevelMeter) Level() int {
	return int(math.Round(m.level))
}

// Reset zeroes the meter
func (m *LevelMeter) Reset() {
	m.level = 0
}

// SilenceDetector flags sustained quiet in the microphone signal. It feeds
// the end-of-utterance hint for voice capture: speech is considered finished
// after quietFrames consecutive frames below the energy threshold.
type SilenceDetector struct {
	threshold   float64
	quietFrames int

	quietCount int
	speaking   bool
}

// NewSilenceDetector creates a detector with the given RMS threshold and
// required consecutive quiet frames.
func NewSilenceDetector(threshold float64, quietFrames int) *SilenceDetector {
	if quietFrames <= 0 {
		quietFrames = 1
	}
	return &SilenceDetector{threshold: threshold, quietFrames: quietFrames}
}

// Process consumes one frame and reports whether speech just ended
func (d *SilenceDetector) Process(samples []int16) (speechEnded bool) {
	if CalculateRMS(samples) > d.threshold {
		d.speaking = true
		d.quietCount = 0
		return false
	}

	if !d.speaking {
		return false
	}

	d.quietCount++
	if d.quietCount >= d.quietFrames {
		d.speaking = false
		d.quietCount = 0
		return true
	}
	return false
}

// Speaking reports whether speech is currently detected
func (d *SilenceDetector) Speaking() bool {
	return d.speaking
}

// Reset clears detector state
func (d *SilenceDetector) Reset() {
	d.quietCount = 0
	d.speaking = false
}
