package audio

import "math"

// Decibels is a volume relative to the original volume of a sound.
type Decibels float64

// Silence is the volume floor. Playback mutes any volume at or below it.
const Silence Decibels = -60

// Unity keeps the volume of a sound unchanged.
const Unity Decibels = 0

// AmplitudeToDecibels converts a linear amplitude to decibels. An
// amplitude of zero or less is Silence.
func AmplitudeToDecibels(amplitude float64) Decibels {
	if amplitude <= 0 {
		return Silence
	}

	return Decibels(20 * math.Log10(amplitude))
}

// Amplitude converts the volume back into a linear amplitude. Volumes at
// or below Silence are muted.
func (db Decibels) Amplitude() float64 {
	if db <= Silence {
		return 0
	}

	return math.Pow(10, float64(db)/20)
}
