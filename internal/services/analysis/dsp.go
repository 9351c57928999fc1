package analysis

import (
	"math"
)

const (
	// MinTempo and MaxTempo bound the tempo search range in BPM
	MinTempo = 60.0
	MaxTempo = 180.0
)

// onsetEnvelope computes a per-hop onset strength curve: the positive first
// difference of the hop RMS, normalized to peak 1
func onsetEnvelope(samples []float64, hopLength int) []float64 {
	if len(samples) < hopLength*2 {
		return nil
	}

	frames := len(samples) / hopLength
	rms := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for _, s := range samples[i*hopLength : (i+1)*hopLength] {
			sum += s * s
		}
		rms[i] = math.Sqrt(sum / float64(hopLength))
	}

	envelope := make([]float64, frames)
	var peak float64
	for i := 1; i < frames; i++ {
		d := rms[i] - rms[i-1]
		if d > 0 {
			envelope[i] = d
		}
		if envelope[i] > peak {
			peak = envelope[i]
		}
	}

	if peak > 0 {
		for i := range envelope {
			envelope[i] /= peak
		}
	}

	return envelope
}

// estimateTempo finds the strongest periodicity in the onset envelope by
// autocorrelation over the plausible BPM range
func estimateTempo(envelope []float64, sampleRate, hopLength int) float64 {
	if len(envelope) == 0 {
		return 0
	}

	framesPerSecond := float64(sampleRate) / float64(hopLength)
	minLag := int(framesPerSecond * 60.0 / MaxTempo)
	maxLag := int(framesPerSecond * 60.0 / MinTempo)
	if maxLag >= len(envelope) {
		maxLag = len(envelope) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0
	}

	bestLag := minLag
	bestCorr := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(envelope); i++ {
			corr += envelope[i] * envelope[i+lag]
		}
		// Normalize so longer lags are not penalized
		corr /= float64(len(envelope) - lag)
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	return 60.0 * framesPerSecond / float64(bestLag)
}

// trackBeats lays a beat grid at the estimated tempo, phase-aligned with the
// onset envelope, and returns beat times in seconds
func trackBeats(envelope []float64, tempo float64, sampleRate, hopLength int) []float64 {
	if tempo <= 0 || len(envelope) == 0 {
		return nil
	}

	framesPerSecond := float64(sampleRate) / float64(hopLength)
	period := framesPerSecond * 60.0 / tempo
	if period < 1 {
		return nil
	}

	// Pick the phase offset whose grid sits on the most onset energy
	bestOffset := 0
	bestScore := math.Inf(-1)
	for offset := 0; offset < int(period); offset++ {
		var score float64
		for f := float64(offset); f < float64(len(envelope)); f += period {
			score += envelope[int(f)]
		}
		if score > bestScore {
			bestScore = score
			bestOffset = offset
		}
	}

	var beats []float64
	for f := float64(bestOffset); f < float64(len(envelope)); f += period {
		beats = append(beats, f/framesPerSecond)
	}

	return beats
}

// downbeatsFromBeats estimates downbeats as every 4th beat
func downbeatsFromBeats(beats []float64) []float64 {
	if len(beats) < 4 {
		return []float64{}
	}

	downbeats := make([]float64, 0, len(beats)/4+1)
	for i := 0; i < len(beats); i += 4 {
		downbeats = append(downbeats, beats[i])
	}
	return downbeats
}

// energyCurve computes normalized energy at 4 measurements per second
func energyCurve(samples []float64, sampleRate int) []float64 {
	hop := sampleRate / 4
	if hop == 0 || len(samples) <= hop {
		return []float64{}
	}

	var energy []float64
	var peak float64
	for i := 0; i+hop < len(samples); i += hop {
		var sum float64
		for _, s := range samples[i : i+hop] {
			sum += s * s
		}
		energy = append(energy, sum)
		if sum > peak {
			peak = sum
		}
	}

	if peak > 0 {
		for i := range energy {
			energy[i] /= peak
		}
	}

	return energy
}

// loudnessCurve computes per-hop RMS
func loudnessCurve(samples []float64, hopLength int) []float64 {
	frames := len(samples) / hopLength
	if frames == 0 {
		return []float64{}
	}

	rms := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for _, s := range samples[i*hopLength : (i+1)*hopLength] {
			sum += s * s
		}
		rms[i] = math.Sqrt(sum / float64(hopLength))
	}
	return rms
}

// detectIntroEnd finds where the full arrangement starts: the first 8-second
// window whose mean onset strength is 20% above the track average
func detectIntroEnd(envelope []float64, duration float64, sampleRate, hopLength int) float64 {
	framesPerSecond := float64(sampleRate) / float64(hopLength)
	windowSize := int(framesPerSecond * 8)

	if windowSize > 0 && len(envelope) > windowSize {
		var total float64
		for _, v := range envelope {
			total += v
		}
		overallMean := total / float64(len(envelope))

		var windowSum float64
		for i := 0; i < windowSize; i++ {
			windowSum += envelope[i]
		}

		for i := 0; i+windowSize < len(envelope); i++ {
			if windowSum/float64(windowSize) > overallMean*1.2 {
				return float64(i) / framesPerSecond
			}
			windowSum += envelope[i+windowSize] - envelope[i]
		}
	}

	return math.Min(16.0, duration*0.1)
}

// detectOutroStart finds where energy starts consistently decreasing in the
// last third of the track
func detectOutroStart(energy []float64, duration float64) float64 {
	if len(energy) > 10 {
		secondsPerPoint := duration / float64(len(energy))
		lastThird := len(energy) * 2 / 3

		for i := lastThird; i < len(energy)-10; i++ {
			decreasing := true
			for j := i; j < i+9; j++ {
				if energy[j] < energy[j+1] {
					decreasing = false
					break
				}
			}
			if decreasing {
				return float64(i) * secondsPerPoint
			}
		}
	}

	return math.Max(duration-30.0, duration*0.85)
}

// findMixInPoints returns up to 5 beat-aligned points after the intro within
// the first 30% of the track
func findMixInPoints(beats []float64, introEnd, duration float64) []float64 {
	var points []float64
	limit := duration * 0.3

	for _, beat := range beats {
		if beat >= introEnd && beat <= limit {
			points = append(points, beat)
			if len(points) == 5 {
				break
			}
		}
	}

	if points == nil {
		points = []float64{}
	}
	return points
}

// findMixOutPoints returns up to the last 5 beat-aligned points between 60%
// of the track and the outro
func findMixOutPoints(beats []float64, outroStart, duration float64) []float64 {
	var points []float64
	start := duration * 0.6

	for _, beat := range beats {
		if beat >= start && beat <= outroStart {
			points = append(points, beat)
		}
	}

	if len(points) > 5 {
		points = points[len(points)-5:]
	}
	if points == nil {
		points = []float64{}
	}
	return points
}
