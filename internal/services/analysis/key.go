package analysis

import (
	"math"
)

var keyNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Binary scale profiles: which pitch classes belong to the major/minor scale
var (
	majorProfile = []float64{1, 0, 1, 0, 1, 1, 0, 1, 0, 1, 0, 1}
	minorProfile = []float64{1, 0, 1, 1, 0, 1, 0, 1, 1, 0, 1, 0}
)

// camelotMap translates musical keys to Camelot wheel positions
var camelotMap = map[string]string{
	"C_major": "8B", "G_major": "9B", "D_major": "10B", "A_major": "11B",
	"E_major": "12B", "B_major": "1B", "F#_major": "2B", "C#_major": "3B",
	"G#_major": "4B", "D#_major": "5B", "A#_major": "6B", "F_major": "7B",
	"A_minor": "8A", "E_minor": "9A", "B_minor": "10A", "F#_minor": "11A",
	"C#_minor": "12A", "G#_minor": "1A", "D#_minor": "2A", "A#_minor": "3A",
	"F_minor": "4A", "C_minor": "5A", "G_minor": "6A", "D_minor": "7A",
}

// ToCamelotKey converts a musical key like "A_minor" to Camelot notation
func ToCamelotKey(key string) string {
	if camelot, ok := camelotMap[key]; ok {
		return camelot
	}
	return "Unknown"
}

// chromaVector computes mean per-pitch-class energy using Goertzel filters
// over semitone frequencies in octaves 2 through 6
func chromaVector(samples []float64, sampleRate int) []float64 {
	chroma := make([]float64, 12)
	if len(samples) == 0 {
		return chroma
	}

	const frameSize = 8192
	// Limit the number of frames analyzed; key is a global property
	step := frameSize
	if len(samples) > frameSize*64 {
		step = len(samples) / 64
	}

	frames := 0
	for start := 0; start+frameSize <= len(samples); start += step {
		frame := samples[start : start+frameSize]
		for pc := 0; pc < 12; pc++ {
			for octave := 2; octave <= 6; octave++ {
				// MIDI note: C2 = 36
				midi := 12*(octave+1) + pc
				freq := 440.0 * math.Pow(2, (float64(midi)-69.0)/12.0)
				if freq >= float64(sampleRate)/2 {
					continue
				}
				chroma[pc] += goertzel(frame, freq, sampleRate)
			}
		}
		frames++
	}

	if frames > 0 {
		for i := range chroma {
			chroma[i] /= float64(frames)
		}
	}

	return chroma
}

// goertzel computes the squared magnitude of one frequency bin
func goertzel(frame []float64, freq float64, sampleRate int) float64 {
	omega := 2 * math.Pi * freq / float64(sampleRate)
	coeff := 2 * math.Cos(omega)

	var s0, s1, s2 float64
	for _, x := range frame {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	return power / float64(len(frame))
}

// estimateKey picks the most prominent pitch class and decides major vs minor
// by correlating the chroma vector against shifted scale profiles
func estimateKey(samples []float64, sampleRate int) string {
	chroma := chromaVector(samples, sampleRate)

	keyIdx := 0
	for i, v := range chroma {
		if v > chroma[keyIdx] {
			keyIdx = i
		}
	}

	majorShifted := rollProfile(majorProfile, keyIdx)
	minorShifted := rollProfile(minorProfile, keyIdx)

	majorCorr := pearson(chroma, majorShifted)
	minorCorr := pearson(chroma, minorShifted)

	mode := "major"
	if minorCorr > majorCorr {
		mode = "minor"
	}

	return keyNames[keyIdx] + "_" + mode
}

// rollProfile rotates a profile right by n positions
func rollProfile(profile []float64, n int) []float64 {
	out := make([]float64, len(profile))
	for i := range profile {
		out[(i+n)%len(profile)] = profile[i]
	}
	return out
}

// pearson computes the Pearson correlation coefficient of two equal-length vectors
func pearson(a, b []float64) float64 {
	n := float64(len(a))
	if n == 0 || len(a) != len(b) {
		return 0
	}

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
