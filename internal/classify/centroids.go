package classify

import (
	"gonum.org/v1/gonum/floats"

	"github.com/behruzmistry/genrebendpro/internal/api/acoustic"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// featureRange bounds one acoustic dimension for min-max scaling. Values
// outside the range are clamped before comparison.
type featureRange struct {
	min, max float64
}

// Dimension order: spectral centroid, rolloff, bandwidth, zero crossing
// rate, tempo, energy, harmonic ratio, loudness.
var featureRanges = []featureRange{
	{200, 8000},  // spectral centroid (Hz)
	{500, 16000}, // spectral rolloff (Hz)
	{200, 6000},  // spectral bandwidth (Hz)
	{0.01, 0.35}, // zero crossing rate
	{60, 200},    // tempo (BPM)
	{0, 1},       // energy
	{0, 1},       // harmonic ratio
	{-40, 0},     // loudness (dBFS)
}

// genreCentroids are reference acoustic profiles per genre, in raw units.
// They are coarse by intention: the acoustic channel corroborates textual
// evidence rather than replacing it.
var genreCentroids = map[taxonomy.Genre][]float64{
	taxonomy.House:             {2200, 5500, 2000, 0.08, 124, 0.70, 0.60, -8},
	taxonomy.DeepHouse:         {1600, 4200, 1700, 0.06, 121, 0.55, 0.70, -11},
	taxonomy.Techno:            {2800, 7000, 2400, 0.11, 132, 0.80, 0.45, -7},
	taxonomy.Trance:            {2600, 6500, 2300, 0.09, 138, 0.75, 0.65, -8},
	taxonomy.ProgressiveTrance: {2400, 6000, 2200, 0.08, 134, 0.70, 0.70, -9},
	taxonomy.Dubstep:           {2000, 6800, 2800, 0.13, 140, 0.85, 0.35, -6},
	taxonomy.DrumAndBass:       {3000, 7500, 2600, 0.14, 174, 0.85, 0.40, -6},
	taxonomy.Breakbeat:         {2500, 6200, 2300, 0.12, 135, 0.75, 0.45, -8},
	taxonomy.Ambient:           {900, 2500, 1100, 0.03, 75, 0.25, 0.85, -18},
	taxonomy.Downtempo:         {1300, 3500, 1400, 0.05, 90, 0.40, 0.75, -14},
	taxonomy.Progressive:       {2100, 5200, 2000, 0.07, 126, 0.65, 0.70, -9},
	taxonomy.FutureBass:        {2300, 6000, 2600, 0.10, 150, 0.75, 0.55, -7},
	taxonomy.Trap:              {1900, 5800, 2400, 0.11, 140, 0.80, 0.40, -7},
	taxonomy.Electronic:        {2200, 5500, 2100, 0.09, 128, 0.65, 0.60, -9},
	taxonomy.Experimental:      {2400, 6200, 2600, 0.12, 110, 0.55, 0.45, -12},
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// normalizeFeatures maps a raw feature vector into [0,1] per dimension
func normalizeFeatures(raw []float64) []float64 {
	scaled := make([]float64, len(featureRanges))
	for i, r := range featureRanges {
		scaled[i] = (clamp(raw[i], r.min, r.max) - r.min) / (r.max - r.min)
	}
	return scaled
}

func featureVector(f *acoustic.Features) []float64 {
	return []float64{
		f.SpectralCentroid,
		f.SpectralRolloff,
		f.SpectralBandwidth,
		f.ZeroCrossingRate,
		f.Tempo,
		f.Energy,
		f.HarmonicRatio,
		f.Loudness,
	}
}

// AcousticScores computes a cosine similarity score in [0,1] between the
// track's features and every genre centroid.
func AcousticScores(features *acoustic.Features) map[taxonomy.Genre]float64 {
	if features == nil {
		return nil
	}
	track := normalizeFeatures(featureVector(features))
	scores := make(map[taxonomy.Genre]float64, len(genreCentroids))
	for genre, centroid := range genreCentroids {
		scores[genre] = cosineSimilarity(track, normalizeFeatures(centroid))
	}
	return scores
}

func cosineSimilarity(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
