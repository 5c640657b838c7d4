package classify

import (
	"sort"

	"github.com/behruzmistry/genrebendpro/internal/api/acoustic"
	"github.com/behruzmistry/genrebendpro/internal/config"
	"github.com/behruzmistry/genrebendpro/internal/remix"
	"github.com/behruzmistry/genrebendpro/internal/research"
	"github.com/behruzmistry/genrebendpro/internal/shared"
	"github.com/behruzmistry/genrebendpro/internal/taxonomy"
)

// Candidate is one genre hypothesis with its fused confidence and the
// per-channel scores it was fused from.
type Candidate struct {
	Genre         taxonomy.Genre `json:"genre"`
	Confidence    float64        `json:"confidence"`
	TextScore     float64        `json:"textScore"`
	AcousticScore float64        `json:"acousticScore"`

	// bestSourceWeight breaks confidence ties toward the candidate
	// backed by the higher-priority source
	bestSourceWeight float64
}

// Classifier fuses textual research evidence with optional acoustic
// features into a ranked candidate list.
type Classifier struct {
	weights config.Weights
	debug   bool
}

// NewClassifier creates a classifier with the given fusion weights
func NewClassifier(weights config.Weights) *Classifier {
	return &Classifier{weights: weights}
}

// SetDebug enables debug logging
func (c *Classifier) SetDebug(debug bool) {
	c.debug = debug
}

// Classify ranks genre candidates for a track. Research evidence drives the
// textual channel; features, when present, add the acoustic channel. For a
// resolved remix the original's textual candidates are blended in at the
// configured remix weight. The returned slice is never empty: with no
// usable evidence it holds the Unknown sentinel at zero confidence.
func (c *Classifier) Classify(result *research.Result, detection remix.Detection, features *acoustic.Features) []Candidate {
	text := textScores(result)
	acousticScores := AcousticScores(features)

	wText, wAcoustic := c.effectiveWeights(features)
	fused := c.fuse(text, acousticScores, wText, wAcoustic)

	if detection.Status == remix.Resolved && detection.OriginalEvidence != nil {
		originalText := textScores(detection.OriginalEvidence)
		original := c.fuse(originalText, nil, 1.0, 0)
		if top, ok := topCandidate(original); ok {
			fused = blend(fused, top, c.weights.RemixBlend)
		}
	}

	if len(fused) == 0 {
		return []Candidate{{Genre: taxonomy.Unknown}}
	}

	candidates := make([]Candidate, 0, len(fused))
	for _, cand := range fused {
		candidates = append(candidates, cand)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].bestSourceWeight != candidates[j].bestSourceWeight {
			return candidates[i].bestSourceWeight > candidates[j].bestSourceWeight
		}
		return candidates[i].Genre < candidates[j].Genre
	})

	if c.debug && len(candidates) > 0 {
		shared.DebugPrint(c.debug, "top candidate %s (%.2f, text %.2f, acoustic %.2f)",
			candidates[0].Genre, candidates[0].Confidence, candidates[0].TextScore, candidates[0].AcousticScore)
	}
	return candidates
}

type textScore struct {
	score            float64
	bestSourceWeight float64
}

// textScores computes the priority-weighted corroboration per genre: each
// found source votes with its priority weight for every genre its tags map
// to, the shares are normalized over the found sources, and the whole
// channel is scaled by the research confidence.
func textScores(result *research.Result) map[taxonomy.Genre]textScore {
	if result == nil || !result.HasEvidence() {
		return nil
	}

	votes := make(map[taxonomy.Genre]textScore)
	var totalWeight float64
	for _, ev := range result.Evidence {
		if !ev.Found {
			continue
		}
		totalWeight += ev.Weight

		voted := make(map[taxonomy.Genre]bool)
		for _, tag := range ev.Tags {
			genre, ok := taxonomy.ParseGenre(tag)
			if !ok || voted[genre] {
				continue
			}
			voted[genre] = true
			entry := votes[genre]
			entry.score += ev.Weight
			if ev.Weight > entry.bestSourceWeight {
				entry.bestSourceWeight = ev.Weight
			}
			votes[genre] = entry
		}
	}
	if totalWeight == 0 {
		return nil
	}

	confidence := result.Confidence()
	for genre, entry := range votes {
		entry.score = entry.score / totalWeight * confidence
		votes[genre] = entry
	}
	return votes
}

// effectiveWeights renormalizes the fusion weights so the text channel
// carries full weight when no acoustic features are available
func (c *Classifier) effectiveWeights(features *acoustic.Features) (float64, float64) {
	wText, wAcoustic := c.weights.Text, c.weights.Acoustic
	if features == nil {
		wAcoustic = 0
	}
	total := wText + wAcoustic
	if total == 0 {
		return 1, 0
	}
	return wText / total, wAcoustic / total
}

// fuse combines the two channels into candidates. Genres are drawn from
// the textual votes; when there are none, the best acoustic match alone
// becomes the candidate so an untagged track still gets a hypothesis.
func (c *Classifier) fuse(text map[taxonomy.Genre]textScore, acousticScores map[taxonomy.Genre]float64, wText, wAcoustic float64) map[taxonomy.Genre]Candidate {
	fused := make(map[taxonomy.Genre]Candidate)
	for genre, entry := range text {
		fused[genre] = Candidate{
			Genre:            genre,
			TextScore:        entry.score,
			AcousticScore:    acousticScores[genre],
			Confidence:       wText*entry.score + wAcoustic*acousticScores[genre],
			bestSourceWeight: entry.bestSourceWeight,
		}
	}
	if len(fused) == 0 && len(acousticScores) > 0 {
		genre, score := topAcoustic(acousticScores)
		fused[genre] = Candidate{
			Genre:         genre,
			AcousticScore: score,
			Confidence:    wAcoustic * score,
		}
	}
	return fused
}

func topAcoustic(scores map[taxonomy.Genre]float64) (taxonomy.Genre, float64) {
	var best taxonomy.Genre
	bestScore := -1.0
	for genre, score := range scores {
		if score > bestScore || (score == bestScore && genre < best) {
			best, bestScore = genre, score
		}
	}
	return best, bestScore
}

// blend mixes the resolved original's top candidate into the remix's own
// scores at the given weight; the original's runners-up carry no weight
func blend(own map[taxonomy.Genre]Candidate, original Candidate, weight float64) map[taxonomy.Genre]Candidate {
	if weight <= 0 {
		return own
	}
	blended := make(map[taxonomy.Genre]Candidate, len(own)+1)
	for genre, cand := range own {
		cand.Confidence *= 1 - weight
		blended[genre] = cand
	}
	cand, ok := blended[original.Genre]
	if !ok {
		cand = Candidate{Genre: original.Genre, TextScore: original.TextScore, bestSourceWeight: original.bestSourceWeight}
	}
	cand.Confidence += weight * original.Confidence
	if original.bestSourceWeight > cand.bestSourceWeight {
		cand.bestSourceWeight = original.bestSourceWeight
	}
	blended[original.Genre] = cand
	return blended
}

// topCandidate ranks a fused map the same way Classify sorts its output
func topCandidate(fused map[taxonomy.Genre]Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, cand := range fused {
		switch {
		case !found,
			cand.Confidence > best.Confidence,
			cand.Confidence == best.Confidence && cand.bestSourceWeight > best.bestSourceWeight,
			cand.Confidence == best.Confidence && cand.bestSourceWeight == best.bestSourceWeight && cand.Genre < best.Genre:
			best, found = cand, true
		}
	}
	return best, found
}
