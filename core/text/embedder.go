package text

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingDimension is the output width of the dependency-free embedder.
const HashingDimension = 256

// Embedder maps text to a fixed-width dense vector. Implementations are
// stateless per call: encoding the same text twice yields the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// HashingEmbedder is the deterministic local fallback used when no ONNX
// runtime is available. It projects token and character-trigram counts into a
// fixed-width signed feature space and l2-normalizes the result.
type HashingEmbedder struct {
	dimension int
}

func NewHashingEmbedder() *HashingEmbedder {
	return &HashingEmbedder{dimension: HashingDimension}
}

func (h *HashingEmbedder) Dimension() int { return h.dimension }

func (h *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return h.project(text), nil
}

func (h *HashingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.project(t)
	}
	return out, nil
}

func (h *HashingEmbedder) project(text string) []float32 {
	vec := make([]float32, h.dimension)
	h.scatter(vec, wordTokens(text), 0.6)
	h.scatter(vec, charTrigrams(text), 0.4)
	unitNorm(vec)
	return vec
}

// scatter hashes each feature to a handful of signed slots, so collisions
// average out instead of stacking.
func (h *HashingEmbedder) scatter(vec []float32, features []string, weight float64) {
	if len(features) == 0 {
		return
	}
	w := float32(weight / math.Sqrt(float64(len(features))))
	for _, f := range features {
		seed := fnvHash(f)
		state := seed
		for slot := 0; slot < 4; slot++ {
			state = state*6364136223846793005 + 1442695040888963407
			idx := int(state % uint64(h.dimension))
			sign := float32(1)
			if (seed>>slot)&1 == 0 {
				sign = -1
			}
			vec[idx] += w * sign
		}
	}
}

func wordTokens(text string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 1 {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
	}
	if cur.Len() > 1 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func charTrigrams(text string) []string {
	runes := []rune(strings.ToLower(text))
	if len(runes) < 3 {
		return nil
	}
	grams := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+3]))
	}
	return grams
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func unitNorm(vec []float32) {
	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(mag))
	for i := range vec {
		vec[i] *= inv
	}
}
