package suggest

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"rowmatch/internal/logger"

	"golang.org/x/text/unicode/norm"
)

const (
	OriginHeuristic = "heuristic"
	OriginAI        = "ai"
)

// Pair is a suggested key column pairing between a source sheet header and
// a lookup sheet header.
type Pair struct {
	Source     string  `yaml:"source"`
	Lookup     string  `yaml:"lookup"`
	Confidence float64 `yaml:"confidence"`
	Origin     string  `yaml:"origin"`
}

// normalizeHeader folds width and case and drops spacing and punctuation so
// that "Patient ID", "patient_id" and "ＰａｔｉｅｎｔＩＤ" compare equal.
func normalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(norm.NFKC.String(header)) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Heuristic pairs headers by normalized equality (confidence 1.0) or by one
// containing the other (confidence 0.8). Each source header gets at most one
// pair, the best one.
func Heuristic(source, lookup []string) []Pair {
	var pairs []Pair
	for _, s := range source {
		ns := normalizeHeader(s)
		if ns == "" {
			continue
		}

		var best *Pair
		for _, l := range lookup {
			nl := normalizeHeader(l)
			if nl == "" {
				continue
			}

			var confidence float64
			switch {
			case ns == nl:
				confidence = 1.0
			case strings.Contains(ns, nl) || strings.Contains(nl, ns):
				confidence = 0.8
			default:
				continue
			}

			if best == nil || confidence > best.Confidence {
				best = &Pair{Source: s, Lookup: l, Confidence: confidence, Origin: OriginHeuristic}
			}
		}

		if best != nil {
			pairs = append(pairs, *best)
		}
	}
	return pairs
}

// Merge combines heuristic and AI pairs. A source header already paired by
// the heuristic keeps that pair. The result is sorted by confidence.
func Merge(heuristic, ai []Pair) []Pair {
	seen := make(map[string]bool, len(heuristic))
	merged := make([]Pair, 0, len(heuristic)+len(ai))

	for _, p := range heuristic {
		seen[p.Source] = true
		merged = append(merged, p)
	}
	for _, p := range ai {
		if seen[p.Source] {
			continue
		}
		seen[p.Source] = true
		merged = append(merged, p)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

// Suggester is satisfied by *AIClient.
type Suggester interface {
	Suggest(ctx context.Context, source, lookup []string) ([]Pair, error)
}

// Columns runs the heuristic and, when ai is not nil, the AI suggester. An AI
// failure is logged and the heuristic pairs are returned on their own.
func Columns(ctx context.Context, source, lookup []string, ai Suggester) []Pair {
	pairs := Heuristic(source, lookup)
	if ai == nil {
		return Merge(pairs, nil)
	}

	aiPairs, err := ai.Suggest(ctx, source, lookup)
	if err != nil {
		logger.Warn("AI suggestion failed, using header heuristics only", "error", err)
		return Merge(pairs, nil)
	}
	return Merge(pairs, aiPairs)
}
