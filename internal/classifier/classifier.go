// Package classifier maps free-text grievances to a category, government
// department, confidence score, urgency flag, priority and SLA window.
package classifier

import (
	"math"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/gunaso-platform/grievance/internal/model"
)

// Scoring constants.
const (
	multiWordWeight  = 3 // phrases are stronger evidence than single words
	singleWordWeight = 1

	maxConfidence     = 98
	defaultConfidence = 50 // no keyword matched at all

	urgentSLAHours      = 12
	mediumConfidenceMin = 86 // confidence above 85 lifts NORMAL to MEDIUM
)

// kwMapping ties a matched keyword back to the category it scores for.
type kwMapping struct {
	categoryIdx int
	weight      int
}

// Engine classifies grievance text with a single-pass Aho-Corasick
// automaton over all category keywords. Classify is pure: fixed tables
// in, deterministic classification out.
type Engine struct {
	matcher   *ahocorasick.Matcher
	urgency   *ahocorasick.Matcher
	keywords  []string               // automaton patterns, in insertion order
	kwToCats  map[string][]kwMapping // keyword -> categories it scores for
	maxScores []int                  // per category: keyword count, for confidence
}

// New builds the classification engine from the static category tables.
func New() *Engine {
	e := &Engine{
		kwToCats:  make(map[string][]kwMapping),
		maxScores: make([]int, len(categories)),
	}

	for idx, cat := range categories {
		e.maxScores[idx] = len(cat.Keywords)
		for _, kw := range cat.Keywords {
			normalized := strings.ToLower(strings.TrimSpace(kw))
			if normalized == "" {
				continue
			}
			weight := singleWordWeight
			if strings.Contains(normalized, " ") {
				weight = multiWordWeight
			}
			if _, seen := e.kwToCats[normalized]; !seen {
				e.keywords = append(e.keywords, normalized)
			}
			e.kwToCats[normalized] = append(e.kwToCats[normalized], kwMapping{
				categoryIdx: idx,
				weight:      weight,
			})
		}
	}

	e.matcher = ahocorasick.NewStringMatcher(e.keywords)
	e.urgency = ahocorasick.NewStringMatcher(urgencyKeywords)
	return e
}

// Classify scores the concatenated title and description against every
// category and returns the routing verdict. It never fails: text with no
// keyword hits lands in the "other" category at default confidence.
func (e *Engine) Classify(title, description string) model.Classification {
	text := strings.ToLower(title + " " + description)

	scores := make([]int, len(categories))
	for _, hit := range e.matcher.Match([]byte(text)) {
		if hit >= len(e.keywords) {
			continue
		}
		for _, m := range e.kwToCats[e.keywords[hit]] {
			scores[m.categoryIdx] += m.weight
		}
	}

	// Highest score wins; ties keep the first-registered category.
	bestIdx := -1
	bestScore := 0
	for idx, score := range scores {
		if score > bestScore {
			bestScore = score
			bestIdx = idx
		}
	}

	key := "other"
	confidence := defaultConfidence
	if bestIdx >= 0 {
		key = categories[bestIdx].Key
		maxPossible := float64(e.maxScores[bestIdx])
		confidence = int(math.Round(float64(bestScore) / (maxPossible * 0.3) * 100))
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
	}

	isUrgent := len(e.urgency.Match([]byte(text))) > 0

	priority := model.PriorityNormal
	switch {
	case isUrgent:
		priority = model.PriorityHigh
	case confidence >= mediumConfidenceMin:
		priority = model.PriorityMedium
	}

	dept, ok := departments[key]
	if !ok {
		dept = departments["other"]
	}

	slaHours := dept.SLAHours
	if isUrgent {
		slaHours = urgentSLAHours
	}

	return model.Classification{
		Category:        dept.Category,
		CategoryKey:     key,
		GovernmentLevel: dept.Level,
		Department:      dept.Department,
		Confidence:      confidence,
		Priority:        priority,
		IsUrgent:        isUrgent,
		SLAHours:        slaHours,
	}
}

// Categories returns the registered category keys in scoring order.
func (e *Engine) Categories() []string {
	keys := make([]string, 0, len(categories)+1)
	for _, cat := range categories {
		keys = append(keys, cat.Key)
	}
	keys = append(keys, "other")
	return keys
}
