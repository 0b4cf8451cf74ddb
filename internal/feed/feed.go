// Package feed projects the case store into the ranked public feed.
// Pure read side: nothing here mutates a case.
package feed

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/gunaso-platform/grievance/internal/model"
)

// Mode selects the feed ordering.
type Mode string

const (
	ModeTrending Mode = "trending"
	ModeReports  Mode = "reports"
	ModeUpvotes  Mode = "upvotes"
	ModeRecent   Mode = "recent"
	ModeDefault  Mode = ""
)

// DefaultLimit caps the feed when the caller does not supply a limit.
const DefaultLimit = 20

// descriptionCap truncates descriptions on the public projection,
// counted in runes so Devanagari text keeps as many characters as
// English text.
const descriptionCap = 200

// Rank filters, orders, truncates and redacts cases for public display.
func Rank(cases []*model.Case, mode Mode, categoryKey string, priority model.Priority, limit int, now time.Time) []model.PublicCase {
	filtered := make([]*model.Case, 0, len(cases))
	for _, c := range cases {
		if categoryKey != "" && c.Classification.CategoryKey != categoryKey {
			continue
		}
		if priority != "" && c.Priority != priority {
			continue
		}
		filtered = append(filtered, c)
	}

	switch mode {
	case ModeTrending:
		scores := make(map[string]float64, len(filtered))
		for _, c := range filtered {
			scores[c.ID] = TrendingScore(c, now)
		}
		sort.SliceStable(filtered, func(i, j int) bool {
			return scores[filtered[i].ID] > scores[filtered[j].ID]
		})
	case ModeReports:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].ReportCount > filtered[j].ReportCount
		})
	case ModeUpvotes:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Upvotes > filtered[j].Upvotes
		})
	case ModeRecent:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	default:
		// Most pressing first: priority rank descending, then the
		// case more citizens are behind.
		sort.SliceStable(filtered, func(i, j int) bool {
			ri, rj := filtered[i].Priority.Rank(), filtered[j].Priority.Rank()
			if ri != rj {
				return ri > rj
			}
			return filtered[i].ReportCount > filtered[j].ReportCount
		})
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	public := make([]model.PublicCase, 0, len(filtered))
	for _, c := range filtered {
		public = append(public, redact(c))
	}
	return public
}

// TrendingScore is a recency-decayed popularity score: reports weigh
// three times an upvote, damped by the square root of the case age.
func TrendingScore(c *model.Case, now time.Time) float64 {
	age := c.AgeHours(now)
	return float64(c.ReportCount*3+c.Upvotes) / math.Sqrt(math.Max(1, age))
}

// redact strips internal-only fields before public exposure: voter
// tokens never leave the store and descriptions are capped.
func redact(c *model.Case) model.PublicCase {
	desc := c.Description
	if utf8.RuneCountInString(desc) > descriptionCap {
		desc = string([]rune(desc)[:descriptionCap])
	}

	return model.PublicCase{
		ID:              c.ID,
		Title:           c.Title,
		Description:     desc,
		Category:        c.Classification.Category,
		CategoryKey:     c.Classification.CategoryKey,
		GovernmentLevel: c.Classification.GovernmentLevel,
		Department:      c.Classification.Department,
		Location: model.Location{
			District:     c.Location.District,
			Municipality: c.Location.Municipality,
			Ward:         c.Location.Ward,
		},
		Priority:       c.Priority,
		Status:         c.Status,
		ReportCount:    c.ReportCount,
		Upvotes:        c.Upvotes,
		CreatedAt:      c.CreatedAt,
		LastReportedAt: c.LastReportedAt,
	}
}
