// Package cluster decides whether an incoming report joins an existing
// open case or starts a new one. Clustering is what turns fifty reports
// of one blown transformer into one departmental ticket instead of fifty.
package cluster

import (
	"strings"
	"time"

	"github.com/gunaso-platform/grievance/internal/model"
)

// WindowHours is the rolling eligibility window: only cases created
// within this many hours can absorb new reports.
const WindowHours = 48

// FindMatch scans the open cases for the first one the report belongs
// to, or nil when the report should become a new case.
//
// A case is eligible when it is unresolved and created inside the
// rolling window. A report matches when the category agrees and either
// district plus ward agree, or municipality agrees (the broader
// fallback for reports without a usable ward). The first structural
// match wins; candidates are not ranked.
func FindMatch(cases []*model.Case, classification model.Classification, loc model.Location, now time.Time) *model.Case {
	windowStart := now.Add(-WindowHours * time.Hour)

	for _, c := range cases {
		if c.IsResolved() {
			continue
		}
		if c.CreatedAt.Before(windowStart) {
			continue
		}
		if c.Classification.CategoryKey != classification.CategoryKey {
			continue
		}

		if sameDistrict(c.Location, loc) && c.Location.Ward == loc.Ward {
			return c
		}
		if sameMunicipality(c.Location, loc) {
			return c
		}
	}
	return nil
}

func sameDistrict(a, b model.Location) bool {
	return a.District != "" && b.District != "" &&
		strings.EqualFold(a.District, b.District)
}

func sameMunicipality(a, b model.Location) bool {
	return a.Municipality != "" && b.Municipality != "" &&
		strings.EqualFold(a.Municipality, b.Municipality)
}
