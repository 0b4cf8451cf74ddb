package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunaso-platform/grievance/internal/model"
)

func TestClassifyDeterminism(t *testing.T) {
	e := New()

	first := e.Classify("Power outage in our tole", "transformer sparking near the school gate")
	for i := 0; i < 50; i++ {
		again := e.Classify("Power outage in our tole", "transformer sparking near the school gate")
		require.Equal(t, first, again)
	}
}

func TestClassifyElectricity(t *testing.T) {
	e := New()

	c := e.Classify("Power outage", "transformer blew and the whole ward has no electricity")
	assert.Equal(t, "electricity", c.CategoryKey)
	assert.Equal(t, "Nepal Electricity Authority", c.Department)
	assert.Equal(t, "Federal", c.GovernmentLevel)
	assert.False(t, c.IsUrgent)
	assert.Equal(t, 24, c.SLAHours)
}

func TestClassifyUrgencyOverridesSLA(t *testing.T) {
	e := New()

	c := e.Classify("Power outage", "transformer exploded")
	assert.Equal(t, "electricity", c.CategoryKey)
	assert.True(t, c.IsUrgent)
	assert.Equal(t, model.PriorityHigh, c.Priority)
	assert.Equal(t, 12, c.SLAHours)
}

func TestClassifyMultiWordKeywordWeight(t *testing.T) {
	e := New()

	// "load shedding" alone scores 3 for electricity; a single water
	// keyword scores 1, so electricity must win.
	c := e.Classify("load shedding", "tap")
	assert.Equal(t, "electricity", c.CategoryKey)
}

func TestClassifyNoMatchFallsBackToOther(t *testing.T) {
	e := New()

	c := e.Classify("something vague", "nothing identifiable here")
	assert.Equal(t, "other", c.CategoryKey)
	assert.Equal(t, "General Grievance", c.Category)
	assert.Equal(t, 50, c.Confidence)
	assert.Equal(t, model.PriorityNormal, c.Priority)
	assert.False(t, c.IsUrgent)
}

func TestClassifyConfidenceCap(t *testing.T) {
	e := New()

	// Stacking most of a category's keywords saturates the confidence cap.
	c := e.Classify(
		"corruption bribery bribe tender procurement fraud",
		"nepotism kickback embezzlement scam rigging misuse ghost",
	)
	assert.Equal(t, "corruption", c.CategoryKey)
	assert.Equal(t, 98, c.Confidence)
	assert.Equal(t, model.PriorityMedium, c.Priority)
}

func TestClassifyTieKeepsFirstRegisteredCategory(t *testing.T) {
	e := New()

	// One single-word hit each for corruption and water; corruption is
	// registered first and must keep the tie.
	c := e.Classify("fraud", "tap")
	assert.Equal(t, "corruption", c.CategoryKey)
}

func TestClassifyCaseInsensitive(t *testing.T) {
	e := New()

	lower := e.Classify("pothole on the highway", "")
	upper := e.Classify("POTHOLE ON THE HIGHWAY", "")
	assert.Equal(t, lower, upper)
	assert.Equal(t, "road", lower.CategoryKey)
}
