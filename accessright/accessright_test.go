package accessright

// These tests verify the access right vocabulary and the embargo lifecycle.

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// tests whether only the four access rights are considered valid
func TestIsValid(t *testing.T) {
	assert := assert.New(t)

	assert.True(Open.IsValid())
	assert.True(Embargoed.IsValid())
	assert.True(Restricted.IsValid())
	assert.True(Closed.IsValid())
	assert.False(AccessRight("public").IsValid())
	assert.False(AccessRight("").IsValid())
}

// tests the display metadata for access rights
func TestDisplayMetadata(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Open Access", Open.Title())
	assert.Equal("fa-lock", Closed.Icon())
	assert.Equal("success", Open.Category())
	assert.Equal("warning", Embargoed.Category())
	assert.Equal("danger", Restricted.Category())

	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	assert.Contains(Embargoed.Description(date), "October 1, 2026",
		"Embargo date wasn't interpolated into the description.")
	assert.Equal("Files are publicly accessible.", Open.Description(time.Time{}))
}

// tests whether Options preserves presentation order
func TestOptions(t *testing.T) {
	opts := Options()
	assert.Equal(t, 4, len(opts))
	assert.Equal(t, [2]string{"open", "Open Access"}, opts[0])
	assert.Equal(t, [2]string{"closed", "Closed Access"}, opts[3])
}

// tests whether the embargo check compares at calendar-date granularity
func TestIsEmbargoed(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	assert.True(IsEmbargoed(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), now))
	assert.False(IsEmbargoed(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), now))

	// same calendar day, later clock time: not embargoed
	assert.False(IsEmbargoed(time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC), now))
}

// tests whether Effective opens an embargoed record whose date has passed
func TestEffective(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(Open, Effective(Embargoed, past, now))
	assert.Equal(Embargoed, Effective(Embargoed, future, now))
	assert.Equal(Embargoed, Effective(Embargoed, time.Time{}, now))
	assert.Equal(Restricted, Effective(Restricted, past, now))
	assert.Equal(Open, Effective(Open, time.Time{}, now))
}
