package accessright

// Access rights for deposit records. A record is open, embargoed, restricted,
// or closed; an embargoed record becomes effectively open once its embargo
// date has passed.

import (
	"fmt"
	"time"
)

type AccessRight string

const (
	Open       AccessRight = "open"
	Embargoed  AccessRight = "embargoed"
	Restricted AccessRight = "restricted"
	Closed     AccessRight = "closed"
)

// all access rights with their display titles, in presentation order
var options = []struct {
	Value AccessRight
	Title string
}{
	{Open, "Open Access"},
	{Embargoed, "Embargoed Access"},
	{Restricted, "Restricted Access"},
	{Closed, "Closed Access"},
}

var icons = map[AccessRight]string{
	Open:       "fa-unlock",
	Embargoed:  "fa-ban",
	Restricted: "fa-key",
	Closed:     "fa-lock",
}

var descriptions = map[AccessRight]string{
	Open: "Files are publicly accessible.",
	Embargoed: "Files are currently under embargo but will be publicly " +
		"accessible after %s.",
	Restricted: "You may request access to the files in this upload, " +
		"provided that you fulfil the conditions below. The decision " +
		"whether to grant/deny access is solely under the responsibility " +
		"of the record owner.",
	Closed: "Files are not publicly accessible.",
}

var categories = map[AccessRight]string{
	Open:       "success",
	Embargoed:  "warning",
	Restricted: "danger",
	Closed:     "danger",
}

// IsValid reports whether the value is one of the four access rights.
func (a AccessRight) IsValid() bool {
	for _, opt := range options {
		if opt.Value == a {
			return true
		}
	}
	return false
}

// Title returns the display title for an access right.
func (a AccessRight) Title() string {
	for _, opt := range options {
		if opt.Value == a {
			return opt.Title
		}
	}
	return ""
}

// Icon returns the icon name for an access right.
func (a AccessRight) Icon() string {
	return icons[a]
}

// Category returns the display category ("success", "warning", "danger")
// for an access right.
func (a AccessRight) Category() string {
	return categories[a]
}

// Description returns the human-readable description for an access right.
// For embargoed records the embargo date is interpolated into the text.
func (a AccessRight) Description(embargoDate time.Time) string {
	if a == Embargoed {
		return fmt.Sprintf(descriptions[a], embargoDate.Format("January 2, 2006"))
	}
	return descriptions[a]
}

// Options returns all access rights paired with their titles.
func Options() [][2]string {
	opts := make([][2]string, len(options))
	for i, opt := range options {
		opts[i] = [2]string{string(opt.Value), opt.Title}
	}
	return opts
}

// IsEmbargoed reports whether a date is still under embargo at the given
// time. The comparison is at calendar-date granularity.
func IsEmbargoed(embargoDate, now time.Time) bool {
	return toDate(embargoDate).After(toDate(now))
}

// Effective returns the access right in effect at the given time: an
// embargoed record whose embargo date has passed is effectively open.
func Effective(value AccessRight, embargoDate time.Time, now time.Time) AccessRight {
	if value == Embargoed && !embargoDate.IsZero() && !IsEmbargoed(embargoDate, now) {
		return Open
	}
	return value
}

func toDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpiredEmbargoQuery is the contract for finding records whose embargo
// period has expired: all record identifiers with an embargoed access right
// and an embargo date earlier than the given time. The comparison here is at
// timestamp granularity, unlike the calendar-date check used during
// validation.
type ExpiredEmbargoQuery interface {
	FindExpiredEmbargoes(now time.Time) ([]string, error)
}
