// Package filter selects directory entries by name or modification date.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"blobtool/internal/models"
)

// Kind is the predicate selected for a run.
type Kind int

const (
	NameContains Kind = iota + 1
	NameExact
	NameStartsWith
	NameEndsWith
	Date
)

func (k Kind) String() string {
	switch k {
	case NameContains:
		return "name-contains"
	case NameExact:
		return "name-exact"
	case NameStartsWith:
		return "name-starts-with"
	case NameEndsWith:
		return "name-ends-with"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// Predicate decides whether an entry is reported. The zero value matches nothing.
type Predicate struct {
	Kind  Kind
	Value string

	lower string
	year  int
	month time.Month
	day   int
	loc   *time.Location
}

// New builds a predicate comparing dates in the local time zone.
func New(kind Kind, value string) (Predicate, error) {
	return NewInLocation(kind, value, time.Local)
}

// NewInLocation builds a predicate whose date comparisons happen in loc.
func NewInLocation(kind Kind, value string, loc *time.Location) (Predicate, error) {
	p := Predicate{Kind: kind, Value: value, loc: loc}

	switch kind {
	case NameContains, NameExact, NameStartsWith, NameEndsWith:
		p.lower = strings.ToLower(value)
	case Date:
		d, err := ParseDate(value, loc)
		if err != nil {
			return Predicate{}, err
		}
		p.year, p.month, p.day = d.Date()
	default:
		return Predicate{}, fmt.Errorf("unknown filter kind %d", int(kind))
	}

	return p, nil
}

// ParseDate reads value as a calendar date in loc. Any time of day is kept in
// the result but ignored by Predicate.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// Match reports whether entry satisfies the predicate. Name comparisons are
// case-insensitive and use the entry's full name.
func (p Predicate) Match(entry models.DirectoryEntry) bool {
	name := strings.ToLower(entry.Name)

	switch p.Kind {
	case NameContains:
		return strings.Contains(name, p.lower)
	case NameExact:
		return strings.EqualFold(entry.Name, p.Value)
	case NameStartsWith:
		return strings.HasPrefix(name, p.lower)
	case NameEndsWith:
		return strings.HasSuffix(name, p.lower)
	case Date:
		// Sub-directories carry no timestamp.
		if entry.LastModified.IsZero() {
			return false
		}
		y, m, d := entry.LastModified.In(p.loc).Date()
		return y == p.year && m == p.month && d == p.day
	default:
		return false
	}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %q", p.Kind, p.Value)
}
