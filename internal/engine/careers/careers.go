// Package careers keeps persisted keyword sets in sync with the free-text
// fields they are extracted from, and ranks job posts for a student by
// Jaccard similarity of keyword sets.
package careers

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a referenced student does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnknownOwnerKind is returned for an owner kind other than job_post or student.
var ErrUnknownOwnerKind = errors.New("unknown owner kind")

// OwnerKind names the entity a keyword belongs to.
type OwnerKind string

const (
	OwnerJobPost OwnerKind = "job_post"
	OwnerStudent OwnerKind = "student"
)

// ParseOwnerKind accepts job_post / student in any case.
func ParseOwnerKind(s string) (OwnerKind, error) {
	switch OwnerKind(strings.ToLower(strings.TrimSpace(s))) {
	case OwnerJobPost:
		return OwnerJobPost, nil
	case OwnerStudent:
		return OwnerStudent, nil
	}
	return "", fmt.Errorf("%w: %q (valid: job_post, student)", ErrUnknownOwnerKind, s)
}

// LevelOfStudy is the level of a degree a student is linked to.
type LevelOfStudy string

const (
	LevelFoundation    LevelOfStudy = "Foundation"
	LevelUndergraduate LevelOfStudy = "Undergraduate"
	LevelPostgraduate  LevelOfStudy = "Postgraduate"
	LevelPhD           LevelOfStudy = "PhD"
)

// Rank returns the ordinal of the level, or -1 for an unrecognised value.
func (l LevelOfStudy) Rank() int {
	switch l {
	case LevelFoundation:
		return 0
	case LevelUndergraduate:
		return 1
	case LevelPostgraduate:
		return 2
	case LevelPhD:
		return 3
	}
	return -1
}

// HighestLevel returns the highest recognised level in levels.
// ok is false when there is none.
func HighestLevel(levels []LevelOfStudy) (highest LevelOfStudy, ok bool) {
	best := -1
	for _, l := range levels {
		if r := l.Rank(); r > best {
			best, highest = r, l
		}
	}
	return highest, best >= 0
}

// Job post attributes read by the eligibility filter.
const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityInternal = "internal"

	StatusOngoing = "ongoing"
	StatusClosed  = "closed"
	StatusRemoved = "removed"

	DegreeAllGrades = "All grades"
	DegreeMasters   = "Master's and above"
)

// Set is a set of keyword stems.
type Set map[string]struct{}

// NewSet collapses words into a set.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether w is in s.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Minus returns the elements of s that are not in other.
func (s Set) Minus(other Set) Set {
	out := make(Set)
	for w := range s {
		if !other.Has(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Sorted returns the elements in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b Set) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for w := range a {
		if b.Has(w) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// compareIDs orders owner IDs numerically when both are integers and
// lexically otherwise.
func compareIDs(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(ai, bi)
	}
	return strings.Compare(a, b)
}
