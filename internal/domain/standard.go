package domain

import (
	"errors"
	"fmt"
	"strings"
)

// StandardID identifies one NCEA achievement standard (e.g. "91934")
type StandardID string

// ComponentKind is the part of an assessment package being requested
type ComponentKind string

const (
	KindAnswers     ComponentKind = "Answers"
	KindAssessment  ComponentKind = "Assessment"
	KindExcellence  ComponentKind = "Excellence"
	KindMerit       ComponentKind = "Merit"
	KindAchievement ComponentKind = "Achievement"
)

// Category groups component kinds for size accounting
type Category string

const (
	CategoryAnswers    Category = "answers"
	CategoryAssessment Category = "assessment"
	CategoryExemplar   Category = "exemplar"
)

var (
	ErrStandardNotFound = errors.New("standard not found")
	ErrMalformedTitle   = errors.New("malformed standard title")
	ErrInvalidStandard  = errors.New("invalid standard number")
)

// DefaultKinds returns every component kind in submission order
func DefaultKinds() []ComponentKind {
	return []ComponentKind{KindAnswers, KindAssessment, KindExcellence, KindMerit, KindAchievement}
}

// DefaultYears returns the years covered when none are configured
func DefaultYears() []int {
	years := make([]int, 0, 12)
	for y := 2012; y <= 2023; y++ {
		years = append(years, y)
	}
	return years
}

// ParseStandardID validates a raw standard number. Only ASCII digits are accepted.
func ParseStandardID(raw string) (StandardID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidStandard
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidStandard, raw)
		}
	}
	return StandardID(raw), nil
}

// IsExemplar reports whether the kind is one of the grade-band exemplars
func (k ComponentKind) IsExemplar() bool {
	return k != KindAnswers && k != KindAssessment
}

// Category returns the size-accounting category for the kind
func (k ComponentKind) Category() Category {
	switch k {
	case KindAnswers:
		return CategoryAnswers
	case KindAssessment:
		return CategoryAssessment
	default:
		return CategoryExemplar
	}
}

// ValidateKind checks if a component kind is known
func ValidateKind(kind ComponentKind) bool {
	for _, k := range DefaultKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Standard holds the catalog metadata for a standard
type Standard struct {
	ID         StandardID `json:"id"`
	Title      string     `json:"title"`
	Credits    string     `json:"credits"`
	Assessment string     `json:"assessment"`
	Level      string     `json:"level"`
}

// Layout derives the component and subject directory names from the title.
// "Mathematics and Statistics, Algebra" gives ("Algebra", "Mathematics and Statistics 91934");
// a title without a comma is used for both.
func (s *Standard) Layout() (component string, subject string, err error) {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return "", "", fmt.Errorf("%w: standard %s has no title", ErrMalformedTitle, s.ID)
	}

	component, subject = title, title
	if strings.Contains(title, ",") {
		parts := strings.SplitN(title, ", ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return "", "", fmt.Errorf("%w: %q", ErrMalformedTitle, title)
		}
		subject, component = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}

	return component, subject + " " + string(s.ID), nil
}

// DownloadTask is one (standard, year, kind) resolution unit
type DownloadTask struct {
	Standard StandardID
	Year     int
	Kind     ComponentKind
	DestDir  string // standard directory; files land in DestDir/Kind/
}

// String returns a short label used in logs
func (t DownloadTask) String() string {
	return fmt.Sprintf("%s %d %s", t.Standard, t.Year, t.Kind)
}
