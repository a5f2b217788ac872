package infrastructure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

// Provider names accepted in configuration
const (
	ProviderNZQA            = "nzqa"
	ProviderStudyTime       = "studytime"
	ProviderNoBrainTooSmall = "nobraintoosmall"
)

// TemplateProvider builds URLs by expanding per-kind templates.
// Placeholders: {base}, {id}, {year}, {kind}. An empty template means the
// provider never serves that kind.
type TemplateProvider struct {
	name       string
	base       string
	answers    string
	assessment string
	exemplar   string
}

// Name returns the provider name
func (p TemplateProvider) Name() string {
	return p.name
}

// URLFor expands the template for the requested kind
func (p TemplateProvider) URLFor(id domain.StandardID, year int, kind domain.ComponentKind) (string, error) {
	var tmpl string
	switch kind {
	case domain.KindAnswers:
		tmpl = p.answers
	case domain.KindAssessment:
		tmpl = p.assessment
	default:
		tmpl = p.exemplar
	}
	if tmpl == "" {
		return "", fmt.Errorf("%s %s: %w", p.name, kind, domain.ErrNotAvailable)
	}

	r := strings.NewReplacer(
		"{base}", strings.TrimSuffix(p.base, "/"),
		"{id}", string(id),
		"{year}", strconv.Itoa(year),
		"{kind}", string(kind),
	)
	return r.Replace(tmpl), nil
}

// NewNZQAProvider is the authoritative source; it serves every kind
func NewNZQAProvider(base string) TemplateProvider {
	if base == "" {
		base = "https://www.nzqa.govt.nz/nqfdocs/ncea-resource"
	}
	return TemplateProvider{
		name:       "NZQA",
		base:       base,
		answers:    "{base}/schedules/{year}/{id}-ass-{year}.pdf",
		assessment: "{base}/exams/{year}/{id}-exm-{year}.pdf",
		exemplar:   "{base}/exemplars/{year}/{id}-exp-{year}-{kind}.pdf",
	}
}

// NewStudyTimeProvider mirrors answers and assessment papers only
func NewStudyTimeProvider(base string) TemplateProvider {
	if base == "" {
		base = "https://studytime.co.nz/wp-content/uploads/2024/06"
	}
	return TemplateProvider{
		name:       "StudyTime",
		base:       base,
		answers:    "{base}/{id}-ass-{year}.pdf",
		assessment: "{base}/{id}-exm-{year}.pdf",
	}
}

// NewNoBrainTooSmallProvider mirrors answers and assessment papers only
func NewNoBrainTooSmallProvider(base string) TemplateProvider {
	if base == "" {
		base = "https://www.nobraintoosmall.co.nz/NCEA/phy3/nqfdocs/ncea-resource"
	}
	return TemplateProvider{
		name:       "NoBrainTooSmall",
		base:       base,
		answers:    "{base}/schedules/{year}/{id}-ass-{year}.pdf",
		assessment: "{base}/exams/{year}/{id}-exm-{year}.pdf",
	}
}

// DefaultProviders returns the built-in providers in priority order
func DefaultProviders() []domain.Provider {
	return []domain.Provider{
		NewNZQAProvider(""),
		NewStudyTimeProvider(""),
		NewNoBrainTooSmallProvider(""),
	}
}

// ValidateProviderName checks if a configured provider name is known
func ValidateProviderName(name string) bool {
	switch strings.ToLower(name) {
	case ProviderNZQA, ProviderStudyTime, ProviderNoBrainTooSmall:
		return true
	}
	return false
}

// ProvidersFromConfig builds the ranked provider list in configuration order
func ProvidersFromConfig(configs []domain.ProviderConfig) ([]domain.Provider, error) {
	if len(configs) == 0 {
		return DefaultProviders(), nil
	}

	providers := make([]domain.Provider, 0, len(configs))
	seen := make(map[string]bool)
	for _, c := range configs {
		name := strings.ToLower(c.Name)
		if seen[name] {
			return nil, fmt.Errorf("provider listed twice: %s", c.Name)
		}
		seen[name] = true

		switch name {
		case ProviderNZQA:
			providers = append(providers, NewNZQAProvider(c.BaseURL))
		case ProviderStudyTime:
			providers = append(providers, NewStudyTimeProvider(c.BaseURL))
		case ProviderNoBrainTooSmall:
			providers = append(providers, NewNoBrainTooSmallProvider(c.BaseURL))
		default:
			return nil, fmt.Errorf("unknown provider: %s", c.Name)
		}
	}
	return providers, nil
}
