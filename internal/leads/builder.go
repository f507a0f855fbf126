package leads

import (
	"strings"
	"time"

	"github.com/wattleads/funnel-api/internal/attribution"
	"github.com/wattleads/funnel-api/internal/scoring"
)

const defaultSource = "WattLeads Funnel"

// Builder assembles normalized LeadRecords from raw funnel input. Score and
// qualification are computed eagerly at build time so both values stay
// stable for the record's lifetime.
type Builder struct {
	scorer scoring.Scorer
}

// NewBuilder creates a Builder using the given scorer.
func NewBuilder(scorer scoring.Scorer) *Builder {
	if scorer == nil {
		scorer = scoring.New(scoring.StrategyPremium)
	}
	return &Builder{scorer: scorer}
}

// Scorer exposes the underlying scorer for stateless score previews.
func (b *Builder) Scorer() scoring.Scorer {
	return b.scorer
}

// Build validates the input and produces a submission-ready record. The
// only hard gate is the presence of name, email, and phone; enum-valued
// answers pass through and fail open at scoring time.
func (b *Builder) Build(input LeadInput, attr attribution.Params) (*LeadRecord, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrMissingName
	}
	if !emailShaped(input.Email) {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, ErrMissingPhone
	}

	first, last := splitName(name)

	source := input.Source
	if source == "" {
		source = defaultSource
	}

	in := scoring.Input{
		Services:        input.Services,
		MonthlyProjects: input.MonthlyProjects,
		AvgProjectValue: input.AvgProjectValue,
		MarketingSpend:  input.MarketingSpend,
	}

	return &LeadRecord{
		FirstName:       first,
		LastName:        last,
		Email:           strings.TrimSpace(input.Email),
		Phone:           NormalizePhone(input.Phone),
		Services:        input.Services,
		MonthlyProjects: input.MonthlyProjects,
		AvgProjectValue: input.AvgProjectValue,
		MarketingSpend:  input.MarketingSpend,
		Source:          source,
		Attribution:     attribution.Params(input.Attribution).Merge(attr),
		Score:           b.scorer.Score(in),
		Qualified:       b.scorer.Qualifies(in),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// splitName splits on the first space: everything before is the first name,
// everything after the last name. No space means no last name.
func splitName(name string) (first, last string) {
	if i := strings.Index(name, " "); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// emailShaped checks for an "@"-shaped address. Nothing stronger: upstream
// CRM validation is the real gate.
func emailShaped(email string) bool {
	email = strings.TrimSpace(email)
	i := strings.Index(email, "@")
	return i > 0 && i < len(email)-1
}
