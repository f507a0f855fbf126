// Package scoring converts raw quiz answers into a lead score and a
// qualification decision. Scoring is additive across four independent
// factors; unrecognized answers always fall to the lowest tier of their
// factor rather than erroring, so a malformed funnel variant can never
// block a submission.
package scoring

// Input is the answer set a funnel page collects for one visitor.
type Input struct {
	Services        []string `json:"services"`
	MonthlyProjects string   `json:"monthlyProjects"`
	AvgProjectValue string   `json:"avgProjectValue"`
	MarketingSpend  string   `json:"marketingSpend"`
}

// Answer buckets shown by the funnel pages. Any other value scores as the
// lowest tier of its factor.
const (
	ProjectValue50kPlus = "$50k+"
	ProjectValue25to50k = "$25k-$50k"
	ProjectValue10to25k = "$10k-$25k"

	MarketingSpend10kPlus = "$10k+"
	MarketingSpend5to10k  = "$5k-$10k"
	MarketingSpend2to5k   = "$2k-$5k"

	MonthlyProjects30Plus = "30+ projects"
	MonthlyProjects16to30 = "16-30 projects"
	MonthlyProjects6to15  = "6-15 projects"
)

const maxScore = 100

// Strategy names the service-mix scoring rule. Two rules shipped at
// different points in the funnel's life; both are kept selectable so a
// campaign can be pinned to either without code changes.
type Strategy string

const (
	// StrategyPremium awards the top service tier when at least one
	// premium service category is selected. This is the primary rule.
	StrategyPremium Strategy = "premium"
	// StrategyCount awards service points by how many categories were
	// selected, ignoring which ones.
	StrategyCount Strategy = "count"
)

// Scorer maps an answer set to a 0-100 score and a qualification flag.
// Both methods are pure and safe for concurrent use.
type Scorer interface {
	Score(in Input) int
	Qualifies(in Input) bool
}

// New returns the scorer for the named strategy. Unknown names fall back
// to the premium-service rule.
func New(strategy Strategy) Scorer {
	if strategy == StrategyCount {
		return countScorer{}
	}
	return premiumScorer{}
}

// premiumServices are the categories that mark a high-ticket installer.
var premiumServices = map[string]struct{}{
	"Whole-Home Automation & Voice Control": {},
	"Home Cinema / Media Room":              {},
	"Enterprise-Grade Networking":           {},
}

func projectValuePoints(v string) int {
	switch v {
	case ProjectValue50kPlus:
		return 30
	case ProjectValue25to50k:
		return 25
	case ProjectValue10to25k:
		return 15
	default:
		return 5
	}
}

func marketingSpendPoints(v string) int {
	switch v {
	case MarketingSpend10kPlus:
		return 25
	case MarketingSpend5to10k:
		return 20
	case MarketingSpend2to5k:
		return 15
	default:
		return 5
	}
}

func monthlyProjectsPoints(v string) int {
	switch v {
	case MonthlyProjects30Plus:
		return 20
	case MonthlyProjects16to30:
		return 15
	case MonthlyProjects6to15:
		return 10
	default:
		return 5
	}
}

// qualifies is the buying-power gate. It is intentionally independent of
// the numeric score: the results page displays both.
func qualifies(in Input) bool {
	valueOK := in.AvgProjectValue == ProjectValue25to50k || in.AvgProjectValue == ProjectValue50kPlus
	spendOK := in.MarketingSpend == MarketingSpend2to5k ||
		in.MarketingSpend == MarketingSpend5to10k ||
		in.MarketingSpend == MarketingSpend10kPlus
	return valueOK && spendOK
}

func total(in Input, servicePoints int) int {
	score := projectValuePoints(in.AvgProjectValue) +
		marketingSpendPoints(in.MarketingSpend) +
		monthlyProjectsPoints(in.MonthlyProjects) +
		servicePoints
	if score > maxScore {
		score = maxScore
	}
	return score
}

type premiumScorer struct{}

func (premiumScorer) Score(in Input) int {
	points := 10
	for _, svc := range in.Services {
		if _, ok := premiumServices[svc]; ok {
			points = 15
			break
		}
	}
	return total(in, points)
}

func (premiumScorer) Qualifies(in Input) bool { return qualifies(in) }

type countScorer struct{}

func (countScorer) Score(in Input) int {
	points := 5
	switch {
	case len(in.Services) >= 4:
		points = 15
	case len(in.Services) >= 2:
		points = 10
	}
	return total(in, points)
}

func (countScorer) Qualifies(in Input) bool { return qualifies(in) }
