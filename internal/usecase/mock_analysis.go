package usecase

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/seafresh/backend/internal/domain"
)

// Scenario is a canned analysis used when the vision provider is unavailable
type Scenario struct {
	Name    string
	Labels  []domain.Label
	Objects []domain.DetectedObject
}

// DefaultScenarios are the fish, shrimp and crab fallbacks
var DefaultScenarios = []Scenario{
	{
		Name: "fish",
		Labels: []domain.Label{
			domain.NewLabel("Fish", 0.95),
			domain.NewLabel("Seafood", 0.89),
			domain.NewLabel("Salmon", 0.82),
			domain.NewLabel("Food", 0.78),
		},
		Objects: []domain.DetectedObject{
			domain.NewDetectedObject("Fish", 0.91),
		},
	},
	{
		Name: "shrimp",
		Labels: []domain.Label{
			domain.NewLabel("Shrimp", 0.93),
			domain.NewLabel("Seafood", 0.91),
			domain.NewLabel("Crustacean", 0.87),
			domain.NewLabel("Food", 0.80),
		},
		Objects: []domain.DetectedObject{
			domain.NewDetectedObject("Shrimp", 0.88),
		},
	},
	{
		Name: "crab",
		Labels: []domain.Label{
			domain.NewLabel("Crab", 0.94),
			domain.NewLabel("Seafood", 0.90),
			domain.NewLabel("Crustacean", 0.85),
			domain.NewLabel("Shellfish", 0.79),
		},
		Objects: []domain.DetectedObject{
			domain.NewDetectedObject("Crab", 0.89),
		},
	},
}

// ScenarioSelector picks the scenario for one mock analysis.
// scenarios is never empty.
type ScenarioSelector interface {
	Select(scenarios []Scenario) Scenario
}

// RandomSelector picks uniformly at random
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector uses the global source
func NewRandomSelector() *RandomSelector {
	return &RandomSelector{}
}

// NewSeededSelector gives a reproducible sequence of picks
func NewSeededSelector(seed uint64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Select implements ScenarioSelector
func (s *RandomSelector) Select(scenarios []Scenario) Scenario {
	if s.rng == nil {
		return scenarios[rand.IntN(len(scenarios))]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return scenarios[s.rng.IntN(len(scenarios))]
}

// FixedSelector always picks the scenario with the given name, or the
// first scenario when no name matches
type FixedSelector string

// Select implements ScenarioSelector
func (f FixedSelector) Select(scenarios []Scenario) Scenario {
	for _, s := range scenarios {
		if s.Name == string(f) {
			return s
		}
	}
	return scenarios[0]
}

// MockAnalysisGenerator builds a well-formed result from a canned scenario
type MockAnalysisGenerator struct {
	scenarios []Scenario
	selector  ScenarioSelector
	matcher   *ProductMatcher
}

// NewMockAnalysisGenerator creates a generator. Empty scenarios fall back
// to DefaultScenarios and a nil selector to uniform random selection.
func NewMockAnalysisGenerator(matcher *ProductMatcher, scenarios []Scenario, selector ScenarioSelector) *MockAnalysisGenerator {
	if len(scenarios) == 0 {
		scenarios = DefaultScenarios
	}
	if selector == nil {
		selector = NewRandomSelector()
	}
	return &MockAnalysisGenerator{
		scenarios: scenarios,
		selector:  selector,
		matcher:   matcher,
	}
}

// Generate returns the mock result and the name of the scenario used.
// Suggestions come from the same matcher as the live path.
func (g *MockAnalysisGenerator) Generate(ctx context.Context) (*domain.AnalysisResult, string, error) {
	scenario := g.selector.Select(g.scenarios)

	labels := append([]domain.Label{}, scenario.Labels...)
	objects := append([]domain.DetectedObject{}, scenario.Objects...)

	products, err := g.matcher.GetSuggestedProducts(ctx, labels, objects)
	if err != nil {
		return nil, scenario.Name, err
	}

	return &domain.AnalysisResult{
		Success:           true,
		Labels:            labels,
		Objects:           objects,
		Text:              []string{},
		SeafoodDetected:   true,
		SuggestedProducts: products,
		MockData:          true,
	}, scenario.Name, nil
}
