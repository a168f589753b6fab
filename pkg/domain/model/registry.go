package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// Registry holds the evaluator identities and, for each dimension, the
// evaluators whose view is most authoritative (first entry wins).
// It is read-only once built and safe to share across runs.
type Registry struct {
	identities map[string]*EvaluatorIdentity
	order      []string // preserves registration order
	priorities map[types.Dimension][]string
}

// NewRegistry validates the identities and priority lists and builds a Registry.
// A zero weight is replaced by DefaultWeight and an empty provider by ProviderRule.
func NewRegistry(identities []EvaluatorIdentity, priorities map[types.Dimension][]string) (*Registry, error) {
	r := &Registry{
		identities: make(map[string]*EvaluatorIdentity, len(identities)),
		priorities: make(map[types.Dimension][]string, len(priorities)),
	}

	for i, id := range identities {
		if id.Name == "" {
			return nil, goerr.Wrap(ErrInvalidRegistry, "evaluator name is required", goerr.V("index", i))
		}
		if _, exists := r.identities[id.Name]; exists {
			return nil, goerr.Wrap(ErrDuplicateEvaluator, "evaluator registered twice", goerr.V(EvaluatorKey, id.Name))
		}
		if id.Weight < 0 {
			return nil, goerr.Wrap(ErrInvalidRegistry, "evaluator weight must be positive",
				goerr.V(EvaluatorKey, id.Name), goerr.V("weight", id.Weight))
		}
		if id.Weight == 0 {
			id.Weight = DefaultWeight
		}
		if id.Provider == "" {
			id.Provider = types.ProviderRule
		}
		if err := id.Provider.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidRegistry, "invalid evaluator provider",
				goerr.V(EvaluatorKey, id.Name), goerr.V("provider", id.Provider))
		}

		entry := id
		entry.Focus = slices.Clone(id.Focus)
		r.identities[id.Name] = &entry
		r.order = append(r.order, id.Name)
	}

	for dim, names := range priorities {
		if err := dim.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidRegistry, "invalid priority dimension", goerr.V(DimensionKey, dim))
		}
		for _, name := range names {
			if _, ok := r.identities[name]; !ok {
				return nil, goerr.Wrap(ErrUnknownEvaluator, "priority list references unknown evaluator",
					goerr.V(DimensionKey, dim), goerr.V(EvaluatorKey, name))
			}
		}
		r.priorities[dim] = slices.Clone(names)
	}

	return r, nil
}

// Get retrieves an evaluator identity by name
func (r *Registry) Get(name string) (*EvaluatorIdentity, error) {
	id, ok := r.identities[name]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownEvaluator, "evaluator not found",
			goerr.V(EvaluatorKey, name))
	}
	return id, nil
}

// List returns all identities in registration order
func (r *Registry) List() []*EvaluatorIdentity {
	result := make([]*EvaluatorIdentity, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.identities[name])
	}
	return result
}

// Names returns all evaluator names in registration order
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Select resolves names to identities, keeping the order given.
// A nil slice selects every registered evaluator; an empty non-nil slice selects none.
func (r *Registry) Select(names []string) ([]*EvaluatorIdentity, error) {
	if names == nil {
		return r.List(), nil
	}

	result := make([]*EvaluatorIdentity, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		id, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, id)
	}
	return result, nil
}

// Weight returns the trust weight of the named evaluator.
// Evaluators outside the registry carry DefaultWeight.
func (r *Registry) Weight(name string) float64 {
	if id, ok := r.identities[name]; ok {
		return id.Weight
	}
	return DefaultWeight
}

// Role returns the role label of the named evaluator, or "" if unknown
func (r *Registry) Role(name string) string {
	if id, ok := r.identities[name]; ok {
		return id.Role
	}
	return ""
}

// Priority returns the evaluators ranked for dim, most authoritative first
func (r *Registry) Priority(dim types.Dimension) []string {
	return slices.Clone(r.priorities[dim])
}

// DefaultRegistry returns the built-in evaluator panel
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultIdentities(), DefaultPriorities())
	if err != nil {
		// built-in tables are static; a failure here is a programming error
		panic(err)
	}
	return reg
}

// DefaultIdentities returns the built-in evaluator panel definitions
func DefaultIdentities() []EvaluatorIdentity {
	return []EvaluatorIdentity{
		{
			Name:        "claude_opus",
			Role:        "deep_reasoning_critic",
			Focus:       []string{"business_model_nuance", "ethical_risks", "long_term_viability"},
			Weight:      1.5,
			Description: "Senior partner conducting deep diligence",
			Provider:    types.ProviderAnthropic,
		},
		{
			Name:        "gpt_o3",
			Role:        "vc_skeptic",
			Focus:       []string{"market_size_validation", "competitive_threats", "exit_strategy"},
			Weight:      1.3,
			Description: "Battle-hardened VC who has seen 10,000 pitches",
			Provider:    types.ProviderOpenAI,
		},
		{
			Name:        "gemini_flash",
			Role:        "speed_analyst",
			Focus:       []string{"market_research", "competitive_landscape", "trend_analysis"},
			Weight:      1.0,
			Description: "Fast market analyst with broad knowledge",
			Provider:    types.ProviderGemini,
		},
		{
			Name:        "deepseek_r1",
			Role:        "technical_auditor",
			Focus:       []string{"architecture_feasibility", "scaling_bottlenecks", "tech_debt"},
			Weight:      1.2,
			Description: "Principal engineer auditing technical feasibility",
			Provider:    types.ProviderDeepSeek,
		},
		{
			Name:        "grok",
			Role:        "contrarian",
			Focus:       []string{"unconventional_angles", "black_swan_risks", "paradigm_shifts"},
			Weight:      1.1,
			Description: "Contrarian thinker finding unconventional risks",
			Provider:    types.ProviderXAI,
		},
		{
			Name:        "kimi",
			Role:        "apac_expansion",
			Focus:       []string{"china_market", "regulatory_compliance", "localization"},
			Weight:      0.8,
			Description: "APAC market specialist",
			Provider:    types.ProviderMoonshot,
		},
		{
			Name:        "qwen",
			Role:        "cost_optimizer",
			Focus:       []string{"unit_economics", "burn_rate", "capital_efficiency"},
			Weight:      1.0,
			Description: "Cost optimization specialist",
			Provider:    types.ProviderAlibaba,
		},
	}
}

// DefaultPriorities returns the built-in per-dimension authority ranking
func DefaultPriorities() map[types.Dimension][]string {
	return map[types.Dimension][]string{
		types.DimensionMarketViability:      {"gpt_o3", "gemini_flash", "claude_opus"},
		types.DimensionTechnicalFeasibility: {"deepseek_r1", "claude_opus", "grok"},
		types.DimensionUnitEconomics:        {"qwen", "gpt_o3", "claude_opus"},
		types.DimensionCompetitiveMoats:     {"gpt_o3", "grok", "claude_opus"},
		types.DimensionScalingBottlenecks:   {"deepseek_r1", "kimi", "claude_opus"},
	}
}
