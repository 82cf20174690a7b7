package projection

import (
	"fmt"
	"sort"
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/Oliver16/fincast/internal/tax"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TaxCalculator prices the marginal tax on an income increment relative to
// income already counted for the household.
type TaxCalculator interface {
	MarginalTax(annualIncome decimal.Decimal, incomeType domain.IncomeType, existingAnnualIncome decimal.Decimal) tax.Breakdown
}

// Inputs is the external data a projection run reads once at
// initialization and then holds by value.
type Inputs struct {
	Accounts      []domain.Account
	Flows         []domain.RecurringFlow
	IncomeSources []domain.IncomeSource
	Scenarios     []domain.Scenario
}

// Options tunes a single run.
type Options struct {
	// AsOf pins state initialization to a specific reference date instead
	// of the scenario start ("pinned baseline").
	AsOf *time.Time
	// StrictChanges fails the run on an unknown or malformed change
	// instead of skipping it with a recorded warning.
	StrictChanges bool
}

// RunResult is the output of one projection run.
type RunResult struct {
	ScenarioID string
	Records    []domain.ProjectionRecord
	Warnings   []string
}

// RecordStore persists a scenario's projection records as a single atomic
// unit, replacing any prior set.
type RecordStore interface {
	ReplaceRecords(scenarioID string, records []domain.ProjectionRecord) error
}

// Engine runs projections. It is a pure, synchronous fold from initial
// state to a list of records: no I/O, no cancellation, no shared mutable
// state between runs, so callers may run many engines in parallel.
type Engine struct {
	taxCalc TaxCalculator
	log     zerolog.Logger
}

// NewEngine creates a projection engine.
func NewEngine(taxCalc TaxCalculator, log zerolog.Logger) *Engine {
	return &Engine{
		taxCalc: taxCalc,
		log:     log.With().Str("component", "projection").Logger(),
	}
}

// Run executes the scenario's monthly loop in memory and returns the
// records without any persistence side effect.
func (e *Engine) Run(in Inputs, scenarioID string, opts Options) (*RunResult, error) {
	chain, err := ResolveChain(in.Scenarios, scenarioID)
	if err != nil {
		return nil, err
	}
	sc := chain[0]
	if sc.HorizonMonths <= 0 {
		return nil, fmt.Errorf("scenario %s: horizon must be positive, got %d", sc.ID, sc.HorizonMonths)
	}

	ref := sc.StartDate
	if opts.AsOf != nil {
		ref = *opts.AsOf
	}
	horizonEnd := sc.StartDate.AddDate(0, sc.HorizonMonths-1, 0)

	state := buildState(in, ref, horizonEnd, e.taxCalc, e.log)
	changes := MergeChanges(chain)

	result := &RunResult{
		ScenarioID: sc.ID,
		Records:    make([]domain.ProjectionRecord, 0, sc.HorizonMonths),
	}
	warned := make(map[string]bool)

	for month := 0; month < sc.HorizonMonths; month++ {
		date := sc.StartDate.AddDate(0, month, 0)

		state.activateDeferred(date, e.taxCalc)
		state.expireEnded(date)
		if err := e.applyDueChanges(state, changes, date, opts, result, warned); err != nil {
			return nil, err
		}
		state.grow(month, sc)
		result.Records = append(result.Records, state.record(month, date))
		state.advance(month)
	}

	e.log.Debug().
		Str("scenario", sc.ID).
		Int("months", len(result.Records)).
		Int("warnings", len(result.Warnings)).
		Msg("projection run complete")
	return result, nil
}

// RunPersisted runs the scenario and atomically replaces its stored record
// set, making re-runs idempotent and safe to retry as a whole.
func (e *Engine) RunPersisted(store RecordStore, in Inputs, scenarioID string, opts Options) (*RunResult, error) {
	result, err := e.Run(in, scenarioID, opts)
	if err != nil {
		return nil, err
	}
	if err := store.ReplaceRecords(result.ScenarioID, result.Records); err != nil {
		return nil, fmt.Errorf("persist records for scenario %s: %w", result.ScenarioID, err)
	}
	return result, nil
}

// activateDeferred moves deferred flows whose start date has been reached
// into the active lists; activated incomes get their marginal tax line
// priced against current cumulative income.
func (s *State) activateDeferred(date time.Time, calc TaxCalculator) {
	remaining := s.DeferredIncomes[:0]
	for _, li := range s.DeferredIncomes {
		if li.StartDate != nil && li.StartDate.After(date) {
			remaining = append(remaining, li)
			continue
		}
		s.Incomes = append(s.Incomes, li)
		s.attachIncomeTax(li, calc)
	}
	s.DeferredIncomes = remaining

	remainingExp := s.DeferredExpenses[:0]
	for _, li := range s.DeferredExpenses {
		if li.StartDate != nil && li.StartDate.After(date) {
			remainingExp = append(remainingExp, li)
			continue
		}
		s.Expenses = append(s.Expenses, li)
	}
	s.DeferredExpenses = remainingExp
}

// expireEnded retires active flows whose end date has passed; an expired
// income takes its paired tax-expense line with it.
func (s *State) expireEnded(date time.Time) {
	var endedIncomes []string
	for _, li := range s.Incomes {
		if li.EndDate != nil && li.EndDate.Before(date) {
			endedIncomes = append(endedIncomes, li.ID)
		}
	}
	for _, id := range endedIncomes {
		s.removeIncome(id)
	}

	var endedExpenses []string
	for _, li := range s.Expenses {
		if li.EndDate != nil && li.EndDate.Before(date) {
			endedExpenses = append(endedExpenses, li.ID)
		}
	}
	for _, id := range endedExpenses {
		s.removeExpense(id)
	}
}

// applyDueChanges dispatches every merged change whose window covers date.
// One-time changes are applied at most once, tracked by change id. Unknown
// or malformed changes either fail the run (strict) or are skipped with a
// recorded warning.
func (e *Engine) applyDueChanges(s *State, changes []domain.Change, date time.Time, opts Options, result *RunResult, warned map[string]bool) error {
	for _, c := range changes {
		if !c.ActiveAt(date) {
			continue
		}
		if c.Type.IsOneTime() && s.Applied[c.ID] {
			continue
		}
		handler, ok := handlers[c.Type]
		if !ok {
			if opts.StrictChanges {
				return fmt.Errorf("change %s: unknown change type %q", c.ID, c.Type)
			}
			e.skip(result, warned, c, fmt.Sprintf("unknown change type %q", c.Type))
			continue
		}
		if err := handler(s, c, date, e.taxCalc); err != nil {
			if opts.StrictChanges {
				return fmt.Errorf("apply change %s: %w", c.ID, err)
			}
			e.skip(result, warned, c, err.Error())
			continue
		}
		if c.Type.IsOneTime() {
			s.Applied[c.ID] = true
		}
	}
	return nil
}

func (e *Engine) skip(result *RunResult, warned map[string]bool, c domain.Change, reason string) {
	if warned[c.ID] {
		return
	}
	warned[c.ID] = true
	result.Warnings = append(result.Warnings, fmt.Sprintf("skipped change %s: %s", c.ID, reason))
	e.log.Warn().Str("change", c.ID).Str("type", string(c.Type)).Str("reason", reason).Msg("skipped change")
}

// ResolveChain returns the scenario chain from the requested scenario up
// through its ancestors, active scenario first.
func ResolveChain(scenarios []domain.Scenario, scenarioID string) ([]domain.Scenario, error) {
	byID := make(map[string]domain.Scenario, len(scenarios))
	for _, sc := range scenarios {
		byID[sc.ID] = sc
	}
	sc, ok := byID[scenarioID]
	if !ok {
		return nil, fmt.Errorf("scenario %q not found", scenarioID)
	}
	chain := []domain.Scenario{sc}
	seen := map[string]bool{sc.ID: true}
	for sc.ParentID != "" {
		parent, ok := byID[sc.ParentID]
		if !ok {
			return nil, fmt.Errorf("scenario %s: parent %q not found", sc.ID, sc.ParentID)
		}
		if seen[parent.ID] {
			return nil, fmt.Errorf("scenario %s: inheritance cycle through %q", scenarioID, parent.ID)
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		sc = parent
	}
	return chain, nil
}

type setterKey struct {
	changeType domain.ChangeType
	sourceRef  string
}

// MergeChanges merges the enabled changes of a scenario chain, walking from
// the active scenario to the root. A setter-type change claims its
// (type, source reference) key as it is included, so an ancestor's change
// with the same key is excluded entirely rather than both applying; all
// other types accumulate across the whole chain.
func MergeChanges(chain []domain.Scenario) []domain.Change {
	overridden := make(map[setterKey]bool)
	var merged []domain.Change

	for _, sc := range chain {
		for _, c := range sc.Changes {
			if !c.Enabled {
				continue
			}
			if c.Type.IsSetter() {
				key := setterKey{changeType: c.Type, sourceRef: c.SourceRef()}
				if overridden[key] {
					continue
				}
				overridden[key] = true
			}
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].EffectiveDate.Equal(merged[j].EffectiveDate) {
			return merged[i].EffectiveDate.Before(merged[j].EffectiveDate)
		}
		if merged[i].DisplayOrder != merged[j].DisplayOrder {
			return merged[i].DisplayOrder < merged[j].DisplayOrder
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}
