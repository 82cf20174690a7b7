// Package config parses and validates the YAML input document that feeds a
// projection run: accounts, recurring flows, income sources, and the
// scenario chain with its changes.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/Oliver16/fincast/internal/projection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Input is the parsed and validated input document.
type Input struct {
	Accounts      []domain.Account
	Flows         []domain.RecurringFlow
	IncomeSources []domain.IncomeSource
	Scenarios     []domain.Scenario
}

// ToInputs converts the document to engine inputs.
func (in *Input) ToInputs() projection.Inputs {
	return projection.Inputs{
		Accounts:      in.Accounts,
		Flows:         in.Flows,
		IncomeSources: in.IncomeSources,
		Scenarios:     in.Scenarios,
	}
}

// BaselineID returns the id of the baseline scenario.
func (in *Input) BaselineID() string {
	for _, sc := range in.Scenarios {
		if sc.IsBaseline {
			return sc.ID
		}
	}
	return ""
}

// document is the raw YAML shape. Scenario changes carry free-form params
// maps that are decoded into their typed variants during conversion, so the
// engine never sees an unvalidated change.
type document struct {
	Accounts      []domain.Account       `yaml:"accounts"`
	Flows         []domain.RecurringFlow `yaml:"flows"`
	IncomeSources []domain.IncomeSource  `yaml:"income_sources"`
	Scenarios     []scenarioDoc          `yaml:"scenarios"`
}

type scenarioDoc struct {
	ID            string          `yaml:"id"`
	Name          string          `yaml:"name"`
	StartDate     time.Time       `yaml:"start_date"`
	HorizonMonths int             `yaml:"horizon_months"`
	InflationRate decimal.Decimal `yaml:"inflation_rate"`
	ReturnRate    decimal.Decimal `yaml:"return_rate"`
	SalaryGrowth  decimal.Decimal `yaml:"salary_growth"`
	IsBaseline    bool            `yaml:"is_baseline"`
	ParentID      string          `yaml:"parent_id"`
	Changes       []changeDoc     `yaml:"changes"`
}

type changeDoc struct {
	ID              string         `yaml:"id"`
	Type            string         `yaml:"type"`
	EffectiveDate   time.Time      `yaml:"effective_date"`
	EndDate         *time.Time     `yaml:"end_date"`
	SourceAccountID string         `yaml:"source_account_id"`
	SourceFlowID    string         `yaml:"source_flow_id"`
	DisplayOrder    int            `yaml:"display_order"`
	Enabled         *bool          `yaml:"enabled"`
	Params          map[string]any `yaml:"params"`
}

// InputParser handles parsing of input configuration files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads an input document from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) (*Input, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Load(data)
}

// Load parses and validates a YAML input document.
func (ip *InputParser) Load(data []byte) (*Input, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	in := &Input{
		Accounts:      doc.Accounts,
		Flows:         doc.Flows,
		IncomeSources: doc.IncomeSources,
	}
	for i, sd := range doc.Scenarios {
		sc, err := convertScenario(sd)
		if err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i, sd.ID, err)
		}
		in.Scenarios = append(in.Scenarios, sc)
	}

	if err := ip.Validate(in); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return in, nil
}

func convertScenario(sd scenarioDoc) (domain.Scenario, error) {
	sc := domain.Scenario{
		ID:            sd.ID,
		Name:          sd.Name,
		StartDate:     sd.StartDate,
		HorizonMonths: sd.HorizonMonths,
		InflationRate: sd.InflationRate,
		ReturnRate:    sd.ReturnRate,
		SalaryGrowth:  sd.SalaryGrowth,
		IsBaseline:    sd.IsBaseline,
		ParentID:      sd.ParentID,
	}
	for i, cd := range sd.Changes {
		ch, err := convertChange(cd)
		if err != nil {
			return sc, fmt.Errorf("change %d (%s): %w", i, cd.ID, err)
		}
		sc.Changes = append(sc.Changes, ch)
	}
	return sc, nil
}

func convertChange(cd changeDoc) (domain.Change, error) {
	ch := domain.Change{
		ID:              cd.ID,
		Type:            domain.ChangeType(cd.Type),
		EffectiveDate:   cd.EffectiveDate,
		EndDate:         cd.EndDate,
		SourceAccountID: cd.SourceAccountID,
		SourceFlowID:    cd.SourceFlowID,
		DisplayOrder:    cd.DisplayOrder,
		Enabled:         cd.Enabled == nil || *cd.Enabled,
	}
	// Changes need stable ids for one-time tracking and deterministic
	// ordering, so a missing id gets a generated one.
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	if ch.EffectiveDate.IsZero() {
		return ch, fmt.Errorf("effective_date is required")
	}
	params, err := domain.ParseParams(ch.Type, cd.Params)
	if err != nil {
		return ch, err
	}
	ch.Params = params
	return ch, nil
}

// Validate checks the document's cross-cutting invariants: well-formed
// accounts, flows and income sources, exactly one baseline scenario, unique
// scenario ids, sane rates, and a resolvable acyclic parent chain for every
// scenario.
func (ip *InputParser) Validate(in *Input) error {
	accountIDs := make(map[string]bool, len(in.Accounts))
	for i, acct := range in.Accounts {
		if acct.ID == "" {
			return fmt.Errorf("account %d: id is required", i)
		}
		if accountIDs[acct.ID] {
			return fmt.Errorf("duplicate account id %q", acct.ID)
		}
		accountIDs[acct.ID] = true
		if acct.Kind != domain.KindAsset && acct.Kind != domain.KindLiability {
			return fmt.Errorf("account %s: kind must be asset or liability, got %q", acct.ID, acct.Kind)
		}
		if acct.Kind == domain.KindLiability && acct.Liability != nil {
			if acct.Liability.AnnualRate.IsNegative() {
				return fmt.Errorf("account %s: annual rate cannot be negative", acct.ID)
			}
		}
	}

	for i, flow := range in.Flows {
		if flow.ID == "" {
			return fmt.Errorf("flow %d: id is required", i)
		}
		if !flow.Frequency.IsValid() {
			return fmt.Errorf("flow %s: unknown frequency %q", flow.ID, flow.Frequency)
		}
		switch flow.Type {
		case domain.FlowIncome, domain.FlowExpense, domain.FlowTransfer:
		default:
			return fmt.Errorf("flow %s: unknown flow type %q", flow.ID, flow.Type)
		}
		if flow.Type == domain.FlowTransfer && flow.LinkedAccountID == "" {
			return fmt.Errorf("flow %s: transfers require a linked account", flow.ID)
		}
	}

	for i, src := range in.IncomeSources {
		if src.ID == "" {
			return fmt.Errorf("income source %d: id is required", i)
		}
		if !src.PayFrequency.IsValid() {
			return fmt.Errorf("income source %s: unknown pay frequency %q", src.ID, src.PayFrequency)
		}
		switch src.Classification {
		case domain.IncomeEmployment, domain.IncomeSelfEmployment:
		default:
			return fmt.Errorf("income source %s: unknown classification %q", src.ID, src.Classification)
		}
		for _, ded := range src.Deductions {
			if ded.Percent == nil && ded.Amount == nil {
				return fmt.Errorf("income source %s: deduction %s needs a percent or an amount", src.ID, ded.ID)
			}
		}
	}

	if len(in.Scenarios) == 0 {
		return fmt.Errorf("no scenarios provided")
	}
	baselines := 0
	scenarioIDs := make(map[string]bool, len(in.Scenarios))
	for _, sc := range in.Scenarios {
		if sc.ID == "" {
			return fmt.Errorf("scenario id is required")
		}
		if scenarioIDs[sc.ID] {
			return fmt.Errorf("duplicate scenario id %q", sc.ID)
		}
		scenarioIDs[sc.ID] = true
		if sc.IsBaseline {
			baselines++
		}
		if err := validateScenario(sc); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.ID, err)
		}
	}
	if baselines != 1 {
		return fmt.Errorf("exactly one baseline scenario is required, got %d", baselines)
	}
	for _, sc := range in.Scenarios {
		if _, err := projection.ResolveChain(in.Scenarios, sc.ID); err != nil {
			return err
		}
	}
	return nil
}

func validateScenario(sc domain.Scenario) error {
	if sc.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if sc.HorizonMonths <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", sc.HorizonMonths)
	}
	// Deflation is allowed but extreme assumptions are rejected as typos.
	if outsideRange(sc.InflationRate, -0.10, 0.20) {
		return fmt.Errorf("inflation rate must be between -10%% and 20%%, got %s", sc.InflationRate)
	}
	if outsideRange(sc.ReturnRate, -0.50, 0.50) {
		return fmt.Errorf("return rate must be between -50%% and 50%%, got %s", sc.ReturnRate)
	}
	if outsideRange(sc.SalaryGrowth, -0.50, 0.50) {
		return fmt.Errorf("salary growth must be between -50%% and 50%%, got %s", sc.SalaryGrowth)
	}
	return nil
}

func outsideRange(v decimal.Decimal, lo, hi float64) bool {
	return v.LessThan(decimal.NewFromFloat(lo)) || v.GreaterThan(decimal.NewFromFloat(hi))
}
