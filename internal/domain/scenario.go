package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scenario is one projection configuration. A scenario may inherit the
// enabled changes of its ancestors via ParentID; exactly one baseline
// scenario exists per household (enforced by the data collaborator and
// re-checked at config validation).
type Scenario struct {
	ID            string          `yaml:"id" json:"id"`
	Name          string          `yaml:"name" json:"name"`
	StartDate     time.Time       `yaml:"start_date" json:"startDate"`
	HorizonMonths int             `yaml:"horizon_months" json:"horizonMonths"`
	InflationRate decimal.Decimal `yaml:"inflation_rate" json:"inflationRate"`
	ReturnRate    decimal.Decimal `yaml:"return_rate" json:"returnRate"`
	SalaryGrowth  decimal.Decimal `yaml:"salary_growth" json:"salaryGrowth"`
	IsBaseline    bool            `yaml:"is_baseline" json:"isBaseline"`
	ParentID      string          `yaml:"parent_id,omitempty" json:"parentId,omitempty"`
	Changes       []Change        `yaml:"changes,omitempty" json:"changes,omitempty"`
}
