package posting

import (
	"sort"
	"strings"

	"pgcledger/internal/domain/chart"
)

// Role names the function an account plays in a posting rule.
type Role string

const (
	RoleCustomerWithholding    Role = "customer_withholding"
	RoleOutputVAT              Role = "output_vat"
	RoleInputVAT               Role = "input_vat"
	RoleWithholdingPayable     Role = "withholding_payable"
	RoleWithholdingRecoverable Role = "withholding_recoverable"
	RoleRevenue                Role = "revenue"
	RoleExpense                Role = "expense"
	RoleBank                   Role = "bank"
	RoleCash                   Role = "cash"
	RolePayrollExpense         Role = "payroll_expense"
	RolePayrollTax             Role = "payroll_tax"
	RolePayrollPayable         Role = "payroll_payable"
	RoleProfitLoss             Role = "profit_loss"
)

// AccountMap lists, per role, the candidates tried in order.
type AccountMap map[Role][]chart.Candidate

// DefaultAccountMap returns the built-in candidate chains.
func DefaultAccountMap() AccountMap {
	return AccountMap{
		RoleCustomerWithholding:    {chart.Exact("31.8"), chart.Prefix("34")},
		RoleOutputVAT:              {chart.Exact("34.3.1"), chart.Exact("34.5.3"), chart.Prefix("34")},
		RoleInputVAT:               {chart.Exact("34.3.2"), chart.Exact("34.5.2"), chart.Prefix("34")},
		RoleWithholdingPayable:     {chart.Exact("34.1"), chart.Prefix("34.1"), chart.Prefix("34")},
		RoleWithholdingRecoverable: {chart.Exact("34.2"), chart.Prefix("34")},
		RoleRevenue:                {chart.Exact("71"), chart.Prefix("7")},
		RoleExpense:                {chart.Prefix("6")},
		RoleBank:                   {chart.Exact("43"), chart.Prefix("43"), chart.Prefix("12")},
		RoleCash:                   {chart.Exact("45"), chart.Prefix("45"), chart.Prefix("11")},
		RolePayrollExpense:         {chart.Prefix("64"), chart.Prefix("62"), chart.Prefix("6")},
		RolePayrollTax:             {chart.Exact("34.1.1"), chart.Prefix("34")},
		RolePayrollPayable:         {chart.Prefix("36"), chart.Prefix("3")},
		RoleProfitLoss:             {chart.Exact("88")},
	}
}

// ParseCandidates reads "34.3.1, 34.5.3, 34*": a trailing star marks a
// code prefix.
func ParseCandidates(s string) []chart.Candidate {
	var out []chart.Candidate
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasSuffix(part, "*") {
			out = append(out, chart.Prefix(strings.TrimSuffix(part, "*")))
			continue
		}
		out = append(out, chart.Exact(part))
	}
	return out
}

// WithOverrides returns a copy of m where every role named in overrides
// uses the parsed candidates instead. Unknown roles are reported.
func (m AccountMap) WithOverrides(overrides map[string]string) (AccountMap, []string) {
	out := make(AccountMap, len(m))
	for role, cands := range m {
		out[role] = append([]chart.Candidate(nil), cands...)
	}
	var unknown []string
	for name, spec := range overrides {
		role := Role(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := m[role]; !ok {
			unknown = append(unknown, name)
			continue
		}
		if cands := ParseCandidates(spec); len(cands) > 0 {
			out[role] = cands
		}
	}
	sort.Strings(unknown)
	return out, unknown
}
