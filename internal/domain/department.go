package domain

import "strings"

// Department is the classification target for an incoming question.
type Department string

const (
	DepartmentEngineering Department = "engineering"
	DepartmentFinance     Department = "finance"
	DepartmentHR          Department = "hr"
	DepartmentMarketing   Department = "marketing"
	DepartmentGeneral     Department = "general"
)

// FallbackDepartment is used when the classifier returns something outside the
// known set. Unknowns route to HR, as a named and logged decision.
const FallbackDepartment = DepartmentHR

// Departments lists all valid routing targets.
var Departments = []Department{
	DepartmentEngineering,
	DepartmentFinance,
	DepartmentHR,
	DepartmentMarketing,
	DepartmentGeneral,
}

// ParseDepartment normalizes a classifier answer into a Department.
// The second return value reports whether the input was a known department.
func ParseDepartment(s string) (Department, bool) {
	switch Department(strings.ToLower(strings.TrimSpace(s))) {
	case DepartmentEngineering:
		return DepartmentEngineering, true
	case DepartmentFinance:
		return DepartmentFinance, true
	case DepartmentHR:
		return DepartmentHR, true
	case DepartmentMarketing:
		return DepartmentMarketing, true
	case DepartmentGeneral:
		return DepartmentGeneral, true
	default:
		return FallbackDepartment, false
	}
}

// DomainKey identifies one isolated knowledge base (chunks plus its two
// indices). Finance owns two domains, so DomainKey is distinct from Department.
type DomainKey string

const (
	DomainEngineering      DomainKey = "engineering"
	DomainFinanceSummary   DomainKey = "finance_summary"
	DomainFinanceQuarterly DomainKey = "finance_quarterly"
	DomainGeneral          DomainKey = "general"
	DomainHR               DomainKey = "hr"
	DomainMarketing        DomainKey = "marketing"
)

// DomainKeys lists every knowledge domain in ingestion order.
var DomainKeys = []DomainKey{
	DomainEngineering,
	DomainFinanceSummary,
	DomainFinanceQuarterly,
	DomainGeneral,
	DomainHR,
	DomainMarketing,
}

// departmentDomains is the dispatch table from a routed department to the
// knowledge domains consulted for it. Finance fans out to both finance
// report domains.
var departmentDomains = map[Department][]DomainKey{
	DepartmentEngineering: {DomainEngineering},
	DepartmentFinance:     {DomainFinanceSummary, DomainFinanceQuarterly},
	DepartmentHR:          {DomainHR},
	DepartmentMarketing:   {DomainMarketing},
	DepartmentGeneral:     {DomainGeneral},
}

// DomainsFor returns the knowledge domains backing a department.
func DomainsFor(d Department) []DomainKey {
	return departmentDomains[d]
}

// ParseDomainKey validates a domain name from configuration or CLI flags.
func ParseDomainKey(s string) (DomainKey, bool) {
	key := DomainKey(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DomainKeys {
		if key == known {
			return key, true
		}
	}
	return "", false
}
