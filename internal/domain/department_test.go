package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDepartment_Known(t *testing.T) {
	for _, d := range Departments {
		parsed, ok := ParseDepartment(string(d))
		assert.True(t, ok)
		assert.Equal(t, d, parsed)
	}
}

func TestParseDepartment_NormalizesCaseAndSpace(t *testing.T) {
	parsed, ok := ParseDepartment("  Engineering ")
	assert.True(t, ok)
	assert.Equal(t, DepartmentEngineering, parsed)
}

func TestParseDepartment_UnknownFallsBackToHR(t *testing.T) {
	parsed, ok := ParseDepartment("legal")
	assert.False(t, ok)
	assert.Equal(t, FallbackDepartment, parsed)
	assert.Equal(t, DepartmentHR, parsed)
}

func TestDomainsFor_FinanceFansOut(t *testing.T) {
	domains := DomainsFor(DepartmentFinance)
	assert.Equal(t, []DomainKey{DomainFinanceSummary, DomainFinanceQuarterly}, domains)
}

func TestDomainsFor_EveryDepartmentMapped(t *testing.T) {
	for _, d := range Departments {
		assert.NotEmpty(t, DomainsFor(d), "department %s has no domains", d)
	}
}

func TestParseDomainKey(t *testing.T) {
	key, ok := ParseDomainKey("finance_quarterly")
	assert.True(t, ok)
	assert.Equal(t, DomainFinanceQuarterly, key)

	_, ok = ParseDomainKey("unknown")
	assert.False(t, ok)
}
