package posting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pgcledger/internal/domain/chart"
)

func TestParseCandidates(t *testing.T) {
	got := ParseCandidates(" 34.3.1, 34.5.3 ,34*,, ")
	assert.Equal(t, []chart.Candidate{chart.Exact("34.3.1"), chart.Exact("34.5.3"), chart.Prefix("34")}, got)
}

func TestAccountMap_WithOverrides(t *testing.T) {
	base := DefaultAccountMap()

	m, unknown := base.WithOverrides(map[string]string{
		"REVENUE": "72",
		"nope":    "1",
		"bank":    "",
	})

	assert.Equal(t, []string{"nope"}, unknown)
	assert.Equal(t, []chart.Candidate{chart.Exact("72")}, m[RoleRevenue])
	assert.Equal(t, base[RoleBank], m[RoleBank], "an empty override keeps the default chain")
	assert.Equal(t, chart.Exact("71"), base[RoleRevenue][0], "the receiver is not modified")
}
