package postgres

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_PartyAccountLinkIsNulledOnDelete(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_ledger.up.sql")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`(?m)^\s*account_id\s+UUID REFERENCES accounts \(id\) ON DELETE SET NULL,$`), string(up),
		"deleting a shadow account must not be blocked by its party")
	assert.Regexp(t, regexp.MustCompile(`(?m)^\s*parent_account_id\s+UUID NOT NULL REFERENCES accounts \(id\),$`), string(up))
}
