package policy

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/shared"
)

func TestDefaultTableMapsEveryChangeType(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	for _, changeType := range KnownChangeTypes() {
		p, ok := table.Get(changeType)
		require.True(t, ok, "missing %s", changeType)
		assert.Equal(t, changeType, p.ChangeType)
	}

	contract, _ := table.Get(ChangeTeamCompetitionContract)
	assert.True(t, contract.RequiresDoubleConfirmation)
	assert.Equal(t, []Role{RoleTeamAdmin, RoleCompetitionAdmin}, contract.ApproverRoles)
	assert.Equal(t, league.KindRelationship, contract.TargetKind)

	create, _ := table.Get(ChangeRelationshipCreate)
	assert.False(t, create.HasTarget())
}

func TestParseRejectsInvalidTables(t *testing.T) {
	valid, err := Default()
	require.NoError(t, err)
	var base bytes.Buffer
	require.NoError(t, valid.WriteYAML(&base))

	tests := []struct {
		name    string
		mutate  func(string) string
		problem string
	}{
		{
			name: "unknown key",
			mutate: func(doc string) string {
				return strings.Replace(doc, "requiresDoubleConfirmation: false", "requiresDoubleConfirmation: false\n    quorum: 3", 1)
			},
			problem: "quorum",
		},
		{
			name: "missing change type",
			mutate: func(doc string) string {
				return removePolicy(doc, "setResult")
			},
			problem: "setResult: missing policy",
		},
		{
			name: "unknown change type",
			mutate: func(doc string) string {
				return doc + "  seasonRename:\n    approverRoles: [teamAdmin]\n"
			},
			problem: "seasonRename: unknown change type",
		},
		{
			name: "critical fields without double confirmation",
			mutate: func(doc string) string {
				return strings.Replace(doc, "requiresDoubleConfirmation: true", "requiresDoubleConfirmation: false", 1)
			},
			problem: "criticalFields require requiresDoubleConfirmation",
		},
		{
			name: "unknown role",
			mutate: func(doc string) string {
				return strings.Replace(doc, "- matchAdmin", "- refereeAdmin", 1)
			},
			problem: `unknown approver role "refereeAdmin"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.mutate(base.String())))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTable))
			assert.True(t, errors.Is(err, shared.ErrUnsupportedChangeType))
			assert.Contains(t, err.Error(), tc.problem)
		})
	}
}

func TestWriteYAMLRoundTrips(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, table.WriteYAML(&out))

	reparsed, err := Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, table.All(), reparsed.All())
}

func TestLookupSeparatesUnknownFromUnmapped(t *testing.T) {
	table := &Table{policies: map[ChangeType]ApprovalPolicy{}}

	_, err := table.Lookup("bogus")
	assert.True(t, errors.Is(err, shared.ErrInvalidArgument))

	_, err = table.Lookup(ChangeMatchResult)
	assert.True(t, errors.Is(err, shared.ErrUnsupportedChangeType))
}

func TestConfirmationFor(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	contract, _ := table.Get(ChangeTeamPlayerContract)

	double, err := contract.ConfirmationFor([]string{"notes", "shirtNumber"})
	require.NoError(t, err)
	assert.False(t, double)

	double, err = contract.ConfirmationFor([]string{"notes", "validTo"})
	require.NoError(t, err)
	assert.True(t, double)

	_, err = contract.ConfirmationFor([]string{"ownerAId"})
	var fieldErr *FieldNotAllowedError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "ownerAId", fieldErr.Field)
	assert.True(t, errors.Is(err, shared.ErrInvalidArgument))

	result, _ := table.Get(ChangeMatchResult)
	double, err = result.ConfirmationFor([]string{"homeScore"})
	require.NoError(t, err)
	assert.False(t, double)
}

func removePolicy(doc, name string) string {
	lines := strings.Split(doc, "\n")
	out := make([]string, 0, len(lines))
	skipping := false
	for _, line := range lines {
		if strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "    ") {
			skipping = strings.TrimSpace(line) == name+":"
		}
		if !skipping {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
