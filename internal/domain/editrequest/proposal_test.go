package editrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
)

func TestDecodeProposalReturnsTypedVariant(t *testing.T) {
	proposal, fields, err := DecodeProposal(policy.ChangeRelationshipCreate,
		[]byte(`{"kind":"team_competition","teamId":"t1","competitionId":"c1","notes":null}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"competitionId", "kind", "teamId"}, fields)

	create, ok := proposal.(RelationshipCreateProposal)
	require.True(t, ok)
	assert.Equal(t, league.RelationshipTeamCompetition, create.Kind)
	assert.Equal(t, "c1", create.OwnerBID())

	proposal, fields, err = DecodeProposal(policy.ChangePlayerMatchStats, []byte(`{"points":14,"aces":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"aces", "points"}, fields)
	stats := proposal.(StatsProposal)
	require.NotNil(t, stats.Points)
	assert.Equal(t, 14, *stats.Points)
	assert.Nil(t, stats.Blocks)
}

func TestDecodeProposalRejects(t *testing.T) {
	tests := []struct {
		name       string
		changeType policy.ChangeType
		data       string
	}{
		{"not an object", policy.ChangeMatchResult, `[1,2]`},
		{"unknown field", policy.ChangeSetResult, `{"homePoints":25,"tiebreak":true}`},
		{"negative score", policy.ChangeMatchResult, `{"homeScore":-1}`},
		{"bad status", policy.ChangeMatchResult, `{"status":"abandoned"}`},
		{"shirt number out of range", policy.ChangeTeamPlayerContract, `{"shirtNumber":1000}`},
		{"player and competition", policy.ChangeRelationshipCreate, `{"kind":"team_player","teamId":"t","playerId":"p","competitionId":"c"}`},
		{"missing competition", policy.ChangeRelationshipCreate, `{"kind":"team_competition","teamId":"t"}`},
		{"unknown kind", policy.ChangeRelationshipCreate, `{"kind":"coach","teamId":"t","playerId":"p"}`},
		{"nothing to change", policy.ChangeTeamMatchStats, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeProposal(tt.changeType, []byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidProposal)
		})
	}
}

func TestDecodeProposalChecksValidityWindow(t *testing.T) {
	_, _, err := DecodeProposal(policy.ChangeTeamPlayerContract,
		[]byte(`{"validFrom":"2026-05-01T00:00:00Z","validTo":"2026-04-01T00:00:00Z"}`))
	assert.ErrorIs(t, err, league.ErrInvalidValidityWindow)

	_, _, err = DecodeProposal(policy.ChangeType("ghost"), []byte(`{}`))
	assert.ErrorIs(t, err, policy.ErrUnknownChangeType)
}

func TestEndProposalAcceptsEmptyPayload(t *testing.T) {
	proposal, fields, err := DecodeProposal(policy.ChangeRelationshipDelete, nil)
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.IsType(t, RelationshipEndProposal{}, proposal)
}
