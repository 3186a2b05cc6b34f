package rows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchkeeper/matchkeeper/pkg/models"
)

func sampleGame() *models.Game {
	p1 := models.NewPlayerID()
	p2 := models.NewPlayerID()
	p3 := models.NewPlayerID()
	return &models.Game{
		ID:           models.NewGameID(),
		TeamName:     "Lions U10",
		OpponentName: "Hawks",
		Date:         "2025-05-10",
		HomeOrAway:   models.Away,
		IsPlayed:     true,
		HomeScore:    1,
		AwayScore:    3,
		GameStatus:   models.StatusGameEnd,
		PeriodCount:  2,
		AvailablePlayers: []models.PlayerSnapshot{
			{PlayerID: p1, Name: "Alice", IsGoalie: true},
			{PlayerID: p2, Name: "Bob"},
			{PlayerID: p3, Name: "Carol"},
		},
		SelectedPlayerIDs: []models.PlayerID{p1, p2},
		FieldPlayers: []models.FieldPosition{
			{PlayerID: p1, X: 0.5, Y: 0.9},
		},
		Events: []models.GameEvent{
			{ID: models.NewEventID(), Type: models.EventGoal, TimeSec: 65, ScorerID: p2, Period: 1},
			{ID: models.NewEventID(), Type: models.EventOpponentGoal, TimeSec: 300, Period: 1},
		},
		Assessments: []models.PlayerAssessment{
			{
				PlayerID:      p2,
				Overall:       8,
				Sliders:       models.AssessmentSliders{Intensity: 7, Teamwork: 9},
				MinutesPlayed: 40,
				CreatedAt:     1746900000000,
			},
		},
		Tactics: models.TacticalState{
			Discs:        []models.TacticalDisc{{ID: "d1", X: 0.2, Y: 0.3, Kind: "home"}},
			Drawings:     [][]models.Point{{{X: 0.1, Y: 0.1}, {X: 0.4, Y: 0.2}}},
			BallPosition: &models.Point{X: 0.5, Y: 0.5},
		},
	}
}

func TestGameRoundTrip(t *testing.T) {
	g := sampleGame()
	got := FromRows(ToRows(g))

	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, g.TeamName, got.TeamName)
	assert.Equal(t, g.OpponentName, got.OpponentName)
	assert.Equal(t, models.Away, got.HomeOrAway)
	assert.True(t, got.IsPlayed)
	assert.Equal(t, g.AvailablePlayers, got.AvailablePlayers)
	assert.ElementsMatch(t, g.SelectedPlayerIDs, got.SelectedPlayerIDs)
	assert.Equal(t, g.FieldPlayers, got.FieldPlayers)
	assert.Equal(t, g.Events, got.Events)
	assert.Equal(t, g.Assessments, got.Assessments)
	assert.Equal(t, g.Tactics, got.Tactics)
}

func TestOnFieldPromotedToSelected(t *testing.T) {
	g := sampleGame()
	// Carol is placed on the field without being marked selected.
	carol := g.AvailablePlayers[2].PlayerID
	g.FieldPlayers = append(g.FieldPlayers, models.FieldPosition{PlayerID: carol, X: 0.3, Y: 0.4})

	set := ToRows(g)
	var row *GamePlayerRow
	for i := range set.Players {
		if set.Players[i].PlayerID == carol {
			row = &set.Players[i]
		}
	}
	require.NotNil(t, row)
	assert.True(t, row.OnField)
	assert.True(t, row.Selected, "placement on field implies selection")

	got := FromRows(set)
	assert.Contains(t, got.SelectedPlayerIDs, carol)
}

func TestUnavailableReferencesDropped(t *testing.T) {
	g := sampleGame()
	stranger := models.NewPlayerID()
	g.SelectedPlayerIDs = append(g.SelectedPlayerIDs, stranger)
	g.FieldPlayers = append(g.FieldPlayers, models.FieldPosition{PlayerID: stranger, X: 0.1, Y: 0.1})

	got := FromRows(ToRows(g))
	assert.NotContains(t, got.SelectedPlayerIDs, stranger)
	for _, fp := range got.FieldPlayers {
		assert.NotEqual(t, stranger, fp.PlayerID)
	}
}

func TestEventOrderReassigned(t *testing.T) {
	g := sampleGame()
	set := ToRows(g)
	require.Len(t, set.Events, 2)
	assert.Equal(t, 0, set.Events[0].Seq)
	assert.Equal(t, 1, set.Events[1].Seq)

	// A read must order by seq regardless of storage order.
	set.Events[0], set.Events[1] = set.Events[1], set.Events[0]
	got := FromRows(set)
	require.Len(t, got.Events, 2)
	assert.Equal(t, models.EventGoal, got.Events[0].Type)
	assert.Equal(t, models.EventOpponentGoal, got.Events[1].Type)
}

func TestNullIsPlayedReadsAsPlayed(t *testing.T) {
	set := ToRows(sampleGame())
	set.Game.IsPlayed = nil
	assert.True(t, FromRows(set).IsPlayed)

	notPlayed := false
	set.Game.IsPlayed = &notPlayed
	assert.False(t, FromRows(set).IsPlayed)
}

func TestHomeOrAwayDefaultsHome(t *testing.T) {
	g := sampleGame()
	g.HomeOrAway = ""
	set := ToRows(g)
	assert.Equal(t, "home", set.Game.HomeOrAway)

	set.Game.HomeOrAway = "??"
	assert.Equal(t, models.Home, FromRows(set).HomeOrAway)
}

func TestSelectedListsOnFieldFirst(t *testing.T) {
	g := sampleGame()
	// Bob is selected but benched; Alice is on the field. Stored order has
	// Alice first in the available list either way, but the selection list
	// must lead with the on-field subset.
	got := FromRows(ToRows(g))
	require.Len(t, got.SelectedPlayerIDs, 2)
	assert.Equal(t, g.AvailablePlayers[0].PlayerID, got.SelectedPlayerIDs[0])
}

func TestEmptyCollectionsNeverNil(t *testing.T) {
	g := &models.Game{
		ID:           models.NewGameID(),
		TeamName:     "Lions U10",
		OpponentName: "Hawks",
		Date:         "2025-05-10",
	}
	got := FromRows(ToRows(g))
	assert.NotNil(t, got.AvailablePlayers)
	assert.NotNil(t, got.SelectedPlayerIDs)
	assert.NotNil(t, got.FieldPlayers)
	assert.NotNil(t, got.Events)
	assert.NotNil(t, got.Assessments)
	assert.NotNil(t, got.PersonnelIDs)
	assert.NotNil(t, got.Tactics.Discs)
	assert.NotNil(t, got.Tactics.Drawings)
	assert.Nil(t, got.Tactics.BallPosition)
}

func TestAssessmentFlattening(t *testing.T) {
	g := sampleGame()
	set := ToRows(g)
	require.Len(t, set.Assessments, 1)
	assert.Equal(t, 7, set.Assessments[0].Intensity)
	assert.Equal(t, 9, set.Assessments[0].Teamwork)
	assert.Equal(t, models.Millis(1746900000000), set.Assessments[0].CreatedAt)
}
