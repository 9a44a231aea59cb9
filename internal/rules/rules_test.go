package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/millebornes/internal/cards"
)

func tableau(distance int, status []string, safeties []string) *Tableau {
	t := NewTableau()
	t.Distance = distance
	t.Status = NewSet(status...)
	t.Safeties = NewSet(safeties...)
	return &t
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		actor  *Tableau
		card   cards.Card
		target *Tableau
		want   bool
	}{
		{"distance from start", tableau(0, nil, nil), cards.NewDistance(100), nil, true},
		{"distance blocked by stop", tableau(0, []string{cards.Stop}, nil), cards.NewDistance(25), nil, false},
		{"distance blocked by speed limit", tableau(0, []string{cards.SpeedLimit}, nil), cards.NewDistance(25), nil, false},
		{"distance not blocked by flat tire", tableau(0, []string{cards.FlatTire}, nil), cards.NewDistance(25), nil, true},
		{"distance exactly to target", tableau(900, nil, nil), cards.NewDistance(100), nil, true},
		{"distance overshoots target", tableau(925, nil, nil), cards.NewDistance(100), nil, false},

		{"hazard on unprotected opponent", tableau(0, nil, nil), cards.NewHazard(cards.Accident), tableau(0, nil, nil), true},
		{"hazard on immune opponent", tableau(0, nil, nil), cards.NewHazard(cards.Accident), tableau(0, nil, []string{cards.DrivingAce}), false},
		{"right of way covers speed limit", tableau(0, nil, nil), cards.NewHazard(cards.SpeedLimit), tableau(0, nil, []string{cards.RightOfWay}), false},
		{"other safety does not protect", tableau(0, nil, nil), cards.NewHazard(cards.OutOfGas), tableau(0, nil, []string{cards.DrivingAce}), true},
		{"hazard without opponent", tableau(0, nil, nil), cards.NewHazard(cards.Stop), nil, false},

		{"remedy with matching status", tableau(0, []string{cards.OutOfGas}, nil), cards.NewRemedy(cards.Gasoline), nil, true},
		{"remedy without status", tableau(0, nil, nil), cards.NewRemedy(cards.Gasoline), nil, false},
		{"remedy for different status", tableau(0, []string{cards.FlatTire}, nil), cards.NewRemedy(cards.Repairs), nil, false},
		{"go clears stop", tableau(0, []string{cards.Stop}, nil), cards.NewRemedy(cards.Go), nil, true},

		{"safety always playable", tableau(0, []string{cards.Stop, cards.Accident}, nil), cards.NewSafety(cards.FuelTruck), nil, true},
		{"unknown kind", tableau(0, nil, nil), cards.Card{Type: "joker", Value: "x"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.actor, tt.card, tt.target)
			if tt.want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotPlayable)
			}
			assert.Equal(t, tt.want, IsPlayable(tt.actor, tt.card, tt.target))
		})
	}
}

func TestCheckDoesNotMutate(t *testing.T) {
	actor := tableau(950, []string{cards.SpeedLimit}, nil)
	target := tableau(10, nil, []string{cards.FuelTruck})
	beforeActor, beforeTarget := actor.Clone(), target.Clone()

	_ = Check(actor, cards.NewDistance(100), target)
	_ = Check(actor, cards.NewHazard(cards.OutOfGas), target)

	assert.Equal(t, beforeActor, *actor)
	assert.Equal(t, beforeTarget, *target)
}

func TestApplyDistance(t *testing.T) {
	actor := tableau(875, nil, nil)
	Apply(actor, cards.NewDistance(75), nil)
	assert.Equal(t, 950, actor.Distance)
	assert.Equal(t, 75, actor.Speed)
}

func TestApplyHazard(t *testing.T) {
	actor := tableau(0, nil, nil)
	target := tableau(0, nil, nil)

	landed := Apply(actor, cards.NewHazard(cards.FlatTire), target)
	assert.True(t, landed)
	assert.True(t, target.Status.Has(cards.FlatTire))
	assert.Empty(t, actor.Status)

	immune := tableau(0, nil, []string{cards.PunctureProof})
	landed = Apply(actor, cards.NewHazard(cards.FlatTire), immune)
	assert.False(t, landed)
	assert.Empty(t, immune.Status)
}

func TestApplyRemedy(t *testing.T) {
	actor := tableau(0, []string{cards.SpeedLimit, cards.Stop}, nil)
	Apply(actor, cards.NewRemedy(cards.EndOfLimit), nil)
	assert.Equal(t, NewSet(cards.Stop), actor.Status)
}

func TestApplySafetyClearsCoveredStatus(t *testing.T) {
	actor := tableau(0, []string{cards.Stop, cards.SpeedLimit, cards.Accident}, nil)
	Apply(actor, cards.NewSafety(cards.RightOfWay), nil)

	assert.True(t, actor.Safeties.Has(cards.RightOfWay))
	assert.Equal(t, NewSet(cards.Accident), actor.Status)
}

// A player under a speed limit cannot move until the limit is lifted.
func TestSpeedLimitThenEndOfLimit(t *testing.T) {
	actor := tableau(200, []string{cards.SpeedLimit}, nil)
	hundred := cards.NewDistance(100)

	require.False(t, IsPlayable(actor, hundred, nil))
	require.True(t, IsPlayable(actor, cards.NewRemedy(cards.EndOfLimit), nil))
	Apply(actor, cards.NewRemedy(cards.EndOfLimit), nil)
	assert.True(t, IsPlayable(actor, hundred, nil))
}

func TestSet(t *testing.T) {
	s := NewSet("b", "a", "b")
	assert.Equal(t, Set{"a", "b"}, s)

	s = s.Add("c").Remove("a").Remove("zzz")
	assert.Equal(t, Set{"b", "c"}, s)
	assert.True(t, s.Has("c"))
	assert.False(t, s.Has("a"))

	clone := s.Clone()
	clone = clone.Remove("b")
	assert.True(t, s.Has("b"))
}

func TestMappingsAreConsistent(t *testing.T) {
	for _, hazard := range []string{cards.Stop, cards.SpeedLimit, cards.OutOfGas, cards.FlatTire, cards.Accident} {
		remedy, ok := RemedyFor(hazard)
		require.True(t, ok, hazard)
		back, ok := HazardFor(remedy)
		require.True(t, ok, remedy)
		assert.Equal(t, hazard, back)

		safety, ok := SafetyFor(hazard)
		require.True(t, ok)
		assert.Contains(t, Protects(safety), hazard)
	}
}
