package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/millebornes/internal/randutil"
)

func TestCatalogComposition(t *testing.T) {
	counts := Counts(Catalog())

	tests := []struct {
		card Card
		want int
	}{
		{NewDistance(25), 10},
		{NewDistance(50), 10},
		{NewDistance(75), 10},
		{NewDistance(100), 12},
		{NewHazard(Stop), 5},
		{NewHazard(SpeedLimit), 4},
		{NewHazard(OutOfGas), 3},
		{NewHazard(FlatTire), 3},
		{NewHazard(Accident), 3},
		{NewRemedy(Go), 14},
		{NewRemedy(EndOfLimit), 6},
		{NewRemedy(Gasoline), 6},
		{NewRemedy(SpareTire), 6},
		{NewRemedy(Repairs), 6},
		{NewSafety(RightOfWay), 1},
		{NewSafety(FuelTruck), 1},
		{NewSafety(PunctureProof), 1},
		{NewSafety(DrivingAce), 1},
	}
	total := 0
	for _, tt := range tests {
		t.Run(tt.card.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, counts[tt.card])
		})
		total += tt.want
	}
	assert.Len(t, counts, len(tests), "no unexpected card kinds")
	assert.Equal(t, total, DeckSize)
}

func TestDeckSizeMatchesCatalog(t *testing.T) {
	n := 0
	for _, e := range catalog {
		n += e.count
	}
	assert.Equal(t, DeckSize, n)
	assert.Len(t, Catalog(), DeckSize)
}

func TestBuildDeckIsPermutation(t *testing.T) {
	want := Counts(Catalog())
	for seed := int64(1); seed <= 25; seed++ {
		deck := BuildDeck(randutil.New(seed))
		require.Len(t, deck, DeckSize)
		assert.Equal(t, want, Counts(deck), "seed %d", seed)
	}
}

func TestBuildDeckDeterministicPerSeed(t *testing.T) {
	a := BuildDeck(randutil.New(42))
	b := BuildDeck(randutil.New(42))
	c := BuildDeck(randutil.New(43))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestBuildDeckShuffles(t *testing.T) {
	deck := BuildDeck(randutil.NewLocked(7))
	assert.NotEqual(t, Catalog(), deck, "shuffled deck should differ from catalog order")
}

// Each position should see the first catalog card roughly DeckSize^-1 of
// the time. A comparator-based shuffle skews this badly.
func TestBuildDeckPositionSpread(t *testing.T) {
	const rounds = 6000
	rng := randutil.New(99)
	firstSafety := NewSafety(RightOfWay)

	hits := make([]int, DeckSize)
	for range rounds {
		deck := BuildDeck(rng)
		for i, c := range deck {
			if c == firstSafety {
				hits[i]++
			}
		}
	}

	expected := float64(rounds) / float64(DeckSize)
	for i, h := range hits {
		assert.Less(t, float64(h), expected*3, "position %d over-represented", i)
	}
}
