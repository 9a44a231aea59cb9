package cards

// Shuffler is satisfied by *rand.Rand and *randutil.Locked.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type entry struct {
	card  Card
	count int
}

var catalog = []entry{
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

// DeckSize is the number of cards in a full deck. It must equal the sum of
// the catalog counts.
const DeckSize = 102

// Catalog returns the full card population in catalog order.
func Catalog() []Card {
	out := make([]Card, 0, DeckSize)
	for _, e := range catalog {
		for range e.count {
			out = append(out, e.card)
		}
	}
	return out
}

// Counts returns the multiplicity of every distinct card in cs.
func Counts(cs []Card) map[Card]int {
	m := make(map[Card]int, len(catalog))
	for _, c := range cs {
		m[c]++
	}
	return m
}

// BuildDeck returns the catalog in a uniformly random order. The draw pile
// is consumed from the end of the slice.
func BuildDeck(rng Shuffler) []Card {
	deck := Catalog()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
