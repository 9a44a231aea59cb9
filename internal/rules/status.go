package rules

import (
	"slices"

	"github.com/lox/millebornes/internal/cards"
)

// Set is a sorted, duplicate-free list of card values. It is used both for
// active status effects and for held safeties, and encodes as a JSON array.
type Set []string

// NewSet returns an empty, non-nil set.
func NewSet(values ...string) Set {
	s := make(Set, 0, len(values))
	for _, v := range values {
		s = s.Add(v)
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := slices.BinarySearch(s, v)
	return ok
}

// Add returns the set with v inserted.
func (s Set) Add(v string) Set {
	i, ok := slices.BinarySearch(s, v)
	if ok {
		return s
	}
	return slices.Insert(s, i, v)
}

// Remove returns the set without v.
func (s Set) Remove(v string) Set {
	i, ok := slices.BinarySearch(s, v)
	if !ok {
		return s
	}
	return slices.Delete(s, i, i+1)
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	if s == nil {
		return NewSet()
	}
	return slices.Clone(s)
}

var remedyFor = map[string]string{
	cards.Stop:       cards.Go,
	cards.SpeedLimit: cards.EndOfLimit,
	cards.OutOfGas:   cards.Gasoline,
	cards.FlatTire:   cards.SpareTire,
	cards.Accident:   cards.Repairs,
}

var hazardFor = map[string]string{
	cards.Go:         cards.Stop,
	cards.EndOfLimit: cards.SpeedLimit,
	cards.Gasoline:   cards.OutOfGas,
	cards.SpareTire:  cards.FlatTire,
	cards.Repairs:    cards.Accident,
}

var safetyFor = map[string]string{
	cards.Stop:       cards.RightOfWay,
	cards.SpeedLimit: cards.RightOfWay,
	cards.OutOfGas:   cards.FuelTruck,
	cards.FlatTire:   cards.PunctureProof,
	cards.Accident:   cards.DrivingAce,
}

// RemedyFor returns the remedy that cancels hazard.
func RemedyFor(hazard string) (string, bool) {
	r, ok := remedyFor[hazard]
	return r, ok
}

// HazardFor returns the status effect a remedy clears.
func HazardFor(remedy string) (string, bool) {
	h, ok := hazardFor[remedy]
	return h, ok
}

// SafetyFor returns the safety that grants immunity to hazard.
func SafetyFor(hazard string) (string, bool) {
	s, ok := safetyFor[hazard]
	return s, ok
}

// Protects lists the hazards a safety makes a player immune to, in a fixed order.
func Protects(safety string) []string {
	var out []string
	for _, h := range []string{cards.Stop, cards.SpeedLimit, cards.OutOfGas, cards.FlatTire, cards.Accident} {
		if safetyFor[h] == safety {
			out = append(out, h)
		}
	}
	return out
}
