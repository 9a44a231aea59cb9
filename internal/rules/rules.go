// Package rules decides whether a card may be played and applies its effect.
//
// Every function here is pure with respect to the game: callers pass in the
// tableaus involved and own all locking. Check never mutates; Apply must only
// be called after Check succeeded for the same arguments.
package rules

import (
	"errors"
	"fmt"

	"github.com/lox/millebornes/internal/cards"
)

// TargetDistance is the trip length that ends the game.
const TargetDistance = 1000

// ErrNotPlayable is returned by Check when a card cannot be played. The
// wrapped message carries the reason.
var ErrNotPlayable = errors.New("card not playable")

// Tableau is the per-player state the rules read and mutate.
type Tableau struct {
	Distance int `json:"distance"`
	Speed    int `json:"speed"`
	Status   Set `json:"statusEffects"`
	Safeties Set `json:"safeties"`
}

// NewTableau returns a tableau at the starting line with no status effects.
func NewTableau() Tableau {
	return Tableau{Status: NewSet(), Safeties: NewSet()}
}

// Clone returns a deep copy.
func (t Tableau) Clone() Tableau {
	t.Status = t.Status.Clone()
	t.Safeties = t.Safeties.Clone()
	return t
}

// Immune reports whether the tableau holds the safety for hazard.
func (t *Tableau) Immune(hazard string) bool {
	s, ok := SafetyFor(hazard)
	return ok && t.Safeties.Has(s)
}

func notPlayable(reason string) error {
	return fmt.Errorf("%w: %s", ErrNotPlayable, reason)
}

// Check decides whether actor may play card. target is the opponent a hazard
// would land on and may be nil for other kinds.
func Check(actor *Tableau, card cards.Card, target *Tableau) error {
	switch card.Type {
	case cards.Distance:
		if actor.Status.Has(cards.Stop) {
			return notPlayable("stopped")
		}
		if actor.Status.Has(cards.SpeedLimit) {
			return notPlayable("under speed limit")
		}
		if card.Points <= 0 {
			return notPlayable("invalid distance")
		}
		if actor.Distance+card.Points > TargetDistance {
			return notPlayable(fmt.Sprintf("would overshoot %d", TargetDistance))
		}
		return nil

	case cards.Hazard:
		if _, ok := SafetyFor(card.Value); !ok {
			return notPlayable("unknown hazard " + card.Value)
		}
		if target == nil {
			return notPlayable("no opponent to target")
		}
		if target.Immune(card.Value) {
			return notPlayable("opponent is immune to " + card.Value)
		}
		return nil

	case cards.Remedy:
		hazard, ok := HazardFor(card.Value)
		if !ok {
			return notPlayable("unknown remedy " + card.Value)
		}
		if !actor.Status.Has(hazard) {
			return notPlayable("no " + hazard + " to remedy")
		}
		return nil

	case cards.Safety:
		return nil
	}
	return notPlayable("unknown card type " + string(card.Type))
}

// IsPlayable is the boolean form of Check.
func IsPlayable(actor *Tableau, card cards.Card, target *Tableau) bool {
	return Check(actor, card, target) == nil
}

// Apply mutates actor and target for card. It reports whether a hazard
// actually landed; a hazard against an immune target is consumed with no
// effect.
func Apply(actor *Tableau, card cards.Card, target *Tableau) (landed bool) {
	switch card.Type {
	case cards.Distance:
		actor.Distance = min(actor.Distance+card.Points, TargetDistance)
		actor.Speed = card.Points

	case cards.Hazard:
		if target == nil || target.Immune(card.Value) {
			return false
		}
		target.Status = target.Status.Add(card.Value)
		return true

	case cards.Remedy:
		if hazard, ok := HazardFor(card.Value); ok {
			actor.Status = actor.Status.Remove(hazard)
		}

	case cards.Safety:
		actor.Safeties = actor.Safeties.Add(card.Value)
		for _, h := range Protects(card.Value) {
			actor.Status = actor.Status.Remove(h)
		}
	}
	return false
}
