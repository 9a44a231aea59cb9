package game

import (
	"fmt"
	"slices"

	"github.com/lox/millebornes/internal/cards"
	"github.com/lox/millebornes/internal/rules"
)

// Play describes one committed card play.
type Play struct {
	PlayerID string
	Card     cards.Card
	TargetID string // set for hazards
	Landed   bool   // false when a hazard hit a protected opponent
	Drew     bool
	Finished bool
}

// Playable returns the hand indexes the current player could legally play.
func (g *State) Playable() []int {
	if g.Finished() {
		return nil
	}
	actor := g.Current()
	var target *rules.Tableau
	if t := g.Target(); t != nil {
		target = &t.Tableau
	}
	var out []int
	for i, c := range actor.Hand {
		if rules.IsPlayable(&actor.Tableau, c, target) {
			out = append(out, i)
		}
	}
	return out
}

// PlayCard plays the card at cardIndex from the hand of the player acting on
// connID. All checks run before any mutation, so on error the state is
// unchanged.
func (g *State) PlayCard(connID string, cardIndex int) (*Play, error) {
	if g.Finished() {
		return nil, ErrGameFinished
	}

	actor := g.Current()
	if actor.ConnID != connID {
		return nil, ErrNotYourTurn
	}
	if cardIndex < 0 || cardIndex >= len(actor.Hand) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidCardIndex, cardIndex, len(actor.Hand))
	}

	card := actor.Hand[cardIndex]
	var target *Player
	var targetTableau *rules.Tableau
	if card.Type == cards.Hazard {
		if target = g.Target(); target != nil {
			targetTableau = &target.Tableau
		}
	}
	if err := rules.Check(&actor.Tableau, card, targetTableau); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCannotPlayCard, err)
	}

	// Commit.
	actor.Hand = slices.Delete(actor.Hand, cardIndex, cardIndex+1)
	play := &Play{PlayerID: actor.ID, Card: card}
	play.Landed = rules.Apply(&actor.Tableau, card, targetTableau)

	if target != nil {
		play.TargetID = target.ID
		target.Pile = append(target.Pile, card)
	} else {
		actor.Pile = append(actor.Pile, card)
	}

	if c, ok := g.draw(); ok {
		actor.Hand = append(actor.Hand, c)
		play.Drew = true
	}

	g.CurrentTurn = (g.CurrentTurn + 1) % len(g.Players)

	if actor.Distance >= rules.TargetDistance {
		g.Status = StatusFinished
		g.Winner = actor.ID
		play.Finished = true
	}
	g.refresh()
	return play, nil
}
