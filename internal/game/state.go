package game

import (
	"fmt"

	"github.com/lox/millebornes/internal/cards"
	"github.com/lox/millebornes/internal/rules"
)

// DefaultHandSize is the number of cards dealt to each player.
const DefaultHandSize = 6

// Scoring bonuses on top of distance travelled.
const (
	SafetyBonus = 100
	TripBonus   = 400
)

// Status is the lifecycle of a game. Finished is terminal.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Seat identifies a player and the connection that acts for them.
type Seat struct {
	ID     string `json:"id"`
	ConnID string `json:"connectionId"`
}

// Player is one participant's in-game state.
type Player struct {
	ID     string       `json:"id"`
	ConnID string       `json:"connectionId"`
	Hand   []cards.Card `json:"hand"`
	Pile   []cards.Card `json:"pile"`
	rules.Tableau
	CanPlay bool `json:"canPlay"`
}

func (p *Player) clone() *Player {
	c := *p
	c.Hand = append([]cards.Card{}, p.Hand...)
	c.Pile = append([]cards.Card{}, p.Pile...)
	c.Tableau = p.Tableau.Clone()
	return &c
}

// State is the authoritative record of one game.
type State struct {
	ID          string         `json:"gameId"`
	Status      Status         `json:"status"`
	Deck        []cards.Card   `json:"deck"`
	Players     []*Player      `json:"players"`
	CurrentTurn int            `json:"currentTurn"`
	Winner      string         `json:"winner,omitempty"`
	Scores      map[string]int `json:"scores"`
}

// Start builds a fresh shuffled deck and deals handSize cards to each seat
// in order.
func Start(id string, seats []Seat, rng cards.Shuffler, handSize int) (*State, error) {
	return StartWithDeck(id, seats, cards.BuildDeck(rng), handSize)
}

// StartWithDeck is Start with a caller-supplied draw pile. Cards are drawn
// from the end of deck.
func StartWithDeck(id string, seats []Seat, deck []cards.Card, handSize int) (*State, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("game %s: no players", id)
	}
	if handSize <= 0 {
		return nil, fmt.Errorf("game %s: invalid hand size %d", id, handSize)
	}
	if need := handSize * len(seats); need > len(deck) {
		return nil, fmt.Errorf("game %s: deck of %d cannot deal %d cards", id, len(deck), need)
	}

	g := &State{
		ID:      id,
		Status:  StatusPlaying,
		Deck:    append([]cards.Card{}, deck...),
		Players: make([]*Player, len(seats)),
		Scores:  make(map[string]int, len(seats)),
	}
	for i, s := range seats {
		g.Players[i] = &Player{
			ID:      s.ID,
			ConnID:  s.ConnID,
			Hand:    make([]cards.Card, 0, handSize),
			Pile:    []cards.Card{},
			Tableau: rules.NewTableau(),
		}
		g.Scores[s.ID] = 0
	}
	for _, p := range g.Players {
		for range handSize {
			c, _ := g.draw()
			p.Hand = append(p.Hand, c)
		}
	}
	g.refresh()
	return g, nil
}

func (g *State) draw() (cards.Card, bool) {
	n := len(g.Deck)
	if n == 0 {
		return cards.Card{}, false
	}
	c := g.Deck[n-1]
	g.Deck = g.Deck[:n-1]
	return c, true
}

// Current returns the player whose turn it is.
func (g *State) Current() *Player {
	return g.Players[g.CurrentTurn]
}

// Target returns the opponent a hazard from the current player lands on:
// the next player in turn order. Nil in a single-player game.
func (g *State) Target() *Player {
	if len(g.Players) < 2 {
		return nil
	}
	return g.Players[(g.CurrentTurn+1)%len(g.Players)]
}

// Player looks up a participant by player id.
func (g *State) Player(id string) (*Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// HasPlayer reports whether id is a participant.
func (g *State) HasPlayer(id string) bool {
	_, ok := g.Player(id)
	return ok
}

// PlayerIDs returns participant ids in turn order.
func (g *State) PlayerIDs() []string {
	ids := make([]string, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ID
	}
	return ids
}

// CardCount is the number of cards across deck, hands and piles. It is
// constant for the life of a game.
func (g *State) CardCount() int {
	n := len(g.Deck)
	for _, p := range g.Players {
		n += len(p.Hand) + len(p.Pile)
	}
	return n
}

// Finished reports whether the game has ended.
func (g *State) Finished() bool {
	return g.Status == StatusFinished
}

// Snapshot returns a deep copy safe to hand to other goroutines.
func (g *State) Snapshot() *State {
	s := *g
	s.Deck = append([]cards.Card{}, g.Deck...)
	s.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		s.Players[i] = p.clone()
	}
	s.Scores = make(map[string]int, len(g.Scores))
	for k, v := range g.Scores {
		s.Scores[k] = v
	}
	return &s
}

// refresh recomputes derived fields after a transition.
func (g *State) refresh() {
	for i, p := range g.Players {
		p.CanPlay = g.Status == StatusPlaying && i == g.CurrentTurn
		score := p.Distance + SafetyBonus*len(p.Safeties)
		if g.Winner == p.ID {
			score += TripBonus
		}
		g.Scores[p.ID] = score
	}
}
