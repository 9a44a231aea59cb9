// Package game implements the turn state machine for one Mille Bornes race.
//
// The main type is State, the authoritative record of a single game: the
// draw pile, every player's hand and tableau, the turn pointer and the
// winner once somebody reaches the target distance.
//
// # Basic Usage
//
// Start a game from the seats of a lobby room and play the current
// player's first card:
//
//	g, err := game.Start("ab12", []game.Seat{{ID: "p1", ConnID: "c1"}, {ID: "p2", ConnID: "c2"}}, rng, game.DefaultHandSize)
//	play, err := g.PlayCard("c1", 0)
//
// PlayCard validates everything before touching state, so a returned error
// always means nothing changed.
//
// # Deterministic Testing
//
// Start accepts any cards.Shuffler; pass randutil.New(seed) for a
// reproducible deal, or use StartWithDeck to control the exact draw order.
//
// # Concurrency
//
// State is not safe for concurrent use. The session package serializes all
// access to a game through its room's actor.
package game
