package main

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/lox/millebornes/internal/cards"
	"github.com/lox/millebornes/internal/randutil"
)

// DeckCmd prints a shuffled deck, top card first.
type DeckCmd struct {
	Seed    *int64 `kong:"help='Shuffle seed (random if omitted)'"`
	Summary bool   `kong:"help='Print card counts instead of the order'"`
}

func (c *DeckCmd) Run() error {
	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	deck := cards.BuildDeck(randutil.New(seed))
	if c.Summary {
		return printSummary(os.Stdout, deck)
	}
	return printDeck(os.Stdout, deck, seed)
}

// printDeck lists the deck in draw order. BuildDeck draws from the end.
func printDeck(out io.Writer, deck []cards.Card, seed int64) error {
	if _, err := fmt.Fprintf(out, "# seed %d, %d cards\n", seed, len(deck)); err != nil {
		return err
	}
	for i := range deck {
		if _, err := fmt.Fprintf(out, "%3d  %s\n", i+1, deck[len(deck)-1-i]); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(out io.Writer, deck []cards.Card) error {
	counts := cards.Counts(deck)
	keys := make([]cards.Card, 0, len(counts))
	for c := range counts {
		keys = append(keys, c)
	}
	slices.SortFunc(keys, func(a, b cards.Card) int {
		if a.Type != b.Type {
			return cmp.Compare(string(a.Type), string(b.Type))
		}
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return cmp.Compare(a.Value, b.Value)
	})
	for _, c := range keys {
		if _, err := fmt.Fprintf(out, "%3d  %s\n", counts[c], c); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%3d  total\n", len(deck))
	return err
}
