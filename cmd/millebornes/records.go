package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/millebornes/internal/records"
)

// RecordsCmd lists games from a record store that can be read back.
type RecordsCmd struct {
	Store string `kong:"enum='file,postgres,redis',default='file',help='Record store kind'"`
	Dir   string `kong:"default='records',help='Directory of the file store'"`
	DSN   string `kong:"name='dsn',env='MILLEBORNES_POSTGRES_DSN',help='Postgres connection string'"`
	Addr  string `kong:"name='redis-addr',default='localhost:6379',help='Redis address'"`
	Debug bool   `kong:"help='Enable debug logging'"`
}

func (c *RecordsCmd) Run() error {
	level := zerolog.WarnLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	cfg := records.Config{Kind: c.Store, Dir: c.Dir, DSN: c.DSN, Addr: c.Addr}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := records.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	lister, ok := store.(records.Lister)
	if !ok {
		return fmt.Errorf("store %q cannot list games", c.Store)
	}
	games, err := lister.List(ctx)
	if err != nil {
		return err
	}
	return printGames(os.Stdout, games)
}

func printGames(out io.Writer, games []records.Game) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(out, "No games recorded")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tSTATUS\tCREATED\tPLAYERS\tWINNER\tSCORES")
	for _, g := range games {
		winner, scores := "-", "-"
		if g.Result != nil {
			winner = g.Result.Winner
			parts := make([]string, 0, len(g.Players))
			for _, p := range g.Players {
				parts = append(parts, fmt.Sprintf("%s=%d", p, g.Result.Scores[p]))
			}
			scores = strings.Join(parts, " ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			g.GameID,
			g.Status,
			g.CreatedAt.Format(time.RFC3339),
			strings.Join(g.Players, ","),
			winner,
			scores,
		)
	}
	return w.Flush()
}
