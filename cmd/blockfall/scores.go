package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresClear bool
	flagScoresAll   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Without a mode, summarize every mode. With a mode, list its best games.

Examples:
  blockfall scores
  blockfall scores blockfall_classic --limit 20
  blockfall scores blockfall --all
  blockfall scores blockfall --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", storage.DefaultTopLimit, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresAll, "all", false, "List every recorded game instead of the top scores")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all scores for the mode")
}

func runScores(_ *cobra.Command, args []string) {
	gameID := ""
	if len(args) > 0 {
		gameID = args[0]
	} else if flagScoresAll || flagScoresClear {
		gameID = defaultGameID
	}

	if gameID != "" && !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'blockfall list' to see available modes.")
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if gameID == "" {
		if err := printSummary(os.Stdout, store, registry.List()); err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flagScoresClear {
		if err := store.ClearScores(gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared scores for %s.\n", titleOf(gameID))
		return
	}

	var entries []storage.ScoreEntry
	if flagScoresAll {
		entries, err = store.AllScores(gameID)
	} else {
		entries, err = store.TopScores(gameID, flagScoresLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("High Scores - %s\n\n", titleOf(gameID))
	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'blockfall play %s' to set the first high score!\n", gameID)
		return
	}
	printEntries(os.Stdout, entries)

	fmt.Println()
	if stats, err := store.GetGameStats(gameID); err == nil {
		fmt.Printf("Best: %d  Games: %d  Average: %.0f  Most rows: %d  Total rows: %d\n",
			stats.HighScore, stats.GamesCount, stats.AvgScore, stats.MostRows, stats.TotalRows)
	}
}

func titleOf(gameID string) string {
	for _, g := range registry.List() {
		if g.ID == gameID {
			return g.Title
		}
	}
	return gameID
}

func printEntries(w io.Writer, entries []storage.ScoreEntry) {
	fmt.Fprintf(w, "  %-4s  %-8s  %-5s  %-6s  %s\n", "Rank", "Score", "Rows", "Pieces", "Date")
	fmt.Fprintf(w, "  %-4s  %-8s  %-5s  %-6s  %s\n", "----", "-----", "----", "------", "----")
	for i, e := range entries {
		fmt.Fprintf(w, "  %-4d  %-8d  %-5d  %-6d  %s\n",
			i+1, e.Score, e.RowsCleared, e.PiecesLocked, e.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// printSummary prints one line per mode, including modes never played.
func printSummary(w io.Writer, store *storage.Store, modes []registry.GameInfo) error {
	all, err := store.GetAllGamesStats()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %-22s  %-5s  %-6s  %-7s  %-9s  %s\n", "Mode", "Games", "Best", "Average", "Most rows", "Last played")
	for _, g := range modes {
		s := all[g.ID]
		if s == nil {
			fmt.Fprintf(w, "  %-22s  %-5d  %-6s  %-7s  %-9s  %s\n", g.Title, 0, "-", "-", "-", "never")
			continue
		}
		fmt.Fprintf(w, "  %-22s  %-5d  %-6d  %-7.0f  %-9d  %s\n",
			g.Title, s.GamesCount, s.HighScore, s.AvgScore, s.MostRows, s.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
