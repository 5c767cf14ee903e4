// blockfall is a falling-block puzzle game for the terminal.
//
// Usage:
//
//	blockfall list              - List game modes
//	blockfall play [mode]       - Play a mode (default: blockfall)
//	blockfall menu              - Pick a mode interactively
//	blockfall serve             - Start SSH server for remote play
//	blockfall scores [mode]     - Show high scores
//	blockfall config            - Print the effective configuration
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.blockfall/scores.db)
//	--config <path>      - Use a custom config YAML
//	--log-level <level>  - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/games/blockfall"
)

const defaultGameID = "blockfall"

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockfall",
	Short: "Blockfall - a falling-block puzzle in your terminal",
	Long: `Blockfall drops pieces onto a 10x20 board. Steer and rotate them,
fill complete rows to clear them, and keep the stack below the top.

Available commands:
  list     - Show the game modes
  play     - Play a mode directly
  menu     - Interactive mode picker
  serve    - Start SSH server for remote play
  scores   - View high scores
  config   - Print the effective configuration

Examples:
  blockfall play
  blockfall play blockfall_classic
  blockfall menu
  blockfall serve --ssh :2222
  blockfall scores`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.blockfall/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(configCmd)
}

// setup applies the global flags before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	if flagFPS <= 0 {
		return fmt.Errorf("invalid --fps %d: must be positive", flagFPS)
	}

	log.SetLevel(level)
	blockfall.SetConfigPath(flagConfig)
	useDefaultLogger()
	return nil
}

// useDefaultLogger hands the game package a child of the default logger.
// Children copy their parent's output, so this runs again whenever the
// default logger's output changes.
func useDefaultLogger() {
	blockfall.SetLogger(log.Default().WithPrefix("blockfall"))
}

// logToFile redirects the default logger to ~/.blockfall/blockfall.log so
// log lines do not tear the full-screen UI. The returned function restores
// stderr and closes the file.
func logToFile() func() {
	var out io.Writer = io.Discard
	var f *os.File
	if dir := config.UserDir(); dir != "" && os.MkdirAll(dir, 0o755) == nil {
		var err error
		f, err = os.OpenFile(filepath.Join(dir, "blockfall.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
		}
	}

	log.SetOutput(out)
	log.SetReportTimestamp(true)
	useDefaultLogger()

	return func() {
		log.SetOutput(os.Stderr)
		log.SetReportTimestamp(false)
		useDefaultLogger()
		if f != nil {
			f.Close()
		}
	}
}
