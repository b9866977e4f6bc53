// internal/cli/cli.go
//
// Command-line solver: reads a puzzle, prints the first or last winner's score.
//
//	bingo -example
//	bingo -input puzzle.txt -mode last
//	cat puzzle.txt | bingo -input - -v
//
// Exit codes: 0 solved, 1 no board won, 2 usage or input error.
package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/bingo"
	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/puzzle"
)

const (
	ExitOK       = 0
	ExitNoWinner = 1
	ExitUsage    = 2
)

type options struct {
	Input   string
	Example bool
	Mode    string
	Verbose bool
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("bingo", flag.ContinueOnError)
	fs.StringVar(&opts.Input, "input", "", "puzzle file (\"-\" reads stdin)")
	fs.BoolVar(&opts.Example, "example", false, "solve the built-in example puzzle")
	fs.StringVar(&opts.Mode, "mode", "first", "which winner to report: first | last")
	fs.BoolVar(&opts.Verbose, "v", false, "print the full result as JSON")
	return fs
}

// Run executes the solver with argv (without the program name).
func Run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}).
		Level(zerolog.InfoLevel)

	var opts options
	fs := newFlagSet(&opts)
	fs.SetOutput(stderr)
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if opts.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	mode, err := game.ParseMode(opts.Mode)
	if err != nil {
		logger.Error().Err(err).Msg("bad -mode")
		return ExitUsage
	}
	text, err := readInput(opts, stdin)
	if err != nil {
		logger.Error().Err(err).Msg("read input")
		fs.Usage()
		return ExitUsage
	}

	p, err := puzzle.ParseString(text)
	if err != nil {
		logger.Error().Err(err).Msg("parse puzzle")
		return ExitUsage
	}
	boards, err := p.NewBoards()
	if err != nil {
		logger.Error().Err(err).Msg("invalid board")
		return ExitUsage
	}
	logger.Debug().Int("draws", len(p.Draws)).Int("boards", len(boards)).Str("mode", string(mode)).Msg("solving")

	find := bingo.FindFirstWinner
	if mode == game.ModeLast {
		find = bingo.FindLastWinner
	}
	res, err := find(boards, p.Draws)
	switch {
	case errors.Is(err, bingo.ErrNoWinner):
		logger.Warn().Msg("no board won")
		return ExitNoWinner
	case err != nil:
		logger.Error().Err(err).Msg("solve")
		return ExitUsage
	}

	if !opts.Verbose {
		_, _ = fmt.Fprintln(stdout, res.Score)
		return ExitOK
	}
	out := struct {
		Mode game.Mode `json:"mode"`
		bingo.WinResult
		Cells []int `json:"cells"`
	}{Mode: mode, WinResult: res, Cells: res.Board.Cells()}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error().Err(err).Msg("write result")
		return ExitUsage
	}
	return ExitOK
}

func readInput(opts options, stdin io.Reader) (string, error) {
	switch {
	case opts.Example && opts.Input != "":
		return "", errors.New("-example and -input are mutually exclusive")
	case opts.Example:
		return assets.Example(), nil
	case opts.Input == "-":
		b, err := io.ReadAll(stdin)
		return string(b), err
	case opts.Input != "":
		b, err := os.ReadFile(opts.Input)
		return string(b), err
	}
	return "", errors.New("one of -input or -example is required")
}
