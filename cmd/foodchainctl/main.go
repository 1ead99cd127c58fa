// Command foodchainctl checks FoodChain data and save files offline.
//
// Subcommands:
//   - validate-data: parse every era file and report its food chains
//   - inspect: print the board, scores and legal moves of a save file
//   - new-save: start a game and write it as a save file
//   - autoplay: let bots finish a saved game and print the winner
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/foodchain/game/bot"
	"github.com/wricardo/mcp-training/foodchain/game/config"
	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
)

var errInvalidData = errors.New("era data has errors")

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// dataDirDefault honors FOODCHAIN_DATA_DIR like the server does
func dataDirDefault() string {
	if dir := os.Getenv("FOODCHAIN_DATA_DIR"); dir != "" {
		return dir
	}
	return "data"
}

func dataDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "data-dir",
		Value: dataDirDefault(),
		Usage: "directory containing past.txt, present.txt and future.txt",
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "foodchainctl",
		Usage: "validate era data and work with FoodChain save files",
		Commands: []*cli.Command{
			{
				Name:  "validate-data",
				Usage: "parse every era file and list its food chains",
				Flags: []cli.Flag{dataDirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return validateData(out, cmd.String("data-dir"))
				},
			},
			{
				Name:      "inspect",
				Usage:     "print a save file as a board with scores and legal moves",
				ArgsUsage: "<save-file>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						return fmt.Errorf("inspect needs a save file path")
					}
					return inspect(out, path)
				},
			},
			{
				Name:  "new-save",
				Usage: "start a game and write it as a save file",
				Flags: []cli.Flag{
					dataDirFlag(),
					&cli.StringFlag{Name: "era", Value: string(engine.Past), Usage: "PAST, PRESENT or FUTURE"},
					&cli.StringFlag{Name: "size", Value: string(engine.Small), Usage: "SMALL, MEDIUM or LARGE"},
					&cli.IntFlag{Name: "rounds", Value: 20, Usage: "total rounds"},
					&cli.IntFlag{Name: "seed", Value: 0, Usage: "random seed (0 picks one)"},
					&cli.StringFlag{Name: "out", Usage: "write to this file instead of stdout"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return newSave(out, newSaveOptions{
						DataDir: cmd.String("data-dir"),
						Era:     cmd.String("era"),
						Size:    cmd.String("size"),
						Rounds:  int(cmd.Int("rounds")),
						Seed:    uint64(cmd.Int("seed")),
						Out:     cmd.String("out"),
					})
				},
			},
			{
				Name:      "autoplay",
				Usage:     "let bots play every seat of a saved game to the end",
				ArgsUsage: "<save-file>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max-turns", Value: 0, Usage: "stop after this many turns (0 plays to the end)"},
					&cli.BoolFlag{Name: "verbose", Usage: "print every turn"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						return fmt.Errorf("autoplay needs a save file path")
					}
					return autoplay(out, path, int(cmd.Int("max-turns")), cmd.Bool("verbose"))
				},
			},
		},
	}
}

func validateData(out io.Writer, dataDir string) error {
	manager, err := config.NewManager(dataDir)
	if err != nil {
		return err
	}

	failed := 0
	for _, info := range manager.ListEras() {
		if info.Error != "" {
			failed++
			fmt.Fprintf(out, "✗ %s (%s): %s\n", info.Era, info.Filename, info.Error)
			continue
		}
		if len(info.Chains) == 0 {
			failed++
			fmt.Fprintf(out, "✗ %s (%s): no food chains\n", info.Era, info.Filename)
			continue
		}
		fmt.Fprintf(out, "✓ %s (%s): %d food chains\n", info.Era, info.Filename, len(info.Chains))
		for _, c := range info.Chains {
			fmt.Fprintf(out, "    %s > %s > %s > %s\n", c.Apex, c.Predator, c.Prey, c.Food)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d eras failed", errInvalidData, failed, len(engine.Eras))
	}
	return nil
}

// loadSave reads a save file into a ready engine
func loadSave(path string) (*engine.GameEngine, error) {
	state, tm, err := savefile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e := engine.NewEngine()
	if err := e.LoadFrom(state, tm); err != nil {
		return nil, err
	}
	return e, nil
}

func inspect(out io.Writer, path string) error {
	e, err := loadSave(path)
	if err != nil {
		return err
	}
	printGame(out, e)

	if e.IsGameOver() {
		return nil
	}
	role := e.CurrentTurn()
	fmt.Fprintf(out, "\nLegal moves for %s:\n", role)
	for _, m := range e.LegalMoves(role) {
		dash := ""
		if m.Dash {
			dash = " (dash)"
		}
		fmt.Fprintf(out, "  %s %s%s\n", m.To, m.Kind, dash)
	}
	return nil
}

func printGame(out io.Writer, e *engine.GameEngine) {
	snap := e.Snapshot()
	fmt.Fprintf(out, "Era: %s  Grid: %s (%dx%d)\n", snap.Era, snap.GridSize, snap.Size, snap.Size)
	fmt.Fprintf(out, "Round %d of %d  Turn: %s\n\n", snap.Round, snap.TotalRounds, snap.Turn)
	for _, row := range snap.Rows {
		fmt.Fprintln(out, row)
	}
	fmt.Fprintln(out)
	for _, a := range []engine.AnimalView{snap.Apex, snap.Predator, snap.Prey} {
		fmt.Fprintf(out, "%-8s %-20s at %s score=%d cooldown=%d\n", a.Role, a.Name, a.Position, a.Score, a.Cooldown)
	}
	fmt.Fprintf(out, "%-8s %-20s at %s\n", "FOOD", snap.Food.Name, snap.Food.Position)
	if snap.GameOver {
		fmt.Fprintf(out, "\nGame over. %s\n", e.WinnerText())
	}
}

type newSaveOptions struct {
	DataDir string
	Era     string
	Size    string
	Rounds  int
	Seed    uint64
	Out     string
}

func newSave(out io.Writer, opts newSaveOptions) error {
	era, err := engine.ParseEra(opts.Era)
	if err != nil {
		return err
	}
	size, err := engine.ParseGridSize(opts.Size)
	if err != nil {
		return err
	}
	manager, err := config.NewManager(opts.DataDir)
	if err != nil {
		return err
	}

	engineOpts := []engine.Option{engine.WithChainSource(manager)}
	if opts.Seed != 0 {
		engineOpts = append(engineOpts, engine.WithRand(engine.NewSeededRand(opts.Seed)))
	}
	e := engine.NewEngine(engineOpts...)
	if _, err := e.StartGame(engine.GameConfig{Era: era, GridSize: size, TotalRounds: opts.Rounds}); err != nil {
		return err
	}

	if opts.Out == "" {
		data, err := savefile.Marshal(e.State(), e.Turns())
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	if err := savefile.WriteFile(opts.Out, e.State(), e.Turns()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s game to %s\n", era, opts.Out)
	return nil
}

func autoplay(out io.Writer, path string, maxTurns int, verbose bool) error {
	e, err := loadSave(path)
	if err != nil {
		return err
	}

	turns := bot.NewRoster().PlayUntilHuman(e, maxTurns)
	if verbose {
		for i, t := range turns {
			fmt.Fprintf(out, "%3d %-8s %s -> %s %s\n", i+1, t.Role, t.From, t.To, t.Kind)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Played %d turns\n", len(turns))
	printGame(out, e)
	return nil
}
