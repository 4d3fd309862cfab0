package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lifegrid/internal/scene"
	"lifegrid/internal/sequencer"
	"lifegrid/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Rows     int
	Cols     int
	Seed     int64
	Density  float64
	Steps    int
	TPS      int
	Figures  []string
	Commands []string
	Database string
	Name     string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}
	def := sequencer.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "Run the sequencer and print every generation",
		Long: `Run a life grid one generation per tick and print the flattened grid.

Settings come from the optional scene file; flags given explicitly override it.
Figures are placed with --figure name@row,col and extra commands with --command.
With --db every frame is recorded and can be inspected with "life history".

Example:
  life run --rows 8 --cols 8 --figure glider@0,0 --steps 8 --tps 0
  life run scenes/gliders.yaml --db ./life.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenePath := ""
			if len(args) == 1 {
				scenePath = args[0]
			}
			return runSequencer(cmd, opts, scenePath)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Rows, "rows", def.Rows, "grid rows (1-64)")
	f.IntVar(&opts.Cols, "cols", def.Cols, "grid columns (1-64)")
	f.Int64Var(&opts.Seed, "seed", def.Seed, "random seed")
	f.Float64Var(&opts.Density, "density", def.Density, "initial random fill probability (0-1)")
	f.IntVar(&opts.Steps, "steps", def.Steps, "generations to run (0 runs until interrupted)")
	f.IntVar(&opts.TPS, "tps", def.TPS, "ticks per second (0 runs unpaced)")
	f.StringArrayVar(&opts.Figures, "figure", nil, "figure to place as name@row,col (repeatable)")
	f.StringArrayVar(&opts.Commands, "command", nil, "sequencer command applied before the run (repeatable)")
	f.StringVar(&opts.Database, "db", "", "record frames to this SQLite database")
	f.StringVar(&opts.Name, "name", "", "run name stored with --db (defaults to the scene name)")

	return cmd
}

func runSequencer(cmd *cobra.Command, opts *RunOptions, scenePath string) error {
	sc := scene.Default()
	if scenePath != "" {
		loaded, err := scene.Load(scenePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scene", err)
		}
		sc = loaded
		slog.Info("scene loaded", "path", scenePath, "name", sc.Name)
	}
	if err := applyRunFlags(cmd, opts, sc); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	seq, err := sc.Build()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build scene", err)
	}
	cfg := seq.Config()
	formatter := newFormatter(opts.RootOptions, cmd)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink sequencer.Sink = sequencer.SinkFunc(func(_ context.Context, f sequencer.Frame) error {
		return formatter.Success(frameView(f))
	})

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		name := opts.Name
		if name == "" {
			name = sc.Name
		}
		run, err := st.CreateRun(ctx, store.Run{
			Name: name, Rows: cfg.Rows, Cols: cfg.Cols, Seed: cfg.Seed,
		})
		if err != nil {
			return WrapExitError(ExitFailure, "failed to create run", err)
		}
		slog.Info("recording run", "id", run.ID, "db", opts.Database)

		rec := store.NewRecorder(st, run.ID)
		printer := sink
		sink = sequencer.SinkFunc(func(ctx context.Context, f sequencer.Frame) error {
			if err := rec.Emit(ctx, f); err != nil {
				return err
			}
			return printer.Emit(ctx, f)
		})
	}

	if err := seq.Flush(ctx, sink); err != nil {
		return WrapExitError(ExitFailure, "failed to emit queued frames", err)
	}
	if err := sink.Emit(ctx, seq.Frame()); err != nil {
		return WrapExitError(ExitFailure, "failed to emit initial frame", err)
	}

	if err := seq.Run(ctx, sink); err != nil {
		return WrapExitError(ExitFailure, "run failed", err)
	}
	return nil
}

// applyRunFlags copies explicitly set flags onto the scene and appends
// --figure and --command entries.
func applyRunFlags(cmd *cobra.Command, opts *RunOptions, sc *scene.Scene) error {
	flags := cmd.Flags()
	if flags.Changed("rows") {
		sc.Rows = opts.Rows
	}
	if flags.Changed("cols") {
		sc.Cols = opts.Cols
	}
	if flags.Changed("seed") {
		sc.Seed = opts.Seed
	}
	if flags.Changed("density") {
		sc.Density = opts.Density
	}
	if flags.Changed("steps") {
		sc.Steps = opts.Steps
	}
	if flags.Changed("tps") {
		sc.TPS = opts.TPS
	}
	for _, raw := range opts.Figures {
		st, err := parseFigureFlag(raw)
		if err != nil {
			return err
		}
		sc.Stamps = append(sc.Stamps, st)
	}
	sc.Commands = append(sc.Commands, opts.Commands...)
	return sc.Validate()
}

// parseFigureFlag parses "name@row,col". A bare name is placed at 0,0.
func parseFigureFlag(raw string) (scene.Stamp, error) {
	name, pos, found := strings.Cut(raw, "@")
	st := scene.Stamp{Figure: name}
	if !found {
		return st, nil
	}
	r, c, ok := strings.Cut(pos, ",")
	if !ok {
		return st, fmt.Errorf("figure %q: position must be row,col", raw)
	}
	var err error
	if st.Row, err = strconv.Atoi(strings.TrimSpace(r)); err != nil {
		return st, fmt.Errorf("figure %q: bad row: %w", raw, err)
	}
	if st.Col, err = strconv.Atoi(strings.TrimSpace(c)); err != nil {
		return st, fmt.Errorf("figure %q: bad col: %w", raw, err)
	}
	return st, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
