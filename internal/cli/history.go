package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifegrid/internal/store"
)

// HistoryOptions holds flags shared by the history subcommands.
type HistoryOptions struct {
	*RootOptions
	Database string
	Gen      int
}

type runList []store.Run

func (l runList) String() string {
	if len(l) == 0 {
		return "no runs recorded\n"
	}
	var sb strings.Builder
	for _, r := range l {
		fmt.Fprintf(&sb, "%s  %-16s %2dx%-2d seed=%d  %s\n",
			r.ID, r.Name, r.Rows, r.Cols, r.Seed, r.CreatedAt.Format(time.RFC3339))
	}
	return sb.String()
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect runs recorded with run --db",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List recorded runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			runs, err := st.Runs(cmdContext(cmd))
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list runs", err)
			}
			return newFormatter(rootOpts, cmd).Success(runList(runs))
		},
	}

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the recorded frames of a run",
		Long: `Print every recorded frame of a run, or a single generation with --gen.

Example:
  life history show --db ./life.db 01890a5d-ac96-774b-bcce-b302099a8057 --gen 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			ctx := cmdContext(cmd)
			formatter := newFormatter(rootOpts, cmd)
			if cmd.Flags().Changed("gen") {
				f, err := st.Frame(ctx, args[0], opts.Gen)
				if err != nil {
					return historyError(err)
				}
				return formatter.Success(frameView(f))
			}

			frames, err := st.Frames(ctx, args[0])
			if err != nil {
				return historyError(err)
			}
			for _, f := range frames {
				if err := formatter.Success(frameView(f)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	show.Flags().IntVar(&opts.Gen, "gen", 0, "only print this generation")

	cmd.AddCommand(list, show)
	return cmd
}

func historyError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, "not found", err)
	}
	return WrapExitError(ExitFailure, "failed to read history", err)
}
