package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lifegrid/pkg/sims/life"
)

// figureInfo is the listing entry for one named figure.
type figureInfo struct {
	Name   string   `json:"name"`
	Height int      `json:"height"`
	Width  int      `json:"width"`
	Rows   []string `json:"rows"`
}

type figureList []figureInfo

func (l figureList) String() string {
	var sb strings.Builder
	for i, f := range l {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s (%dx%d)\n", f.Name, f.Height, f.Width)
		for _, r := range f.Rows {
			sb.WriteString(r)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "patterns",
		Short:         "List the named figures available to --figure and scene stamps",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list figureList
			for _, f := range life.Figures() {
				list = append(list, figureInfo{
					Name:   f.Name,
					Height: int(f.H),
					Width:  int(f.W),
					Rows:   strings.Split(strings.TrimSuffix(f.String(), "\n"), "\n"),
				})
			}
			return newFormatter(rootOpts, cmd).Success(list)
		},
	}
}
