package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/astdigest/internal/keymap"
)

var legendJSON bool

// legendCmd represents the legend command
var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print the key legend used by key-mapped digests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLegend(keymap.Default(), legendJSON, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(legendCmd)
	legendCmd.Flags().BoolVar(&legendJSON, "json", false, "print the legend as a JSON object")
}

func runLegend(legend *keymap.Legend, asJSON bool, out io.Writer) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(legend.Map())
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSHORT")
	for _, long := range legend.Keys() {
		short, _ := legend.Short(long)
		fmt.Fprintf(tw, "%s\t%s\n", long, short)
	}
	return tw.Flush()
}
