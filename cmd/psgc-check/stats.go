package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ph-address/internal/psgc"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count units per tier, collapsed duplicates and skipped records",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex(cmd.Context(), opts)
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), idx)
		return nil
	},
}

func init() { rootCmd.AddCommand(statsCmd) }

func printStats(w io.Writer, idx *psgc.Index) {
	fmt.Fprintf(w, "records\t%d\n", idx.Stats.Records)
	fmt.Fprintf(w, "skipped\t%d\n", idx.Stats.Skipped)
	for _, t := range psgc.Tiers {
		fmt.Fprintf(w, "%s\tunits=%d\tduplicates=%d\n", t, idx.Stats.Units[t], idx.Stats.Conflicts[t])
	}
}
