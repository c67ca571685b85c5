package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ph-address/internal/psgc"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Verify every child's parent code exists one tier up",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if n := printOrphans(cmd.OutOrStdout(), idx); n > 0 {
			return fmt.Errorf("%d orphaned parent codes", n)
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(orphansCmd) }

func printOrphans(w io.Writer, idx *psgc.Index) int {
	orphans := idx.Orphans()
	if len(orphans) == 0 {
		fmt.Fprintln(w, "ok: no orphans")
		return 0
	}
	for _, o := range orphans {
		fmt.Fprintf(w, "%s\tparent=%s\tchildren=%d\n", o.Tier, o.Parent, o.Count)
	}
	return len(orphans)
}
