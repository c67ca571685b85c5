package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ph-address/internal/cascade"
	"ph-address/internal/form"
	"ph-address/internal/psgc"
)

var selection cascade.Initial

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the options each selector would show for a given selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return printOptions(cmd.OutOrStdout(), idx, selection)
	},
}

func init() {
	f := optionsCmd.Flags()
	f.StringVar(&selection.Region, "region", "", "Region code or alias (NCR, R4A, ...)")
	f.StringVar(&selection.Province, "province", "", "Province code")
	f.StringVar(&selection.City, "city", "", "City/municipality code")
	f.StringVar(&selection.Barangay, "barangay", "", "Barangay code")
	rootCmd.AddCommand(optionsCmd)
}

func printOptions(w io.Writer, idx *psgc.Index, in cascade.Initial) error {
	cfg := cascade.DefaultIDs()
	cfg.Initial = in
	doc := form.NewCascadeDocument(cfg)
	if _, err := cascade.Attach(doc, cfg, idx); err != nil {
		return err
	}
	for _, id := range []string{cfg.Region, cfg.Province, cfg.City, cfg.Barangay} {
		v := doc.Select(id).View()
		fmt.Fprintf(w, "[%s] value=%q options=%d\n", id, v.Value, len(v.Options)-1)
		for _, o := range v.Options[1:] {
			mark := " "
			if o.Value == v.Value {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %s\t%s\n", mark, o.Value, o.Label)
		}
	}
	fmt.Fprintf(w, "region_alias=%s\n", doc.Hidden(cfg.HiddenRegionAlias).Value())
	return nil
}
