package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/umlgen/compiler/gen"
)

func newTargetsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the registered targets and codegen features",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TARGET\tSEALED\tMULTIPLE INHERITANCE")
			for _, name := range gen.Targets() {
				a, err := gen.Lookup(name)
				if err != nil {
					return err
				}
				caps := gen.CapabilitiesOf(a)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, yesNo(caps.SealedHierarchies), yesNo(caps.MultipleInheritance))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "FEATURE\tSTAGE\tDESCRIPTION")
			for _, f := range gen.AllFeatures {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Stage, f.Description)
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
