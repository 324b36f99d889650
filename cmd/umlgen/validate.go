package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(c *cli) *cobra.Command {
	var (
		name   string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a model and print its findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("model") {
				name = c.config.Model
			}
			build, err := model(name)
			if err != nil {
				return err
			}
			m, err := build()
			if err != nil {
				return err
			}
			res := m.Validate()
			for _, f := range res.Findings {
				fmt.Fprintln(c.out, f)
			}
			err = res.Err()
			if strict {
				err = res.StrictErr()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "model %s is valid\n", m.Name())
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "model", "m", "research", "bundled model to validate")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings")
	return cmd
}
