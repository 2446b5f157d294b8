package main

import (
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/spf13/cobra"
)

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check TEMPLATE...",
		Short: "Check template syntax and list the fields used",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.engineConfig(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, text := range args {
				model, err := mtl.Parse(text)
				if err != nil {
					fmt.Fprintf(out, "%q: %v\n", text, err)
					failed++
					continue
				}
				fields := model.Fields()
				if len(fields) == 0 {
					fmt.Fprintf(out, "%q: ok\n", text)
					continue
				}
				fmt.Fprintf(out, "%q: ok (fields: %s)\n", text, strings.Join(fields, ", "))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates are invalid", failed, len(args))
			}
			return nil
		},
	}
}
