package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "project <project-id>",
		Short: "Check that a project exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			p, err := client.LookupProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("look up project: %w", err)
			}
			out := cmd.OutOrStdout()
			if p == nil {
				fmt.Fprintf(out, "project %s not found\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "%s\t%s (%s)\n", args[0], p.Name, p.ID)
			return nil
		},
	}
}
