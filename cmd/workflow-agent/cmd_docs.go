package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yule44ka/workflow-agent/internal/docs"
)

func newDocsCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "docs [name]",
		Short: "Print a workflow reference document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := a.docs()
			out := cmd.OutOrStdout()
			if list {
				for _, n := range reg.Names() {
					fmt.Fprintln(out, n)
				}
				return nil
			}
			name := docs.DefaultName
			if len(args) == 1 {
				name = args[0]
			}
			text := reg.Lookup(name)
			if text == "" {
				return fmt.Errorf("document %q not found", name)
			}
			fmt.Fprint(out, text)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available documents")
	return cmd
}
