package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yule44ka/workflow-agent/internal/brief"
	"github.com/yule44ka/workflow-agent/internal/docs"
)

func newBriefCmd(a *app) *cobra.Command {
	var flags struct {
		problem string
		doc     string
	}
	cmd := &cobra.Command{
		Use:   "brief <project-id>",
		Short: "Print the diagnosis brief an LLM would receive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			rep, err := a.investigator(client).Investigate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			b, err := brief.Build(brief.FromReport(flags.problem, a.docs().Lookup(flags.doc), rep))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "## System\n\n%s\n\n## User\n\n%s", b.System, b.User)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.problem, "problem", "p", "", "what the user saw happen (required)")
	f.StringVar(&flags.doc, "doc", docs.DefaultName, "reference document to include")
	_ = cmd.MarkFlagRequired("problem")
	return cmd
}
