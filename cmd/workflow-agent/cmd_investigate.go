package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/format"
)

func newInvestigateCmd(a *app) *cobra.Command {
	var flags struct {
		format string
		where  string
	}
	cmd := &cobra.Command{
		Use:   "investigate <project-id>",
		Short: "List the workflow rules enabled for a project",
		Long: `Reads every workflow attached to the project concurrently and prints the
rules enabled for it, in workflow order, followed by a link to each workflow.
Workflows that cannot be read are reported on stderr and skipped.

Filter rules with a CEL expression over rule.<field>, for example:
  workflow-agent investigate DEMO --where 'rule.ruleScript.contains("Assignee")'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *evidence.Filter
			if flags.where != "" {
				f, err := evidence.CompileFilter(flags.where)
				if err != nil {
					return err
				}
				filter = f
			}
			asJSON := flags.format == "json"
			var mode format.Mode
			if !asJSON {
				m, err := format.ParseMode(flags.format)
				if err != nil {
					return err
				}
				mode = m
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			rep, err := a.investigator(client).Investigate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rep.Records, err = filter.Apply(rep.Records); err != nil {
				return fmt.Errorf("apply filter: %w", err)
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if rep.DiscoveryError != nil {
				fmt.Fprintf(errOut, "could not list workflows of %s: %v\n", args[0], rep.DiscoveryError)
			} else if len(rep.Results) > 0 {
				fmt.Fprintln(errOut, format.OutcomeTable(rep.Results, mode))
			}

			if asJSON {
				data, err := rep.Artifact().MarshalIndent()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(rep.Records) == 0 {
				fmt.Fprintf(out, "no enabled workflow rules found for %s\n", args[0])
				return nil
			}
			fmt.Fprintln(out, format.EvidenceTable(rep.Records, mode))
			for _, l := range rep.Links() {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.format, "format", "f", "table", "output format: table, markdown or json")
	f.StringVar(&flags.where, "where", "", "CEL filter over rule, e.g. rule.workflowName.startsWith(\"@jetbrains\")")
	return cmd
}
