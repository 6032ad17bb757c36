package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csv2cypher/internal/core"
)

func (a *app) nodesCmd() *cobra.Command {
	return a.singleCmd(core.KindKnowledgePoints, "nodes FILE", "Print the node script for a knowledge point file")
}

func (a *app) prereqsCmd() *cobra.Command {
	return a.singleCmd(core.KindPrerequisites, "prereqs FILE", "Print the relationship script for a prerequisite file")
}

// singleCmd converts one file and prints the script, or writes it to --output.
func (a *app) singleCmd(kind core.Kind, use, short string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := a.pipeline(store, "").Convert(cmd.Context(), kind, args[0])
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), res.Cypher)
				return err
			}
			if err := os.WriteFile(output, []byte(res.Cypher), 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d records written to %s (%s)\n", res.Records, output, res.Encoding)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the script to this file instead of stdout")
	return cmd
}
