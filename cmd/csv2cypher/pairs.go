package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csv2cypher/internal/handler"
)

func (a *app) pairsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "List knowledge point / prerequisite file pairs in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("dir") {
				dir = a.cfg.Convert.InputDir
			}
			pairs, err := handler.FindPairs(dir)
			if err != nil {
				return err
			}
			printer(cmd.OutOrStdout()).PairList(pairs)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory to search (default CONVERT_INPUT_DIR)")
	return cmd
}
