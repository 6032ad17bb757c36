package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csv2cypher/internal/handler"
)

var errStructure = errors.New("structure check failed")

func (a *app) convertCmd() *cobra.Command {
	var (
		dir   string
		out   string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "convert [KNOWLEDGE_FILE PREREQUISITE_FILE]",
		Short: "Convert knowledge point / prerequisite pairs into Cypher files",
		Long: `Convert one pair of files, or every knowledge_points_<TAG> / Prerequisite_<TAG>
pair found in --dir when no files are given (falling back to
knowledge_points_EMA.csv and Prerequisite_EMA.csv).

For each pair three files are written to --out:
  <knowledge>_nodes.cypher
  <prerequisite>_relationships.cypher
  <knowledge>_<prerequisite>_complete.cypher (only when both succeed)`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected 0 or 2 files, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("dir") {
				dir = a.cfg.Convert.InputDir
			}
			if !cmd.Flags().Changed("out") {
				out = a.cfg.Convert.OutputDir
			}

			var explicit []handler.Pair
			if len(args) == 2 {
				explicit = []handler.Pair{{Knowledge: args[0], Prerequisite: args[1]}}
			}

			if check {
				pairs := explicit
				if pairs == nil {
					found, err := handler.ResolvePairs(dir)
					if err != nil {
						return err
					}
					pairs = found
				}
				return a.checkPairs(cmd, pairs)
			}

			store, err := a.openHistory(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			p := a.pipeline(store, out)
			if explicit == nil {
				results, err := p.ProcessDir(cmd.Context(), dir)
				if len(results) > 0 {
					printer(cmd.OutOrStdout()).Pairs(results)
				}
				return err
			}

			res, err := p.ProcessPair(cmd.Context(), explicit[0])
			printer(cmd.OutOrStdout()).Pairs([]*handler.PairResult{res})
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory searched for file pairs (default CONVERT_INPUT_DIR)")
	cmd.Flags().StringVarP(&out, "out", "o", "output", "output directory (default CONVERT_OUTPUT_DIR)")
	cmd.Flags().BoolVar(&check, "check", false, "only check that the files carry the required columns")
	return cmd
}

func (a *app) checkPairs(cmd *cobra.Command, pairs []handler.Pair) error {
	pr := printer(cmd.OutOrStdout())
	failed := 0
	for _, pair := range pairs {
		kValid, pValid, problems := a.converter.ValidateStructure(pair.Knowledge, pair.Prerequisite)
		pr.Validation(kValid, pValid, problems)
		if !kValid || !pValid {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d pairs", errStructure, failed, len(pairs))
	}
	return nil
}
