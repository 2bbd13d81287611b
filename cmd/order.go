package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"itorder/internal/generator"
	"itorder/internal/selector"
)

var (
	algorithm  string
	orderGraph string
	asJSON     bool
)

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.Flags().StringVarP(&algorithm, "algorithm", "a", generator.NameBLW, "td, tjjm or blw")
	orderCmd.Flags().StringVarP(&orderGraph, "file", "f", "graph.yaml", "Dependency graph YAML/JSON file")
	orderCmd.Flags().BoolVar(&asJSON, "json", false, "JSONで出力")
}

func generatorFor(name string) (selector.Generator, error) {
	switch name {
	case generator.NameTD:
		return generator.NewTaiDaniels(logger), nil
	case generator.NameTJJM:
		return generator.NewTJJM(logger), nil
	case generator.NameBLW:
		return generator.NewBLW(logger), nil
	}
	return nil, fmt.Errorf("unknown algorithm %q (td, tjjm, blw)", name)
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Run one generator and print its test order",
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := generatorFor(algorithm)
		if err != nil {
			return err
		}
		g, _, err := buildGraph(orderGraph)
		if err != nil {
			return fmt.Errorf("グラフ読み込み失敗: %w", err)
		}
		res, err := gen.Generate(cmd.Context(), g)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderResult(res))
		return nil
	},
}
