package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"itorder/internal/dag"
	"itorder/internal/generator"
	"itorder/internal/graph"
	"itorder/internal/loader"
	"itorder/internal/util"
)

var validateGraph string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateGraph, "file", "f", "graph.yaml", "Dependency graph YAML/JSON file")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a graph file and report its cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		gf, err := loader.LoadGraph(validateGraph)
		if err != nil {
			return fmt.Errorf("グラフ読み込み失敗: %w", err)
		}
		if err := gf.Check(); err != nil {
			util.Fail("スキーマ検証: %v", err)
		}
		g, rejected := graph.FromRecords(gf.Components, gf.Relationships)
		for _, err := range rejected {
			util.Fail("レコードをスキップ: %v", err)
		}
		util.Info("コンポーネント数: %d, 関係数: %d", g.Len(), len(g.Relationships()))

		cyclic := dag.Cyclic(dag.FindSCCs(g.IDs(), g.Adjacency()))
		for _, scc := range cyclic {
			util.Info("循環: %s", strings.Join(scc, ", "))
		}
		if _, err := generator.MajorLevels(g); err != nil {
			util.Fail("継承/集約に循環があります (td は失敗します): %v", err)
		}
		if len(rejected) > 0 {
			return fmt.Errorf("%d records rejected", len(rejected))
		}
		util.Success("%s は有効です (循環 %d 件)", validateGraph, len(cyclic))
		return nil
	},
}
