package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"itorder/internal/config"
	"itorder/internal/loader"
	"itorder/internal/selector"
	"itorder/internal/util"
)

var (
	graphFile   string
	configFile  string
	outDir      string
	maxParallel int
	timeout     time.Duration
)

// runSummary is written next to report.json as run.yaml.
type runSummary struct {
	RunID         string             `yaml:"run_id"`
	Graph         string             `yaml:"graph"`
	Components    int                `yaml:"components"`
	Relationships int                `yaml:"relationships"`
	Rejected      []string           `yaml:"rejected,omitempty"`
	Chosen        string             `yaml:"chosen"`
	Order         []string           `yaml:"order"`
	Scores        map[string]float64 `yaml:"scores"`
	Failures      map[string]string  `yaml:"failures,omitempty"`
	Config        config.Config      `yaml:"config"`
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&graphFile, "file", "f", "graph.yaml", "Dependency graph YAML/JSON file")
	analyzeCmd.Flags().StringVarP(&configFile, "config", "c", "", "Selector config YAML file")
	analyzeCmd.Flags().StringVar(&outDir, "out", ".", "run-<id> ディレクトリの作成先")
	analyzeCmd.Flags().IntVar(&maxParallel, "max-parallel", 3, "最大並列実行数")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 0, "全アルゴリズムの制限時間 (0 = 無制限)")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run every generator on a graph and pick the best test order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if configFile != "" {
			var err error
			if cfg, err = loader.LoadConfig(configFile); err != nil {
				return fmt.Errorf("config読み込み失敗: %w", err)
			}
		}
		if cmd.Flags().Changed("max-parallel") {
			cfg.MaxParallel = maxParallel
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Timeout = timeout
		}

		util.Info("グラフを読み込み中: %s", graphFile)
		g, rejected, err := buildGraph(graphFile)
		if err != nil {
			return fmt.Errorf("グラフ読み込み失敗: %w", err)
		}

		runID := util.NewUUID()
		runDir := filepath.Join(outDir, "run-"+runID)
		if err := os.MkdirAll(runDir, 0755); err != nil {
			return err
		}
		if err := util.SetLogFile(filepath.Join(runDir, "log.txt")); err != nil {
			return err
		}
		defer util.CloseLogFile()
		util.Info("Runディレクトリ: %s", runDir)
		util.Success("グラフ構築完了。コンポーネント数: %d, 関係数: %d", g.Len(), len(g.Relationships()))

		var logOut io.Writer = cmd.ErrOrStderr()
		if w := util.LogWriter(); w != nil {
			logOut = io.MultiWriter(logOut, w)
		}
		sel, err := selector.New(cfg, selector.WithLogger(util.NewLogger(logOut, logLevel)))
		if err != nil {
			return fmt.Errorf("config不正: %w", err)
		}
		report, err := sel.Compare(cmd.Context(), g)
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(runDir, "report.json"), b, 0644); err != nil {
			return err
		}

		summary := runSummary{
			RunID:         runID,
			Graph:         graphFile,
			Components:    g.Len(),
			Relationships: len(g.Relationships()),
			Chosen:        report.Chosen,
			Order:         report.ChosenResult().Order,
			Scores:        report.Scores,
			Failures:      report.Failures,
			Config:        cfg,
		}
		for _, r := range rejected {
			summary.Rejected = append(summary.Rejected, r.Error())
		}
		y, err := yaml.Marshal(summary)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(runDir, "run.yaml"), y, 0644); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
		util.Success("選択: %s", report.Chosen)
		return nil
	},
}
