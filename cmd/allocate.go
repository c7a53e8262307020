package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/transitflow/busalloc/config"
	"github.com/transitflow/busalloc/core/allocation"
	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/infra/logger"
)

var (
	allocBuses int
	allocCycle int
	countsPath string
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run a one-shot fleet allocation and print the result",
	RunE:  allocateOnce,
}

func init() {
	allocateCmd.Flags().IntVar(&allocBuses, "buses", 0, "total buses available")
	allocateCmd.Flags().IntVar(&allocCycle, "cycle", 0, "route cycle time in seconds (0 when unknown)")
	allocateCmd.Flags().StringVar(&countsPath, "counts", "", "JSON file mapping stop id to passenger count")
	rootCmd.AddCommand(allocateCmd)
}

func allocateOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	counts := model.StopCounts{}
	if countsPath != "" {
		data, err := os.ReadFile(countsPath)
		if err != nil {
			return fmt.Errorf("read counts: %w", err)
		}
		if err := json.Unmarshal(data, &counts); err != nil {
			return fmt.Errorf("parse counts: %w", err)
		}
	}

	engine, err := allocationEngine(cfg)
	if err != nil {
		return err
	}
	res, err := engine.Allocate(model.FleetRequest{TotalBuses: allocBuses, CycleSeconds: allocCycle}, counts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func allocationEngine(cfg *config.Config) (*allocation.Engine, error) {
	return allocation.NewEngine(cfg.Topology, cfg.Engine, logger.New("allocate-command"))
}
