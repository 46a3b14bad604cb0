package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mission-planner/mission"
)

var (
	planMissionFile string
	planZonesFile   string
	planMargin      float64
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan the waypoint route for a mission file",
	Long: `Plan a route visiting every mission waypoint in order, detouring
around the flight boundary where the direct leg would leave it, and
print the result as JSON.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planMissionFile, "mission", "", "mission data file (required)")
	planCmd.Flags().StringVar(&planZonesFile, "zones", "", "no-fly zones GeoJSON file")
	planCmd.Flags().Float64Var(&planMargin, "margin", -1, "boundary safety margin in meters (overrides config)")
	planCmd.MarkFlagRequired("mission")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigWithDefaults(configPath())
	if err != nil {
		return err
	}
	margin := planMargin
	if margin < 0 {
		margin = cfg.SafetyMargin
	}

	m, err := buildMission(planMissionFile, planZonesFile, margin, cfg.SimplifyTolerance)
	if err != nil {
		return err
	}

	route, err := m.WaypointRoute()
	if err != nil {
		return fmt.Errorf("failed to plan route: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(RouteResponse{
		Path:           route.Points,
		Success:        true,
		DistanceMeters: route.DistanceMeters,
	})
}

// buildMission loads a mission file, builds its planner, and attaches
// simplified no-fly zones when a zones file is given.
func buildMission(missionFile, zonesFile string, margin, tolerance float64) (*mission.Mission, error) {
	plan, err := mission.LoadPlan(missionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}
	m, err := mission.NewMission(plan, margin)
	if err != nil {
		return nil, fmt.Errorf("failed to build mission: %w", err)
	}
	if zonesFile != "" {
		zones, err := mission.LoadZones(zonesFile, m.Projection)
		if err != nil {
			return nil, fmt.Errorf("failed to load no-fly zones: %w", err)
		}
		m.AttachZones(mission.SimplifyZones(zones, tolerance))
	}
	return m, nil
}
