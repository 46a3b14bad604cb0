package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mission-planner/mission"
	"mission-planner/search"
)

var (
	routeCellStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	validCellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	invalidCellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	summaryKeyStyle  = lipgloss.NewStyle().Bold(true)
)

var (
	gridMissionFile string
	gridCell        float64
	gridRadius      int
	gridFindProb    float64
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Render the search grid and its coverage route",
	Long: `Segment the mission's search area into cells, plan a coverage route
over it, and render the grid with the route marked. A simulated sweep
along the route reports how much probability mass the coverage leaves
behind.`,
	RunE: runGrid,
}

func init() {
	gridCmd.Flags().StringVar(&gridMissionFile, "mission", "", "mission data file (required)")
	gridCmd.Flags().Float64Var(&gridCell, "cell", 0, "cell size in meters (overrides config)")
	gridCmd.Flags().IntVar(&gridRadius, "radius", 0, "view radius in cells (overrides config)")
	gridCmd.Flags().Float64Var(&gridFindProb, "find-prob", 0.85, "chance of spotting an object in a viewed cell")
	gridCmd.MarkFlagRequired("mission")
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigWithDefaults(configPath())
	if err != nil {
		return err
	}
	cellSize := gridCell
	if cellSize <= 0 {
		cellSize = cfg.CellSize
	}
	radius := gridRadius
	if radius <= 0 {
		radius = cfg.ViewRadius
	}

	m, err := buildMission(gridMissionFile, "", cfg.SafetyMargin, cfg.SimplifyTolerance)
	if err != nil {
		return err
	}

	cellMap, err := m.SearchGrid(cellSize)
	if err != nil {
		return fmt.Errorf("failed to segment search area: %w", err)
	}
	route, micro, err := m.SearchRoute(cellMap, radius)
	if err != nil {
		return fmt.Errorf("failed to plan coverage: %w", err)
	}

	seen, residual := simulateSweep(cellMap, micro, radius, gridFindProb)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderGrid(cellMap, micro))
	fmt.Fprintln(out, renderSummary(cellMap, route, seen, residual))
	return nil
}

// renderGrid draws the cell map one row per line, marking route cells
// o, other valid cells #, and cells outside the search area ".".
func renderGrid(cellMap *search.CellMap, route []search.Coord) string {
	onRoute := make(map[search.Coord]bool, len(route))
	for _, c := range route {
		onRoute[c] = true
	}

	var b strings.Builder
	for i, row := range cellMap.Data {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			switch {
			case onRoute[search.Coord{Row: i, Col: j}]:
				b.WriteString(routeCellStyle.Render("o"))
			case cell.Valid:
				b.WriteString(validCellStyle.Render("#"))
			default:
				b.WriteString(invalidCellStyle.Render("."))
			}
		}
	}
	return b.String()
}

func renderSummary(cellMap *search.CellMap, route *mission.Route, seen int, residual float64) string {
	lines := []string{
		fmt.Sprintf("%s %d", summaryKeyStyle.Render("valid cells:"), cellMap.NumValid),
		fmt.Sprintf("%s %d points, %.1f m", summaryKeyStyle.Render("route:"), len(route.Points), route.DistanceMeters),
		fmt.Sprintf("%s %d cells seen, %.3f residual probability", summaryKeyStyle.Render("sweep:"), seen, residual),
	}
	return strings.Join(lines, "\n")
}

// simulateSweep flies a seeker along the route and reports how many
// cells it observed and the probability mass left on the map after the
// sweep.
func simulateSweep(cellMap *search.CellMap, route []search.Coord, viewRadius int, findProb float64) (int, float64) {
	if len(route) > 0 {
		seeker := search.NewSeeker(route[0], findProb, viewRadius, cellMap)
		// A zero displacement scans the launch cell's view before
		// the sweep starts.
		seeker.Move(search.Coord{})
		for i := 1; i < len(route); i++ {
			seeker.Move(search.Coord{
				Row: route[i].Row - route[i-1].Row,
				Col: route[i].Col - route[i-1].Col,
			})
		}
	}

	seen := 0
	residual := 0.0
	for _, row := range cellMap.Data {
		for _, cell := range row {
			if !cell.Valid {
				continue
			}
			if cell.Seen {
				seen++
			}
			residual += cell.Probability
		}
	}
	return seen, residual
}
