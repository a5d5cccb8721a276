package node

import (
	"math"

	"github.com/Deivu/Anchorage/model"
)

// computePenalty derives a scalar load estimate from a stats frame. Lower
// is better; it feeds the fleet's ideal-node selection.
func computePenalty(stats model.Stats) float64 {
	penalty := float64(stats.Players)
	penalty += math.Round(math.Pow(1.05, 100*stats.Cpu.SystemLoad))
	if stats.FrameStats != nil {
		penalty += float64(stats.FrameStats.Deficit)
		penalty += float64(stats.FrameStats.Nulled) * 2
	}
	return penalty
}
