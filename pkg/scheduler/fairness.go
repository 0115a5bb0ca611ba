package scheduler

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

// Fairness summarises how evenly duties are spread over the families that
// owe service. Score is a percentage: 100 when every family serves equally,
// 0 when the standard deviation reaches the mean.
func Fairness(r Roster, snap *arrangement.Snapshot) models.FairnessStats {
	held := snap.DutiesOf()
	var counts []float64
	total := 0
	for _, p := range r.Parents() {
		if !volunteers(p) && len(held[p]) == 0 {
			continue
		}
		counts = append(counts, float64(len(held[p])))
		total += len(held[p])
	}
	fs := models.FairnessStats{Families: len(counts), Duties: total, Score: 100}
	if len(counts) == 0 || total == 0 {
		return fs
	}
	fs.Mean = stat.Mean(counts, nil)
	fs.StdDev = math.Sqrt(stat.PopVariance(counts, nil))
	fs.Score = math.Max(0, (1-fs.StdDev/fs.Mean)*100)
	return fs
}

func volunteers(p *models.Parent) bool {
	for _, c := range p.Children {
		if c.Volunteer && c.IsActive() {
			return true
		}
	}
	return false
}
