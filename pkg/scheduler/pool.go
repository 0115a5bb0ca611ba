package scheduler

import (
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

// candidate is a student admitted to the pool at a priority tier; tier 0
// goes first.
type candidate struct {
	student *models.Student
	tier    int
}

// Candidates builds the ordered pool of students available for new duties.
// A family's unassigned volunteers get tiers counting up from the number of
// duties the family already holds, and none is admitted at or above the
// fairness ceiling. Each tier is shuffled, then tiers are concatenated.
func (s *Scheduler) Candidates() []*models.Student {
	assigned := s.Arrangement.Assigned()
	ceiling := s.opts.FairnessCeiling

	var cands []candidate
	for _, p := range s.Roster.Parents() {
		tier := 0
		for _, c := range p.Children {
			if assigned[c] {
				tier++
			}
		}
		for _, c := range p.Children {
			if assigned[c] {
				continue
			}
			if tier >= ceiling {
				break
			}
			if !c.IsActive() || !c.Volunteer {
				continue
			}
			cands = append(cands, candidate{student: c, tier: tier})
			tier++
		}
	}

	var pool []*models.Student
	for tier := 0; tier < ceiling; tier++ {
		var group []*models.Student
		for _, c := range cands {
			if c.tier == tier {
				group = append(group, c.student)
			}
		}
		s.rand.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		pool = append(pool, group...)
	}
	return pool
}

// SplitPools partitions a pool by class session, keeping order. Students of
// noon-only classes belong to neither pool.
func SplitPools(pool []*models.Student) (morning, afternoon []*models.Student) {
	for _, st := range pool {
		switch st.Session() {
		case models.SessionMorning:
			morning = append(morning, st)
		case models.SessionAfternoon:
			afternoon = append(afternoon, st)
		}
	}
	return morning, afternoon
}
