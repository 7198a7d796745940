package assignment

import "github.com/fieldpay/dunning/internal/model"

// Distribute maps cases to agents in strict round-robin rotation: a cursor
// walks the agent list modulo its length, one case per step. The mapping is
// fully determined by the two input orders, so the function is pure and the
// per-agent spread never differs by more than one case.
//
// Callers pass cases pre-sorted oldest-first and agents pre-sorted by id;
// both orders are read once and held fixed for the run. An empty agent list
// yields no pairs and signals a skipped run, not an error.
func Distribute(cases []model.CollectionCase, agents []model.Agent) []model.AssignmentPair {
	if len(agents) == 0 || len(cases) == 0 {
		return nil
	}

	pairs := make([]model.AssignmentPair, len(cases))
	for i, c := range cases {
		pairs[i] = model.AssignmentPair{
			CaseID:  c.ID,
			AgentID: agents[i%len(agents)].ID,
		}
	}
	return pairs
}
