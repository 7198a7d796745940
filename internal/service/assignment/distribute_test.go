package assignment_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldpay/dunning/internal/model"
	"github.com/fieldpay/dunning/internal/service/assignment"
)

func makeCases(n int) []model.CollectionCase {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	cases := make([]model.CollectionCase, n)
	for i := range cases {
		cases[i] = model.CollectionCase{
			ID:        uuid.New(),
			Status:    model.StatusOpen,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return cases
}

func makeAgents(n int) []model.Agent {
	agents := make([]model.Agent, n)
	for i := range agents {
		agents[i] = model.Agent{ID: uuid.New(), Name: fmt.Sprintf("Agent %d", i)}
	}
	return agents
}

func TestDistributeRoundRobin(t *testing.T) {
	// 5 cases created T1<T2<T3<T4<T5 against agents [A, B, C] must map
	// T1→A, T2→B, T3→C, T4→A, T5→B with counts {A:2, B:2, C:1}.
	cases := makeCases(5)
	agents := makeAgents(3)

	pairs := assignment.Distribute(cases, agents)
	require.Len(t, pairs, 5)

	expected := []int{0, 1, 2, 0, 1}
	for i, p := range pairs {
		assert.Equal(t, cases[i].ID, p.CaseID)
		assert.Equal(t, agents[expected[i]].ID, p.AgentID, "case %d", i)
	}

	counts := map[uuid.UUID]int{}
	for _, p := range pairs {
		counts[p.AgentID]++
	}
	assert.Equal(t, 2, counts[agents[0].ID])
	assert.Equal(t, 2, counts[agents[1].ID])
	assert.Equal(t, 1, counts[agents[2].ID])
}

func TestDistributeFairness(t *testing.T) {
	// Every agent receives either ⌊N/M⌋ or ⌈N/M⌉ cases and the total is N.
	for _, tt := range []struct{ n, m int }{
		{0, 3}, {1, 1}, {3, 5}, {7, 3}, {100, 7}, {12, 12},
	} {
		t.Run(fmt.Sprintf("%d_cases_%d_agents", tt.n, tt.m), func(t *testing.T) {
			cases := makeCases(tt.n)
			agents := makeAgents(tt.m)

			pairs := assignment.Distribute(cases, agents)
			assert.Len(t, pairs, tt.n)

			counts := map[uuid.UUID]int{}
			for _, p := range pairs {
				counts[p.AgentID]++
			}
			lo, hi := tt.n/tt.m, (tt.n+tt.m-1)/tt.m
			for _, a := range agents {
				c := counts[a.ID]
				assert.GreaterOrEqual(t, c, lo)
				assert.LessOrEqual(t, c, hi)
			}
		})
	}
}

func TestDistributeDeterministic(t *testing.T) {
	cases := makeCases(17)
	agents := makeAgents(4)

	first := assignment.Distribute(cases, agents)
	second := assignment.Distribute(cases, agents)
	assert.Equal(t, first, second)
}

func TestDistributeNoAgents(t *testing.T) {
	assert.Nil(t, assignment.Distribute(makeCases(3), nil))
	assert.Nil(t, assignment.Distribute(nil, makeAgents(3)))
}
