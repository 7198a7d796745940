package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fieldpay/dunning/internal/model"
)

// LookupBundle holds every cross-referenced relation a reporting window
// needs, bulk-fetched up front and keyed by natural foreign id. Row mapping
// only ever does O(1) lookups here and never goes back to the database.
type LookupBundle struct {
	LatestAttempts map[uuid.UUID]model.CallAttempt
	Users          map[uuid.UUID]model.User
	Outcomes       map[int64]string
	Remarks        map[uuid.UUID][]string
	Reasons        map[uuid.UUID][]string
	PostponeCounts map[string]int
	Promises       map[string]model.PromiseRecord
}

// preload populates the bundle with one bulk query per relation, so total
// query count is a small constant independent of row count. The first phase
// fetches everything keyed by the case set; the second resolves the user and
// outcome ids the first phase surfaced. Queries within a phase run
// concurrently since they are independent reads against the pool.
func (s *Service) preload(ctx context.Context, cases []model.CollectionCase) (*LookupBundle, error) {
	bundle := &LookupBundle{}

	caseIDs := make([]uuid.UUID, len(cases))
	contractSet := make(map[string]struct{})
	paymentSet := make(map[string]struct{})
	for i, c := range cases {
		caseIDs[i] = c.ID
		contractSet[c.ContractID] = struct{}{}
		paymentSet[c.PaymentID] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bundle.LatestAttempts, err = s.db.LatestAttemptsByCase(gctx, caseIDs)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.Remarks, err = s.db.RemarksByCase(gctx, caseIDs)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.Reasons, err = s.db.ReasonNamesByCase(gctx, caseIDs)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.PostponeCounts, err = s.db.PostponeCountsByContract(gctx, keys(contractSet))
		return err
	})
	g.Go(func() error {
		var err error
		bundle.Promises, err = s.db.LatestActivePromiseByPayment(gctx, keys(paymentSet))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("report: preload case relations: %w", err)
	}

	userSet := make(map[uuid.UUID]struct{})
	outcomeSet := make(map[int64]struct{})
	for _, c := range cases {
		for _, id := range []*uuid.UUID{c.AssignedTo, c.AssignedBy} {
			if id != nil && *id != model.SystemActorID {
				userSet[*id] = struct{}{}
			}
		}
	}
	for _, a := range bundle.LatestAttempts {
		if a.CreatedBy != model.SystemActorID {
			userSet[a.CreatedBy] = struct{}{}
		}
		if a.OutcomeID != nil {
			outcomeSet[*a.OutcomeID] = struct{}{}
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bundle.Users, err = s.db.UsersByIDs(gctx, keys(userSet))
		return err
	})
	g.Go(func() error {
		var err error
		bundle.Outcomes, err = s.db.OutcomeNames(gctx, keys(outcomeSet))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("report: preload referenced ids: %w", err)
	}

	return bundle, nil
}

func keys[K comparable](set map[K]struct{}) []K {
	out := make([]K, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
