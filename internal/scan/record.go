package scan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/store"
)

// RunStore persists finished scans.
type RunStore interface {
	SaveRun(ctx context.Context, run *store.Run, hits []store.Hit) error
}

// Record saves res under a new run id and returns it. The server seed is
// stored only as its commitment.
func Record(ctx context.Context, rs RunStore, res *Result) (*store.Run, error) {
	req := res.Echo
	commitment, err := engine.HashServerSeed(req.Seeds.Server)
	if err != nil {
		return nil, err
	}
	cfg, err := json.Marshal(req.Config)
	if err != nil {
		return nil, fmt.Errorf("encode scan config: %w", err)
	}

	run := &store.Run{
		Game:           req.Game,
		ServerSeedHash: commitment,
		ClientSeed:     req.Seeds.Client,
		NonceStart:     req.NonceStart,
		NonceEnd:       req.NonceEnd,
		ConfigJSON:     string(cfg),
		TargetOp:       string(req.TargetOp),
		TargetVal:      req.TargetVal,
		TargetVal2:     req.TargetVal2,
		Filter:         req.Filter,
		HitLimit:       req.Limit,
		TimedOut:       res.Summary.TimedOut,
		HitCount:       res.Summary.HitsFound,
		TotalEvaluated: res.Summary.TotalEvaluated,
		SummaryCount:   res.Summary.HitsFound,
		EngineVersion:  res.EngineVersion,
	}
	if req.TargetOp != "" {
		run.Tolerance = req.tolerance()
	}
	if len(res.Hits) > 0 {
		s := res.Summary
		run.SummaryMin, run.SummaryMax, run.SummarySum = &s.MinMetric, &s.MaxMetric, &s.SumMetric
	}

	hits := make([]store.Hit, len(res.Hits))
	for i, h := range res.Hits {
		details, err := json.Marshal(h.Outcome.Details)
		if err != nil {
			return nil, fmt.Errorf("encode hit %d: %w", h.Nonce, err)
		}
		hits[i] = store.Hit{Nonce: h.Nonce, Metric: h.Metric, Details: string(details)}
	}

	if err := rs.SaveRun(ctx, run, hits); err != nil {
		return nil, err
	}
	return run, nil
}
