package scan

import (
	"context"
	"sort"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
)

// StreakRequest searches for runs of consecutive winning keno bets where the
// player picks PickNumbers(nonce, PickCount) on every nonce.
type StreakRequest struct {
	Seeds      engine.Seeds `json:"seeds"`
	NonceStart uint64       `json:"nonce_start"`
	NonceEnd   uint64       `json:"nonce_end"`
	Risk       string       `json:"risk"`
	PickCount  int          `json:"pick_count"`
	Threshold  float64      `json:"threshold"`
	TopN       int          `json:"top_n"`
}

type StreakBet struct {
	Nonce      uint64  `json:"nonce"`
	Picks      []int   `json:"picks"`
	Draws      []int   `json:"draws"`
	Hits       int     `json:"hits"`
	Multiplier float64 `json:"multiplier"`
}

// Streak is a run of consecutive bets that all paid out.
type Streak struct {
	StartNonce           uint64      `json:"start_nonce"`
	EndNonce             uint64      `json:"end_nonce"`
	CumulativeMultiplier float64     `json:"cumulative_multiplier"`
	Length               int         `json:"length"`
	Bets                 []StreakBet `json:"bets"`
}

type StreakResult struct {
	Streaks        []Streak `json:"streaks"`
	TotalFound     int      `json:"total_found"`
	Highest        float64  `json:"highest_multiplier"`
	TotalEvaluated uint64   `json:"total_evaluated"`
	TimedOut       bool     `json:"timed_out,omitempty"`
	PickerScript   string   `json:"picker_script"`
}

// Streaks walks the range in order. A streak is kept when the product of
// its multipliers reaches Threshold. Results are sorted by that product,
// highest first.
func (s *Scanner) Streaks(ctx context.Context, req StreakRequest) (*StreakResult, error) {
	if req.Seeds.Server == "" {
		return nil, engine.ErrInvalidSeedMaterial
	}
	if req.NonceEnd < req.NonceStart {
		return nil, invalid("nonce_end %d before nonce_start %d", req.NonceEnd, req.NonceStart)
	}
	if span := req.NonceEnd - req.NonceStart; span >= s.maxRange {
		return nil, invalid("range of %d nonces exceeds the maximum of %d", span+1, s.maxRange)
	}
	if req.Risk == "" {
		req.Risk = "medium"
	}
	if !games.IsValidKenoRisk(req.Risk) {
		return nil, invalid("unsupported keno risk %q", req.Risk)
	}
	if req.PickCount == 0 {
		req.PickCount = 9
	}
	if req.PickCount < 1 || req.PickCount > games.KenoMaxPicks {
		return nil, invalid("pick_count must be 1..%d", games.KenoMaxPicks)
	}
	if req.Threshold <= 0 {
		req.Threshold = 100
	}

	res := &StreakResult{PickerScript: PickerScript(req.PickCount)}
	var (
		current []StreakBet
		product = 1.0
	)
	flush := func() {
		if len(current) > 0 && product >= req.Threshold {
			res.Streaks = append(res.Streaks, Streak{
				StartNonce:           current[0].Nonce,
				EndNonce:             current[len(current)-1].Nonce,
				CumulativeMultiplier: product,
				Length:               len(current),
				Bets:                 append([]StreakBet(nil), current...),
			})
		}
		current = current[:0]
		product = 1.0
	}

	for nonce := req.NonceStart; ; nonce++ {
		if res.TotalEvaluated%1024 == 0 && ctx.Err() != nil {
			res.TimedOut = true
			break
		}
		picks := PickNumbers(nonce, req.PickCount)
		out, err := games.Simulate(string(games.Keno), req.Seeds.Client, req.Seeds.Server, nonce,
			games.Config{"risk": req.Risk, "picks": picks})
		if err != nil {
			return nil, err
		}
		res.TotalEvaluated++

		keno := out.Details.(games.KenoOutcome)
		if keno.Multiplier > 0 {
			product *= keno.Multiplier
			current = append(current, StreakBet{
				Nonce:      nonce,
				Picks:      picks,
				Draws:      keno.Draws,
				Hits:       len(keno.Hits),
				Multiplier: keno.Multiplier,
			})
		} else {
			flush()
		}
		if nonce == req.NonceEnd {
			break
		}
	}
	flush()

	sort.SliceStable(res.Streaks, func(i, j int) bool {
		return res.Streaks[i].CumulativeMultiplier > res.Streaks[j].CumulativeMultiplier
	})
	res.TotalFound = len(res.Streaks)
	if req.TopN > 0 && len(res.Streaks) > req.TopN {
		res.Streaks = res.Streaks[:req.TopN]
	}
	if len(res.Streaks) > 0 {
		res.Highest = res.Streaks[0].CumulativeMultiplier
	}
	return res, nil
}
