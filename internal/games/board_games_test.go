package games

import (
	"reflect"
	"testing"
)

func TestKenoGame(t *testing.T) {
	tests := []struct {
		nonce uint64
		draws []int
	}{
		{1, []int{30, 26, 10, 37, 22, 35, 25, 24, 39, 4}},
		{2, []int{22, 26, 8, 4, 3, 19, 9, 2, 34, 10}},
	}
	for _, tt := range tests {
		res := simulate(t, "keno", tt.nonce, nil)
		out := res.Details.(KenoOutcome)
		if !reflect.DeepEqual(out.Draws, tt.draws) {
			t.Errorf("Nonce %d: expected %v, got %v", tt.nonce, tt.draws, out.Draws)
		}
		if res.Multiplier != nil {
			t.Errorf("Nonce %d: a draw without picks should carry no multiplier", tt.nonce)
		}
	}
}

func TestKenoPicks(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		hits       []int
		multiplier float64
	}{
		{"all five hit", Config{"picks": []any{30.0, 26.0, 10.0, 37.0, 22.0}}, []int{30, 26, 10, 37, 22}, 30},
		{"two of five", Config{"picks": []any{30, 26, 1, 2, 3}}, []int{30, 26}, 0},
		{"single pick high risk", Config{"picks": []any{4}, "risk": "high"}, []int{4}, 3.96},
		{"ten picks low risk", Config{"picks": []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, "risk": "low"}, []int{4, 10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := simulate(t, "keno", 1, tt.cfg)
			out := res.Details.(KenoOutcome)
			if !reflect.DeepEqual(out.Hits, tt.hits) {
				t.Errorf("Expected hits %v, got %v", tt.hits, out.Hits)
			}
			if res.Multiplier == nil || *res.Multiplier != tt.multiplier {
				t.Errorf("Expected multiplier %v, got %v", tt.multiplier, res.Multiplier)
			}
			if res.Metric != float64(len(tt.hits)) {
				t.Errorf("Expected metric %d, got %v", len(tt.hits), res.Metric)
			}
		})
	}
}

func TestKenoTablesComplete(t *testing.T) {
	for risk, byPicks := range KenoPayouts {
		for picks := 1; picks <= KenoMaxPicks; picks++ {
			table, ok := byPicks[picks]
			if !ok {
				t.Errorf("%s: missing table for %d picks", risk, picks)
				continue
			}
			if len(table) != picks+1 {
				t.Errorf("%s/%d: expected %d hit entries, got %d", risk, picks, picks+1, len(table))
			}
		}
	}
}

func TestMinesGame(t *testing.T) {
	tests := []struct {
		nonce uint64
		mines int
		want  []int
	}{
		{1, 1, []int{18}},
		{1, 3, []int{18, 15, 5}},
		{2, 5, []int{13, 15, 4, 1, 2}},
	}
	for _, tt := range tests {
		res := simulate(t, "mines", tt.nonce, Config{"mines": tt.mines})
		out := res.Details.(MinesOutcome)
		if !reflect.DeepEqual(out.Mines, tt.want) {
			t.Errorf("Nonce %d, %d mines: expected %v, got %v", tt.nonce, tt.mines, tt.want, out.Mines)
		}
		if res.Derivation.Floats != tt.mines {
			t.Errorf("Expected %d floats consumed, got %d", tt.mines, res.Derivation.Floats)
		}
	}
}

func TestMinesDefaultAndGrid(t *testing.T) {
	res := simulate(t, "mines", 1, nil)
	out := res.Details.(MinesOutcome)
	if len(out.Mines) != minesDefaultCount {
		t.Fatalf("Expected %d mines by default, got %d", minesDefaultCount, len(out.Mines))
	}
	if out.FirstMine != 5 || res.Metric != 5 {
		t.Errorf("Expected first mine 5, got %d", out.FirstMine)
	}
	count := 0
	for _, row := range out.Grid {
		for _, cell := range row {
			if cell == "mine" {
				count++
			}
		}
	}
	if count != 3 || out.Grid[3][3] != "mine" || out.Grid[1][0] != "mine" {
		t.Errorf("Grid does not match mines %v: %v", out.Mines, out.Grid)
	}
}

func TestMinesFullBoard(t *testing.T) {
	res := simulate(t, "mines", 1, Config{"mines": 24})
	out := res.Details.(MinesOutcome)
	seen := map[int]bool{}
	for _, m := range out.Mines {
		if m < 0 || m >= minesTotalTiles || seen[m] {
			t.Errorf("Invalid or repeated mine %d", m)
		}
		seen[m] = true
	}
	if len(seen) != 24 {
		t.Errorf("Expected 24 distinct mines, got %d", len(seen))
	}
}

func TestPlinkoGame(t *testing.T) {
	tests := []struct {
		nonce      uint64
		cfg        Config
		bucket     int
		multiplier float64
	}{
		{1, nil, 7, 2.1},
		{2, nil, 2, 1.1},
		{1, Config{"rows": 16, "risk": "high"}, 12, 4},
		{1, Config{"rows": 8, "risk": "medium"}, 7, 3},
	}
	for _, tt := range tests {
		res := simulate(t, "plinko", tt.nonce, tt.cfg)
		out := res.Details.(PlinkoOutcome)
		if out.Bucket != tt.bucket || out.Multiplier != tt.multiplier {
			t.Errorf("Nonce %d %v: expected bucket %d x%v, got %d x%v",
				tt.nonce, tt.cfg, tt.bucket, tt.multiplier, out.Bucket, out.Multiplier)
		}
		if len(out.Path) != out.Rows || res.Derivation.Floats != out.Rows {
			t.Errorf("Expected one float per row, got path %d floats %d", len(out.Path), res.Derivation.Floats)
		}
	}
}

func TestPlinkoPath(t *testing.T) {
	res := simulate(t, "plinko", 1, nil)
	want := []string{"right", "right", "left", "right", "right", "right", "right", "right"}
	if got := res.Details.(PlinkoOutcome).Path; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPlinkoTablesSymmetric(t *testing.T) {
	for risk, byRows := range plinkoPayoutTables {
		for rows, table := range byRows {
			for i := range table {
				if table[i] != table[len(table)-1-i] {
					t.Errorf("%s/%d: bucket %d is not mirrored", risk, rows, i)
					break
				}
			}
		}
	}
}

func TestWheelGame(t *testing.T) {
	tests := []struct {
		nonce      uint64
		cfg        Config
		index      int
		multiplier float64
	}{
		{1, nil, 7, 1.2},
		{2, nil, 5, 1.2},
		{2, Config{"segments": 20}, 10, 1.5},
		{2, Config{"segments": 40, "risk": "medium"}, 21, 0},
		{2, Config{"segments": 40.0, "risk": "MEDIUM"}, 21, 0},
	}
	for _, tt := range tests {
		res := simulate(t, "wheel", tt.nonce, tt.cfg)
		out := res.Details.(WheelOutcome)
		if out.Index != tt.index || out.Multiplier != tt.multiplier {
			t.Errorf("Nonce %d %v: expected segment %d x%v, got %d x%v",
				tt.nonce, tt.cfg, tt.index, tt.multiplier, out.Index, out.Multiplier)
		}
	}
}

func TestWheelTablesMatchSegments(t *testing.T) {
	for segments, byRisk := range wheelPayouts {
		for risk, table := range byRisk {
			if len(table) != segments {
				t.Errorf("%d/%s: expected %d entries, got %d", segments, risk, segments, len(table))
			}
		}
	}
}
