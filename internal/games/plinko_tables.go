package games

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
)

//go:embed plinko_tables.json
var plinkoTablesJSON []byte

// plinkoPayoutTables maps risk -> rows -> bucket multipliers.
var plinkoPayoutTables = loadPlinkoTables()

func loadPlinkoTables() map[string]map[int][]float64 {
	raw := map[string]map[string][]float64{}
	if err := json.Unmarshal(plinkoTablesJSON, &raw); err != nil {
		panic(fmt.Sprintf("failed to parse plinko payout tables: %v", err))
	}

	result := make(map[string]map[int][]float64, len(raw))
	for risk, rows := range raw {
		result[risk] = make(map[int][]float64, len(rows))
		for key, multipliers := range rows {
			rowCount, err := strconv.Atoi(key)
			if err != nil {
				panic(fmt.Sprintf("invalid row key %q for risk %q: %v", key, risk, err))
			}
			if rowCount < plinkoMinRows || rowCount > plinkoMaxRows {
				panic(fmt.Sprintf("plinko risk %q has out of range row count %d", risk, rowCount))
			}
			// One bucket more than there are rows of pins.
			if len(multipliers) != rowCount+1 {
				panic(fmt.Sprintf("plinko table mismatch for risk %q rows %d: expected %d entries, got %d",
					risk, rowCount, rowCount+1, len(multipliers)))
			}
			result[risk][rowCount] = multipliers
		}
	}

	for _, risk := range plinkoRisks {
		for rows := plinkoMinRows; rows <= plinkoMaxRows; rows++ {
			if _, ok := result[risk][rows]; !ok {
				panic(fmt.Sprintf("plinko table missing for risk %q rows %d", risk, rows))
			}
		}
	}
	return result
}
