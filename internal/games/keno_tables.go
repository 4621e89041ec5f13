package games

// KenoPayouts maps risk -> picks count -> hits -> multiplier. A zero
// multiplier is a loss.
var KenoPayouts = map[string]map[int]map[int]float64{
	"classic": {
		1:  {0: 0, 1: 3.96},
		2:  {0: 0, 1: 0, 2: 9.00},
		3:  {0: 0, 1: 0, 2: 0, 3: 40.00},
		4:  {0: 0, 1: 0, 2: 0, 3: 2.00, 4: 10.00},
		5:  {0: 0, 1: 0, 2: 0, 3: 1.50, 4: 4.00, 5: 30.00},
		6:  {0: 0, 1: 0, 2: 0, 3: 1.20, 4: 2.50, 5: 10.00, 6: 75.00},
		7:  {0: 0, 1: 0, 2: 0, 3: 1.00, 4: 2.00, 5: 5.00, 6: 20.00, 7: 100.00},
		8:  {0: 0, 1: 0, 2: 0, 3: 0, 4: 1.50, 5: 4.00, 6: 10.00, 7: 50.00, 8: 200.00},
		9:  {0: 0, 1: 0, 2: 0, 3: 1.55, 4: 3.00, 5: 8.00, 6: 15.00, 7: 44.00, 8: 60.00, 9: 85.00},
		10: {0: 0, 1: 0, 2: 0, 3: 1.00, 4: 2.00, 5: 5.00, 6: 12.00, 7: 36.00, 8: 50.00, 9: 75.00, 10: 100.00},
	},
	"low": {
		1:  {0: 0, 1: 3.96},
		2:  {0: 0, 1: 1.00, 2: 4.00},
		3:  {0: 0, 1: 1.00, 2: 1.50, 3: 10.00},
		4:  {0: 0, 1: 0, 2: 1.30, 3: 2.00, 4: 20.00},
		5:  {0: 0, 1: 0, 2: 1.20, 3: 1.70, 4: 5.00, 5: 50.00},
		6:  {0: 0, 1: 0, 2: 1.10, 3: 1.50, 4: 3.00, 5: 12.00, 6: 100.00},
		7:  {0: 0, 1: 0, 2: 1.05, 3: 1.40, 4: 2.00, 5: 5.00, 6: 25.00, 7: 200.00},
		8:  {0: 0, 1: 0, 2: 1.00, 3: 1.30, 4: 1.80, 5: 3.00, 6: 10.00, 7: 60.00, 8: 400.00},
		9:  {0: 0, 1: 0, 2: 1.10, 3: 1.30, 4: 1.70, 5: 2.50, 6: 7.50, 7: 50.00, 8: 250.00, 9: 1000.00},
		10: {0: 0, 1: 0, 2: 1.00, 3: 1.20, 4: 1.50, 5: 2.00, 6: 5.00, 7: 20.00, 8: 80.00, 9: 400.00, 10: 2000.00},
	},
	"medium": {
		1:  {0: 0, 1: 3.96},
		2:  {0: 0, 1: 1.50, 2: 9.00},
		3:  {0: 0, 1: 0, 2: 2.00, 3: 25.00},
		4:  {0: 0, 1: 0, 2: 1.50, 3: 5.00, 4: 50.00},
		5:  {0: 0, 1: 0, 2: 1.00, 3: 3.00, 4: 12.00, 5: 100.00},
		6:  {0: 0, 1: 0, 2: 0, 3: 2.00, 4: 6.00, 5: 25.00, 6: 200.00},
		7:  {0: 0, 1: 0, 2: 0, 3: 1.50, 4: 4.00, 5: 12.00, 6: 50.00, 7: 400.00},
		8:  {0: 0, 1: 0, 2: 0, 3: 1.00, 4: 3.00, 5: 8.00, 6: 30.00, 7: 150.00, 8: 1000.00},
		9:  {0: 0, 1: 0, 2: 0, 3: 2.00, 4: 2.50, 5: 5.00, 6: 15.00, 7: 100.00, 8: 500.00, 9: 1000.00},
		10: {0: 0, 1: 0, 2: 0, 3: 1.50, 4: 2.00, 5: 4.00, 6: 10.00, 7: 50.00, 8: 250.00, 9: 1000.00, 10: 5000.00},
	},
	"high": {
		1:  {0: 0, 1: 3.96},
		2:  {0: 0, 1: 0, 2: 17.00},
		3:  {0: 0, 1: 0, 2: 0, 3: 81.00},
		4:  {0: 0, 1: 0, 2: 0, 3: 5.00, 4: 150.00},
		5:  {0: 0, 1: 0, 2: 0, 3: 3.00, 4: 20.00, 5: 300.00},
		6:  {0: 0, 1: 0, 2: 0, 3: 2.00, 4: 10.00, 5: 50.00, 6: 500.00},
		7:  {0: 0, 1: 0, 2: 0, 3: 1.50, 4: 5.00, 5: 25.00, 6: 150.00, 7: 1000.00},
		8:  {0: 0, 1: 0, 2: 0, 3: 1.00, 4: 3.00, 5: 12.00, 6: 60.00, 7: 400.00, 8: 2000.00},
		9:  {0: 0, 1: 0, 2: 0, 3: 0, 4: 4.00, 5: 11.00, 6: 56.00, 7: 500.00, 8: 800.00, 9: 1000.00},
		10: {0: 0, 1: 0, 2: 0, 3: 0, 4: 2.00, 5: 8.00, 6: 40.00, 7: 200.00, 8: 500.00, 9: 1000.00, 10: 5000.00},
	},
}

// kenoMultiplier looks up the payout for a risk level, number of picks and hits.
func kenoMultiplier(risk string, picks, hits int) float64 {
	return KenoPayouts[risk][picks][hits]
}

// IsValidKenoRisk checks if a risk level has a payout table.
func IsValidKenoRisk(risk string) bool {
	_, ok := KenoPayouts[risk]
	return ok
}
