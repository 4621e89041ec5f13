package scan

import (
	"strconv"

	"github.com/MJE43/fair-go/internal/games"
)

// PickNumbers returns count distinct keno squares (1..40) for nonce. The
// picks depend only on the nonce, so a client running PickerScript chooses
// the same squares the scanner assumed.
func PickNumbers(nonce uint64, count int) []int {
	if count > games.KenoSquares {
		count = games.KenoSquares
	}
	rng := newMulberry32(uint32(nonce))

	pool := make([]int, games.KenoSquares)
	for i := range pool {
		pool[i] = i + 1
	}

	picks := make([]int, count)
	for i := range picks {
		idx := int(rng.Float64() * float64(len(pool)))
		if idx >= len(pool) {
			idx = len(pool) - 1
		}
		picks[i] = pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return picks
}

// mulberry32 is a 32-bit PRNG with a bit-exact JavaScript twin.
// https://gist.github.com/tommyettinger/46a874533244883189143505d203312c
type mulberry32 struct {
	state uint32
}

func newMulberry32(seed uint32) *mulberry32 {
	return &mulberry32{state: seed}
}

func (m *mulberry32) Next() uint32 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

func (m *mulberry32) Float64() float64 {
	return float64(m.Next()) / 4294967296.0
}

// PickerScript returns JavaScript defining pickNumbers(nonce), which mirrors
// PickNumbers for the given pick count.
func PickerScript(pickCount int) string {
	return `function mulberry32(seed) {
    return function() {
        seed = (seed + 0x6D2B79F5) >>> 0;
        let t = seed;
        t = Math.imul(t ^ (t >>> 15), t | 1);
        t ^= t + Math.imul(t ^ (t >>> 7), t | 61);
        return ((t ^ (t >>> 14)) >>> 0) / 4294967296;
    };
}

const PICK_COUNT = ` + strconv.Itoa(pickCount) + `;

function pickNumbers(nonce) {
    const rng = mulberry32(nonce >>> 0);
    const pool = Array.from({length: 40}, (_, i) => i + 1);
    const picks = [];
    for (let i = 0; i < PICK_COUNT; i++) {
        const idx = Math.floor(rng() * pool.length);
        picks.push(pool.splice(idx, 1)[0]);
    }
    return picks;
}
`
}
