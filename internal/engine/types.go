package engine

import "errors"

var (
	// ErrInvalidSeedMaterial reports an empty or malformed seed, salt or nonce.
	ErrInvalidSeedMaterial = errors.New("invalid seed material")
	// ErrInvalidGameHash reports a game hash that is not 32 hex-encoded bytes.
	ErrInvalidGameHash = errors.New("invalid game hash")
)

// Mode selects how a game's randomness is derived.
type Mode string

const (
	// ModeSingle derives from (server seed, client seed, nonce).
	ModeSingle Mode = "single"
	// ModeMultiplayer derives from a shared game hash.
	ModeMultiplayer Mode = "multiplayer"
)

type Seeds struct {
	Server string `json:"server_seed"` // ASCII; do NOT hex-decode
	Client string `json:"client_seed"`
}

// Derivation is everything a third party needs to replay a result.
type Derivation struct {
	Mode       Mode   `json:"mode"`
	ServerSeed string `json:"server_seed,omitempty"`
	Commitment string `json:"server_seed_hash,omitempty"`
	ClientSeed string `json:"client_seed,omitempty"`
	Nonce      uint64 `json:"nonce"`
	GameHash   string `json:"game_hash,omitempty"`
	Salt       string `json:"salt,omitempty"`
	Cursor     uint64 `json:"cursor"`
	Floats     int    `json:"floats"`
}

// Redacted returns a copy without the server seed, for results produced
// before the seed has been revealed.
func (d Derivation) Redacted() Derivation {
	d.ServerSeed = ""
	return d
}
