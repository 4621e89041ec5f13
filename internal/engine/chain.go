package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// StakeCrashSalt is the salt Stake committed to for crash, taken from
	// Bitcoin block 584,500.
	StakeCrashSalt = "0000000000000000001b34dc6a1e86083f95500b096231436e9b25cbdd0075c4"
	// StakeCrashTip is the published terminating hash of Stake's crash chain.
	StakeCrashTip = "78a9757d3be42b74a3f70239078ad9317125fe9ee630d5bdada46de963e56752"
	// StakeCrashChainLength bounds how far verification walks the chain.
	StakeCrashChainLength = 10_000_000
)

// ChainConfig describes an operator's hash chain commitment.
type ChainConfig struct {
	Tip       string `json:"tip" mapstructure:"tip"`
	Salt      string `json:"salt" mapstructure:"salt"`
	MaxLength int    `json:"max_length" mapstructure:"max_length"`
	// HexLinks hashes each link's lowercase hex text instead of its raw bytes.
	HexLinks bool `json:"hex_links" mapstructure:"hex_links"`
}

// StakeCrashChain returns the published Stake crash commitment.
func StakeCrashChain() ChainConfig {
	return ChainConfig{
		Tip:       StakeCrashTip,
		Salt:      StakeCrashSalt,
		MaxLength: StakeCrashChainLength,
	}
}

// ChainVerification is the outcome of walking a game hash towards a tip.
type ChainVerification struct {
	Valid    bool   `json:"valid"`
	GameHash string `json:"game_hash"`
	Tip      string `json:"tip"`
	// Distance is how many links separate the game hash from the tip, or -1.
	Distance int `json:"distance"`
	Checked  int `json:"checked"`
}

// ParseGameHash decodes a 64 character hex game hash.
func ParseGameHash(s string) ([sha256.Size]byte, error) {
	var out [sha256.Size]byte
	s = strings.TrimSpace(s)
	if len(s) != hex.EncodedLen(sha256.Size) {
		return out, fmt.Errorf("%w: expected %d hex characters, got %d",
			ErrInvalidGameHash, hex.EncodedLen(sha256.Size), len(s))
	}
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidGameHash, err)
	}
	return out, nil
}

// NextLink returns the hash that follows h in a chain.
func NextLink(h [sha256.Size]byte, hexLinks bool) [sha256.Size]byte {
	if hexLinks {
		var buf [2 * sha256.Size]byte
		hex.Encode(buf[:], h[:])
		return sha256.Sum256(buf[:])
	}
	return sha256.Sum256(h[:])
}

// chainCheckInterval is how many links are hashed between context checks.
const chainCheckInterval = 4096

// VerifyGameHash walks forward from gameHash for at most cfg.MaxLength links
// and reports whether the chain reaches cfg.Tip. The walk stops with ctx's
// error once ctx is done.
func VerifyGameHash(ctx context.Context, gameHash string, cfg ChainConfig) (ChainVerification, error) {
	cur, err := ParseGameHash(gameHash)
	if err != nil {
		return ChainVerification{}, err
	}
	tip, err := ParseGameHash(cfg.Tip)
	if err != nil {
		return ChainVerification{}, fmt.Errorf("chain tip: %w", err)
	}

	res := ChainVerification{
		GameHash: hex.EncodeToString(cur[:]),
		Tip:      hex.EncodeToString(tip[:]),
		Distance: -1,
	}
	for i := 0; i < cfg.MaxLength; i++ {
		if i%chainCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("verify game hash after %d links: %w", i, err)
			}
		}
		res.Checked = i + 1
		if cur == tip {
			res.Valid = true
			res.Distance = i
			return res, nil
		}
		cur = NextLink(cur, cfg.HexLinks)
	}
	return res, nil
}

// GenerateChain builds length links starting at seed, in generation order.
// The last element is the tip an operator would publish; games are played
// from the end of the slice backwards.
func GenerateChain(seed [sha256.Size]byte, length int, hexLinks bool) []string {
	if length <= 0 {
		return nil
	}
	out := make([]string, 0, length)
	cur := seed
	for i := 0; i < length; i++ {
		out = append(out, hex.EncodeToString(cur[:]))
		cur = NextLink(cur, hexLinks)
	}
	return out
}
