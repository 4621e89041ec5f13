package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const (
	roundSize      = sha256.Size
	bytesPerFloat  = 4
	floatsPerRound = roundSize / bytesPerFloat
	floatDivisor   = 1 << 32
)

// Stream identifies one deterministic sequence of floats in [0,1).
//
// A Stream is a plain value: it holds only its derivation inputs, so copies
// are interchangeable and the same inputs always yield the same sequence.
// Float i lives in HMAC round i/8 at byte offset (i%8)*4, which lets any
// single draw be re-derived without replaying the ones before it.
type Stream struct {
	mode       Mode
	key        string
	clientSeed string
	nonce      uint64
	salt       string
}

// NewStream returns the single-player stream for a seed pair and nonce.
// The server seed is used as the HMAC key exactly as given (never hex-decoded).
func NewStream(serverSeed, clientSeed string, nonce uint64) (Stream, error) {
	if serverSeed == "" {
		return Stream{}, fmt.Errorf("%w: server seed is required", ErrInvalidSeedMaterial)
	}
	return Stream{
		mode:       ModeSingle,
		key:        serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
	}, nil
}

// NewSharedStream returns the stream every participant of a multiplayer round
// derives from the round's game hash. The HMAC key is the lowercase hex form of
// the hash and the first round's message is the operator's published salt.
func NewSharedStream(gameHash, salt string) (Stream, error) {
	h, err := ParseGameHash(gameHash)
	if err != nil {
		return Stream{}, err
	}
	if salt == "" {
		return Stream{}, fmt.Errorf("%w: salt is required", ErrInvalidSeedMaterial)
	}
	return Stream{
		mode: ModeMultiplayer,
		key:  hex.EncodeToString(h[:]),
		salt: salt,
	}, nil
}

// Mode reports which derivation scheme the stream uses.
func (s Stream) Mode() Mode {
	return s.mode
}

func (s Stream) message(round uint64) string {
	if s.mode == ModeMultiplayer {
		if round == 0 {
			return s.salt
		}
		return s.salt + ":" + strconv.FormatUint(round, 10)
	}
	var b strings.Builder
	b.Grow(len(s.clientSeed) + 24)
	b.WriteString(s.clientSeed)
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(s.nonce, 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(round, 10))
	return b.String()
}

// Round returns the 32 HMAC-SHA256 bytes backing floats [8*round, 8*round+8).
func (s Stream) Round(round uint64) [roundSize]byte {
	var out [roundSize]byte
	h := hmac.New(sha256.New, []byte(s.key))
	h.Write([]byte(s.message(round)))
	copy(out[:], h.Sum(nil))
	return out
}

// At derives float i of the stream directly.
func (s Stream) At(i uint64) float64 {
	block := s.Round(i / floatsPerRound)
	off := (i % floatsPerRound) * bytesPerFloat
	return bytesToFloat(block[off : off+bytesPerFloat])
}

// Cursor returns a cursor positioned at the first float of the stream.
func (s Stream) Cursor() *Cursor {
	return &Cursor{stream: s}
}

// Floats draws the first count floats of the stream.
func (s Stream) Floats(count int) []float64 {
	return s.FloatsInto(nil, count)
}

// FloatsInto fills dst with the first count floats, reusing its capacity.
func (s Stream) FloatsInto(dst []float64, count int) []float64 {
	if cap(dst) < count {
		dst = make([]float64, count)
	}
	dst = dst[:count]
	c := s.Cursor()
	for i := range dst {
		dst[i] = c.Next()
	}
	return dst
}

// Derivation describes the stream together with how much of it was consumed.
func (s Stream) Derivation(consumed int) Derivation {
	d := Derivation{
		Mode:   s.mode,
		Cursor: 0,
		Floats: consumed,
	}
	switch s.mode {
	case ModeMultiplayer:
		d.GameHash = s.key
		d.Salt = s.salt
	default:
		d.ServerSeed = s.key
		d.ClientSeed = s.clientSeed
		d.Nonce = s.nonce
		d.Commitment = commit(s.key)
	}
	return d
}

// Cursor walks a Stream one float at a time. Position counts the floats
// drawn so far; the HMAC round backing the current position is cached.
type Cursor struct {
	stream Stream
	pos    uint64 // bytes consumed
	round  uint64
	block  [roundSize]byte
	loaded bool
}

// Position returns the number of floats drawn from the cursor.
func (c *Cursor) Position() uint64 {
	return c.pos / bytesPerFloat
}

// NextByte returns the next raw byte of the stream.
func (c *Cursor) NextByte() byte {
	round := c.pos / roundSize
	if !c.loaded || round != c.round {
		c.round = round
		c.block = c.stream.Round(round)
		c.loaded = true
	}
	b := c.block[c.pos%roundSize]
	c.pos++
	return b
}

// Next returns the next float in [0,1) using exactly four bytes.
func (c *Cursor) Next() float64 {
	var b [bytesPerFloat]byte
	for i := range b {
		b[i] = c.NextByte()
	}
	return bytesToFloat(b[:])
}

// Skip advances the cursor by n floats without deriving them.
func (c *Cursor) Skip(n uint64) {
	c.pos += n * bytesPerFloat
}

// bytesToFloat maps four big-endian bytes onto [0,1) as uint32 / 2^32.
// Both operands are exact in float64, so the result matches the
// sum-of-b/256^k formulation bit for bit.
func bytesToFloat(b []byte) float64 {
	return float64(binary.BigEndian.Uint32(b)) / floatDivisor
}

// Floats generates count floats for a seed pair and nonce, starting at float
// index cursor.
func Floats(serverSeed, clientSeed string, nonce uint64, cursor uint64, count int) []float64 {
	return FloatsInto(nil, serverSeed, clientSeed, nonce, cursor, count)
}

// FloatsInto fills the provided slice with floats, avoiding allocation.
func FloatsInto(dst []float64, serverSeed, clientSeed string, nonce uint64, cursor uint64, count int) []float64 {
	if cap(dst) < count {
		dst = make([]float64, count)
	}
	dst = dst[:count]
	s := Stream{mode: ModeSingle, key: serverSeed, clientSeed: clientSeed, nonce: nonce}
	c := s.Cursor()
	c.Skip(cursor)
	for i := range dst {
		dst[i] = c.Next()
	}
	return dst
}
