package engine

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type RNGVector struct {
	Description string    `json:"description"`
	ServerSeed  string    `json:"server_seed"`
	ClientSeed  string    `json:"client_seed"`
	Nonce       uint64    `json:"nonce"`
	Cursor      uint64    `json:"cursor"`
	Count       int       `json:"count"`
	Expected    []float64 `json:"expected"`
}

func loadRNGVectors(t *testing.T) []RNGVector {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "rng_vectors.json"))
	if err != nil {
		t.Fatalf("Failed to read golden vectors: %v", err)
	}
	var vectors []RNGVector
	if err := json.Unmarshal(data, &vectors); err != nil {
		t.Fatalf("Failed to parse golden vectors: %v", err)
	}
	return vectors
}

func TestRNGGoldenVectors(t *testing.T) {
	for _, v := range loadRNGVectors(t) {
		t.Run(v.Description, func(t *testing.T) {
			actual := Floats(v.ServerSeed, v.ClientSeed, v.Nonce, v.Cursor, v.Count)
			if len(actual) != len(v.Expected) {
				t.Fatalf("Expected %d floats, got %d", len(v.Expected), len(actual))
			}
			for i := range actual {
				if actual[i] != v.Expected[i] {
					t.Errorf("Float %d: expected %.17g, got %.17g", i, v.Expected[i], actual[i])
				}
			}
		})
	}
}

func TestStreamAtMatchesCursor(t *testing.T) {
	s, err := NewStream("some server seed", "some client seed", 1)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	c := s.Cursor()
	for i := uint64(0); i < 40; i++ {
		want := c.Next()
		if got := s.At(i); got != want {
			t.Errorf("At(%d) = %.17g, cursor gave %.17g", i, got, want)
		}
	}
	if c.Position() != 40 {
		t.Errorf("Expected cursor position 40, got %d", c.Position())
	}
}

func TestStreamReferenceFloats(t *testing.T) {
	s, _ := NewStream("some server seed", "some client seed", 1)
	want := []float64{
		0.5919261889066547, 0.81884371698834, 0.17176169087179005,
		0.277875404804945, 0.5454130100551993, 0.913538561668247,
		0.732050604885444, 0.34164569014683366, 0.7736547295935452,
		0.5108428790699691,
	}
	got := s.Floats(len(want))
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Float %d: expected %.17g, got %.17g", i, want[i], got[i])
		}
	}
}

func TestCursorBytes(t *testing.T) {
	s, _ := NewStream("some server seed", "some client seed", 1)
	want := []byte{
		151, 136, 121, 135, 209, 159, 189, 233, 43, 248,
		146, 253, 71, 34, 215, 176, 139, 160, 47, 225,
		233, 221, 169, 198, 187, 103, 171, 31, 87, 118,
		23, 138, 198, 14, 60, 130, 130, 198, 153, 83,
	}
	c := s.Cursor()
	for i, b := range want {
		if got := c.NextByte(); got != b {
			t.Errorf("Byte %d: expected %d, got %d", i, b, got)
		}
	}
}

func TestCursorSkip(t *testing.T) {
	s, _ := NewStream("server seed", "client seed", 3)
	c := s.Cursor()
	c.Skip(13)
	if got, want := c.Next(), s.At(13); got != want {
		t.Errorf("Expected %.17g after skip, got %.17g", want, got)
	}
}

func TestFloatsRange(t *testing.T) {
	floats := Floats("test_server_seed", "test_client_seed", 1, 0, 1000)
	for i, f := range floats {
		if f < 0 || f >= 1 {
			t.Errorf("Float %d is out of range [0, 1): %f", i, f)
		}
	}
}

func TestFloatsInto(t *testing.T) {
	dst := make([]float64, 10)
	result := FloatsInto(dst, "test_server_seed", "test_client_seed", 1, 0, 5)
	if len(result) != 5 {
		t.Errorf("FloatsInto() returned %d floats, want 5", len(result))
	}
	if &result[0] != &dst[0] {
		t.Error("FloatsInto() should reuse a large enough buffer")
	}

	small := make([]float64, 2)
	result = FloatsInto(small, "test_server_seed", "test_client_seed", 1, 0, 5)
	if len(result) != 5 {
		t.Errorf("FloatsInto() with small buffer returned %d floats, want 5", len(result))
	}
}

func TestNonceIndependence(t *testing.T) {
	a := Floats("server seed", "client seed", 1, 0, 8)
	b := Floats("server seed", "client seed", 2, 0, 8)
	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	if same == len(a) {
		t.Error("Different nonces should not produce identical sequences")
	}
}

func TestNewStreamRejectsEmptyServerSeed(t *testing.T) {
	if _, err := NewStream("", "client", 1); !errors.Is(err, ErrInvalidSeedMaterial) {
		t.Errorf("Expected ErrInvalidSeedMaterial, got %v", err)
	}
}

func TestStreamDerivation(t *testing.T) {
	s, _ := NewStream("testing", "client", 9)
	d := s.Derivation(4)
	if d.Mode != ModeSingle || d.Nonce != 9 || d.ClientSeed != "client" || d.Floats != 4 {
		t.Errorf("Unexpected derivation: %+v", d)
	}
	if d.Commitment != "cf80cd8aed482d5d1527d7dc72fceff84e6326592848447d2dc0b0e87dfc9a90" {
		t.Errorf("Unexpected commitment %s", d.Commitment)
	}
	if r := d.Redacted(); r.ServerSeed != "" || r.Commitment == "" {
		t.Errorf("Redacted should drop only the server seed: %+v", r)
	}
}

func BenchmarkFloats(b *testing.B) {
	dst := make([]float64, 52)
	for i := 0; i < b.N; i++ {
		FloatsInto(dst, "benchmark server seed", "benchmark client seed", uint64(i), 0, 52)
	}
}
