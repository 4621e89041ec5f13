package seedpair

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
	"github.com/MJE43/fair-go/internal/seedvault"
	"github.com/MJE43/fair-go/internal/store"
)

func newTestService(t *testing.T) (*Service, *seedvault.Vault) {
	t.Helper()
	db := openTestStore(t)
	vault := seedvault.New("fair-test", "")
	return New(db, vault, zerolog.Nop()), vault
}

func openTestStore(t *testing.T) *store.SQLiteDB {
	t.Helper()
	keyring.MockInit()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "fair.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// racingStore reveals a pair just before the service does, as a concurrent
// rotation of the same pair would.
type racingStore struct {
	*store.SQLiteDB
	created []string
}

func (r *racingStore) CreateSeedPair(ctx context.Context, pair *store.SeedPair) error {
	if err := r.SQLiteDB.CreateSeedPair(ctx, pair); err != nil {
		return err
	}
	r.created = append(r.created, pair.ID)
	return nil
}

func (r *racingStore) RevealSeedPair(ctx context.Context, id, serverSeed string) error {
	if err := r.SQLiteDB.RevealSeedPair(ctx, id, serverSeed); err != nil {
		return err
	}
	return r.SQLiteDB.RevealSeedPair(ctx, id, serverSeed)
}

func TestCreateCommitsToVaultSeed(t *testing.T) {
	ctx := context.Background()
	svc, vault := newTestService(t)

	pair, err := svc.Create(ctx, "my client seed")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pair.ServerSeed != "" || pair.Nonce != 0 {
		t.Errorf("New pair must not expose its seed: %+v", pair)
	}

	seed, err := vault.Get(pair.ID)
	if err != nil {
		t.Fatalf("vault.Get: %v", err)
	}
	if ok, _ := engine.VerifyServerSeed(seed, pair.Commitment); !ok {
		t.Error("Commitment does not match the vaulted seed")
	}

	if _, err := svc.Create(ctx, "  "); !errors.Is(err, engine.ErrInvalidSeedMaterial) {
		t.Errorf("Expected ErrInvalidSeedMaterial for an empty client seed, got %v", err)
	}
}

func TestBetAdvancesNonce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	pair, _ := svc.Create(ctx, "client")

	for want := uint64(0); want < 3; want++ {
		bet, err := svc.Bet(ctx, pair.ID, "dice", nil)
		if err != nil {
			t.Fatalf("Bet: %v", err)
		}
		d := bet.Derivation
		if d.Nonce != want {
			t.Errorf("Expected nonce %d, got %d", want, d.Nonce)
		}
		if d.ServerSeed != "" {
			t.Fatal("Bet leaked the server seed")
		}
		if d.Commitment != pair.Commitment || d.ClientSeed != "client" {
			t.Errorf("Derivation does not echo the pair: %+v", d)
		}
	}
}

func TestBetRejectsConfigBeforeNonce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	pair, _ := svc.Create(ctx, "client")

	_, err := svc.Bet(ctx, pair.ID, "mines", games.Config{"mines": 30})
	if !errors.Is(err, games.ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
	if _, err := svc.Bet(ctx, pair.ID, "crash", nil); !errors.Is(err, games.ErrWrongMode) {
		t.Errorf("Expected ErrWrongMode for crash, got %v", err)
	}
	if _, err := svc.Bet(ctx, pair.ID, "pachinko", nil); !errors.Is(err, games.ErrUnknownGame) {
		t.Errorf("Expected ErrUnknownGame, got %v", err)
	}

	got, _ := svc.Get(ctx, pair.ID)
	if got.Nonce != 0 {
		t.Errorf("Rejected bets must not consume nonces, nonce is %d", got.Nonce)
	}
}

func TestRotateRevealsAndVerifies(t *testing.T) {
	ctx := context.Background()
	svc, vault := newTestService(t)
	pair, _ := svc.Create(ctx, "client")

	var bets []*Bet
	for i := 0; i < 2; i++ {
		bet, err := svc.Bet(ctx, pair.ID, "limbo", nil)
		if err != nil {
			t.Fatalf("Bet: %v", err)
		}
		bets = append(bets, bet)
	}

	rot, err := svc.Rotate(ctx, pair.ID, "")
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if rot.Revealed.ServerSeed == "" || !rot.Revealed.Revealed() || rot.Revealed.Nonce != 2 {
		t.Fatalf("Expected revealed pair with 2 bets, got %+v", rot.Revealed)
	}
	if rot.Next.ClientSeed != "client" || rot.Next.ID == pair.ID {
		t.Errorf("Unexpected successor %+v", rot.Next)
	}
	if _, err := vault.Get(pair.ID); !errors.Is(err, seedvault.ErrNotFound) {
		t.Errorf("Revealed seed should leave the vault, got %v", err)
	}

	for _, bet := range bets {
		v, err := Verify(VerifyRequest{
			ServerSeed: rot.Revealed.ServerSeed,
			Commitment: pair.Commitment,
			ClientSeed: "client",
			Nonce:      bet.Derivation.Nonce,
			Game:       "limbo",
		})
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if v.CommitmentValid == nil || !*v.CommitmentValid {
			t.Error("Revealed seed should match its commitment")
		}
		if v.Result.Metric != bet.Metric {
			t.Errorf("Nonce %d: bet %v, verified %v", bet.Derivation.Nonce, bet.Metric, v.Result.Metric)
		}
	}

	if _, err := svc.Bet(ctx, pair.ID, "dice", nil); !errors.Is(err, ErrRevealed) {
		t.Errorf("Expected ErrRevealed, got %v", err)
	}
	if _, err := svc.Rotate(ctx, pair.ID, "x"); !errors.Is(err, ErrRevealed) {
		t.Errorf("Expected ErrRevealed on second rotate, got %v", err)
	}
}

func TestRotateLosingRaceDiscardsSuccessor(t *testing.T) {
	ctx := context.Background()
	db := &racingStore{SQLiteDB: openTestStore(t)}
	vault := seedvault.New("fair-test", "")
	svc := New(db, vault, zerolog.Nop())

	pair, err := svc.Create(ctx, "client")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Rotate(ctx, pair.ID, ""); !errors.Is(err, ErrRevealed) {
		t.Fatalf("Expected ErrRevealed, got %v", err)
	}
	if len(db.created) != 2 {
		t.Fatalf("Expected a successor to be created, got %v", db.created)
	}
	successor := db.created[1]

	if _, err := db.GetSeedPair(ctx, successor); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Successor row should be gone, got %v", err)
	}
	if _, err := vault.Get(successor); !errors.Is(err, seedvault.ErrNotFound) {
		t.Errorf("Successor seed should leave the vault, got %v", err)
	}
	list, err := db.ListSeedPairs(ctx, store.Page{})
	if err != nil {
		t.Fatalf("ListSeedPairs: %v", err)
	}
	if list.TotalCount != 1 {
		t.Errorf("Expected only the original pair, got %d", list.TotalCount)
	}
}

func TestVerifyWithoutStore(t *testing.T) {
	v, err := Verify(VerifyRequest{
		ServerSeed: "some server seed",
		Commitment: "not a hash",
		ClientSeed: "some client seed",
		Nonce:      1,
		Game:       "baccarat",
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.CommitmentValid == nil || *v.CommitmentValid {
		t.Error("A malformed commitment must not verify")
	}
	out := v.Result.Details.(games.BaccaratOutcome)
	if out.Winner != "tie" {
		t.Errorf("Expected a tie, got %s", out.Winner)
	}

	if _, err := Verify(VerifyRequest{Game: "dice", ClientSeed: "c"}); !errors.Is(err, engine.ErrInvalidSeedMaterial) {
		t.Errorf("Expected ErrInvalidSeedMaterial, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Bet(context.Background(), "missing", "dice", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
