// Package seedvault keeps unrevealed server seeds out of the database.
//
// Seeds live in the OS keychain. Where no keychain is reachable (headless
// hosts, CI containers) they fall back to a 0600 JSON file.
package seedvault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"go.uber.org/multierr"
)

const DefaultService = "fair-go"

var (
	ErrNotFound   = errors.New("seedvault: seed not found")
	ErrNoFallback = errors.New("seedvault: keyring unavailable and no fallback path configured")
)

// Vault stores server seeds keyed by seed pair id.
type Vault struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// New creates a vault. An empty fallbackPath disables the file fallback.
func New(service, fallbackPath string) *Vault {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	return &Vault{service: service, fallbackPath: fallbackPath}
}

func (v *Vault) user(id string) string {
	return "server-seed/" + id
}

// Put stores seed under id, replacing any previous value.
func (v *Vault) Put(id, seed string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("seedvault: id is required")
	}

	err := keyring.Set(v.service, v.user(id), seed)
	if err == nil {
		return nil
	}
	if !keyringUnavailable(err) {
		return fmt.Errorf("seedvault: keyring set: %w", err)
	}
	return v.putFallback(id, seed)
}

// Get returns the seed stored under id.
func (v *Vault) Get(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("seedvault: id is required")
	}

	seed, err := keyring.Get(v.service, v.user(id))
	if err == nil {
		return seed, nil
	}
	if !keyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("seedvault: keyring get: %w", err)
	}
	return v.getFallback(id)
}

// Delete removes id from the keyring and the fallback file. Deleting a
// missing seed is not an error.
func (v *Vault) Delete(id string) error {
	var errs error
	if err := keyring.Delete(v.service, v.user(id)); err != nil &&
		!errors.Is(err, keyring.ErrNotFound) && !keyringUnavailable(err) {
		errs = multierr.Append(errs, fmt.Errorf("seedvault: keyring delete: %w", err))
	}
	// Always clear the fallback too; a seed may have been written there
	// while the keyring was down.
	errs = multierr.Append(errs, v.deleteFallback(id))
	return errs
}

func keyringUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"secret service", "dbus", "no keychain", "keyring backend not available", "exec:"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

type fallbackSeeds map[string]string

func (v *Vault) putFallback(id, seed string) error {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return ErrNoFallback
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallback()
	if err != nil {
		return err
	}
	data[id] = seed
	return v.writeFallback(data)
}

func (v *Vault) getFallback(id string) (string, error) {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return "", ErrNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallback()
	if err != nil {
		return "", err
	}
	seed, ok := data[id]
	if !ok {
		return "", ErrNotFound
	}
	return seed, nil
}

func (v *Vault) deleteFallback(id string) error {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallback()
	if err != nil {
		return err
	}
	if _, ok := data[id]; !ok {
		return nil
	}
	delete(data, id)
	return v.writeFallback(data)
}

func (v *Vault) readFallback() (fallbackSeeds, error) {
	out := fallbackSeeds{}
	raw, err := os.ReadFile(v.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("seedvault: read fallback: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("seedvault: decode fallback: %w", err)
	}
	return out, nil
}

func (v *Vault) writeFallback(data fallbackSeeds) error {
	if err := os.MkdirAll(filepath.Dir(v.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("seedvault: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("seedvault: encode fallback: %w", err)
	}
	if err := os.WriteFile(v.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("seedvault: write fallback: %w", err)
	}
	return nil
}
