// Package cli implements the fair command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/MJE43/fair-go/internal/api"
	"github.com/MJE43/fair-go/internal/config"
	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
)

// ErrUsage reports bad arguments. The usage text has already been printed.
var ErrUsage = errors.New("usage error")

const usage = `usage: fair <command> [flags] [args]

commands:
  simulate <game> <client_seed> <server_seed> <nonce> [-config json]
  multiplayer <game> <game_hash> [-config json]
  hash <server_seed>
  verify-hash <game_hash> [-tip hex] [-salt s] [-max-length n] [-hex-links]
  games
  version
  serve [-addr host:port]
`

// Run executes one command. Results are written to stdout as JSON.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "simulate":
		return runSimulate(rest, stdout, stderr)
	case "multiplayer":
		return runMultiplayer(rest, stdout, stderr)
	case "hash":
		return runHash(rest, stdout, stderr)
	case "verify-hash":
		return runVerifyHash(ctx, rest, stdout, stderr)
	case "games":
		return writeJSON(stdout, games.Catalog())
	case "version":
		return writeJSON(stdout, api.GetVersionInfo())
	case "serve":
		return runServe(ctx, rest, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return ErrUsage
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse parses flags and checks the positional argument count. Flags may
// follow the positional arguments.
func parse(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, ErrUsage
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
	if len(pos) != positional {
		fmt.Fprintf(fs.Output(), "%s: expected %d arguments, got %d\n", fs.Name(), positional, len(pos))
		return nil, ErrUsage
	}
	return pos, nil
}

func parseConfig(raw string) (games.Config, error) {
	if raw == "" {
		return nil, nil
	}
	var cfg games.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("parse -config: %w", err)
	}
	return cfg, nil
}

func runSimulate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("simulate", stderr)
	rawCfg := fs.String("config", "", "game config as a JSON object")
	pos, err := parse(fs, args, 4)
	if err != nil {
		return err
	}
	nonce, err := strconv.ParseUint(pos[3], 10, 64)
	if err != nil {
		return fmt.Errorf("parse nonce %q: %w", pos[3], err)
	}
	cfg, err := parseConfig(*rawCfg)
	if err != nil {
		return err
	}
	res, err := games.Simulate(pos[0], pos[1], pos[2], nonce, cfg)
	if err != nil {
		return err
	}
	return writeJSON(stdout, res)
}

func runMultiplayer(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("multiplayer", stderr)
	rawCfg := fs.String("config", "", "game config as a JSON object")
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	cfg, err := parseConfig(*rawCfg)
	if err != nil {
		return err
	}
	res, err := games.SimulateMultiplayer(pos[0], pos[1], cfg)
	if err != nil {
		return err
	}
	return writeJSON(stdout, res)
}

func runHash(args []string, stdout, stderr io.Writer) error {
	pos, err := parse(newFlagSet("hash", stderr), args, 1)
	if err != nil {
		return err
	}
	hash, err := engine.HashServerSeed(pos[0])
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]string{"hash": hash})
}

type hashVerification struct {
	Chain      engine.ChainVerification `json:"chain"`
	CrashPoint float64                  `json:"crash_point"`
}

// runVerifyHash checks a crash game hash. Chain settings default to the
// environment, then to the published Stake chain. Interrupting stops the walk.
func runVerifyHash(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var env config.Config
	if err := config.ParseEnv(&env); err != nil {
		return err
	}
	chain := env.CrashChain()

	fs := newFlagSet("verify-hash", stderr)
	fs.StringVar(&chain.Tip, "tip", chain.Tip, "chain tip game hash")
	fs.StringVar(&chain.Salt, "salt", chain.Salt, "operator salt")
	fs.IntVar(&chain.MaxLength, "max-length", chain.MaxLength, "links to walk before giving up")
	fs.BoolVar(&chain.HexLinks, "hex-links", chain.HexLinks, "hash the hex text of each link")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}

	v, err := engine.VerifyGameHash(ctx, pos[0], chain)
	if err != nil {
		return err
	}
	point, err := games.CrashPoint(pos[0], chain.Salt)
	if err != nil {
		return err
	}
	return writeJSON(stdout, hashVerification{Chain: v, CrashPoint: point})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
