package games

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrInvalidConfig = errors.New("invalid game config")
	ErrWrongMode     = errors.New("game does not support this mode")
)

// Config is the loosely typed option bag callers send. Each game decodes it
// into its own typed struct.
type Config map[string]any

// ConfigError reports a rejected option. It matches ErrInvalidConfig.
type ConfigError struct {
	Game   Kind
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Game, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Game, e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configErr(game Kind, field, format string, args ...any) error {
	return &ConfigError{Game: game, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Merge overlays overrides on defaults one level deep. Neither input is modified.
func Merge(defaults, overrides Config) Config {
	out := make(Config, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// decodeConfig merges raw over defaults and decodes the result into out.
// Unknown keys, mistyped values and fractional numbers for integer fields
// are rejected. Whole JSON numbers still decode into integer fields.
func decodeConfig(game Kind, defaults, raw Config, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  rejectFractional,
		ErrorUnused: true,
		TagName:     "json",
		Result:      out,
	})
	if err != nil {
		return fmt.Errorf("config decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(Merge(defaults, raw))); err != nil {
		return &ConfigError{Game: game, Reason: err.Error()}
	}
	return nil
}

func rejectFractional(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
	default:
		return data, nil
	}
	f, ok := data.(float64)
	if !ok {
		return data, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}
	return data, nil
}

// Defaults returns a copy of the default configuration for id.
func Defaults(id string) (Config, error) {
	g, err := Resolve(id)
	if err != nil {
		return nil, err
	}
	return Merge(g.Spec().Defaults, nil), nil
}
