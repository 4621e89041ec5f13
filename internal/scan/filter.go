package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/MJE43/fair-go/internal/games"
)

// Filter is a compiled JavaScript boolean expression over one outcome.
// The expression sees:
//
//	outcome     game-specific details, fields named as in the JSON output
//	metric      the scalar outcome metric
//	multiplier  payout multiplier or null
//	nonce       the nonce being evaluated
//
// e.g. `outcome.roll > 99` or `outcome.mines.includes(0)`.
type Filter struct {
	source  string
	prog    *goja.Program
	timeout time.Duration
}

// CompileFilter parses expr once. A syntax error is an invalid request.
func CompileFilter(expr string, timeout time.Duration) (*Filter, error) {
	// The newline keeps a trailing // comment from swallowing the paren.
	prog, err := goja.Compile("filter", "("+expr+"\n)", true)
	if err != nil {
		return nil, invalid("filter: %v", err)
	}
	if timeout <= 0 {
		timeout = DefaultFilterTimeout
	}
	return &Filter{source: expr, prog: prog, timeout: timeout}, nil
}

func (f *Filter) String() string { return f.source }

// FilterVM evaluates a Filter on its own runtime. A goja runtime is not safe
// for concurrent use, so each scan worker owns one.
type FilterVM struct {
	rt      *goja.Runtime
	prog    *goja.Program
	timeout time.Duration
	stop    func() bool
}

// NewVM returns a sandboxed runtime that is interrupted when ctx ends.
func (f *Filter) NewVM(ctx context.Context) *FilterVM {
	rt := goja.New()
	rt.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	for _, name := range []string{"require", "eval", "Function", "fetch", "XMLHttpRequest"} {
		rt.Set(name, goja.Undefined())
	}
	return &FilterVM{
		rt:      rt,
		prog:    f.prog,
		timeout: f.timeout,
		stop:    context.AfterFunc(ctx, func() { rt.Interrupt(ctx.Err()) }),
	}
}

// Match reports whether the expression is truthy for out.
func (v *FilterVM) Match(nonce uint64, out games.GameResult) (bool, error) {
	v.rt.Set("nonce", nonce)
	v.rt.Set("metric", out.Metric)
	v.rt.Set("outcome", out.Details)
	if out.Multiplier != nil {
		v.rt.Set("multiplier", *out.Multiplier)
	} else {
		v.rt.Set("multiplier", goja.Null())
	}

	fired := make(chan struct{})
	timer := time.AfterFunc(v.timeout, func() {
		v.rt.Interrupt("filter timed out")
		close(fired)
	})
	res, err := v.rt.RunProgram(v.prog)
	if !timer.Stop() {
		// The interrupt may land after RunProgram returns; it must not
		// leak into the next call.
		<-fired
		v.rt.ClearInterrupt()
	} else if err != nil {
		v.rt.ClearInterrupt()
	}
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	return res.ToBoolean(), nil
}

func (v *FilterVM) Close() {
	v.stop()
}
