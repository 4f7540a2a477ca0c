// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fanout runs one operation per input concurrently and joins on all
// of them, collecting a per-branch outcome instead of stopping at the first
// failure.
package fanout

import (
	"context"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Outcome is the settled result of one branch.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether the branch succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Settle calls fn once per input, each in its own goroutine, and returns
// after every call has returned. outcomes[i] always belongs to inputs[i]. A
// failing or panicking branch never stops its siblings; a panic is converted
// into that branch's error. limit caps concurrent branches; zero or less
// means no cap.
func Settle[In, Out any](ctx context.Context, inputs []In, limit int, fn func(ctx context.Context, i int, in In) (Out, error)) []Outcome[Out] {
	outcomes := make([]Outcome[Out], len(inputs))
	if len(inputs) == 0 {
		return outcomes
	}

	p := pool.New()
	if limit > 0 {
		p = p.WithMaxGoroutines(limit)
	}

	for i, in := range inputs {
		p.Go(func() {
			var pc panics.Catcher
			pc.Try(func() {
				v, err := fn(ctx, i, in)
				outcomes[i] = Outcome[Out]{Value: v, Err: err}
			})
			if r := pc.Recovered(); r != nil {
				outcomes[i] = Outcome[Out]{Err: r.AsError()}
			}
		})
	}
	p.Wait()

	return outcomes
}

// Successes returns the values of the successful outcomes in input order.
func Successes[T any](outcomes []Outcome[T]) []T {
	var out []T
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Value)
		}
	}
	return out
}
