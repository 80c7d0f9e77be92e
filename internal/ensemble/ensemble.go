// Package ensemble generates batches of trajectories from perturbed
// initial states.
package ensemble

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Policy decides what a failed member does to the rest of the batch.
type Policy int

const (
	// AbortBatch cancels the remaining members and returns the first error.
	AbortBatch Policy = iota
	// SkipFailed records the failure and keeps the other members.
	SkipFailed
)

func (p Policy) String() string {
	switch p {
	case SkipFailed:
		return "skip"
	default:
		return "abort"
	}
}

// ParsePolicy accepts "abort" or "skip".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "abort":
		return AbortBatch, nil
	case "skip":
		return SkipFailed, nil
	}
	return AbortBatch, dynamo.InvalidParameter("unknown batch policy %q (want abort or skip)", s)
}

type Options struct {
	Workers int
	Policy  Policy
	Logger  *slog.Logger
}

// MemberError identifies which initial state failed.
type MemberError struct {
	Index int
	Err   error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("member %d: %v", e.Index, e.Err)
}

func (e *MemberError) Unwrap() error { return e.Err }

// Batch holds one slot per initial state, in input order. A slot is nil
// when its member failed under SkipFailed.
type Batch struct {
	Initial  []dynamo.State
	Members  []*trajectory.Trajectory
	Failures map[int]error
}

// Trajectories returns the successful members in input order.
func (b *Batch) Trajectories() []*trajectory.Trajectory {
	out := make([]*trajectory.Trajectory, 0, len(b.Members))
	for _, tr := range b.Members {
		if tr != nil {
			out = append(out, tr)
		}
	}
	return out
}

// FailedIndices returns the indices of failed members in ascending order.
func (b *Batch) FailedIndices() []int {
	idx := make([]int, 0, len(b.Failures))
	for i := range b.Failures {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Perturb returns n copies of base whose axis coordinate is offset by
// 0, eps, 2*eps, ..., (n-1)*eps.
func Perturb(base dynamo.State, axis int, eps float64, n int) ([]dynamo.State, error) {
	if n < 1 {
		return nil, dynamo.InvalidParameter("batch size must be at least 1, got %d", n)
	}
	if axis < 0 || axis >= len(base) {
		return nil, dynamo.InvalidParameter("perturbation axis %d out of range for %d-dimensional state", axis, len(base))
	}
	if math.IsNaN(eps) || math.IsInf(eps, 0) {
		return nil, dynamo.InvalidParameter("perturbation must be finite, got %g", eps)
	}
	if !base.IsValid() {
		return nil, dynamo.InvalidParameter("base state %v is not finite", base)
	}

	states := make([]dynamo.State, n)
	for k := range states {
		s := base.Clone()
		s[axis] += float64(k) * eps
		states[k] = s
	}
	return states, nil
}

// Generate samples one trajectory per initial state. Members run
// concurrently on up to opts.Workers goroutines, each with its own
// integrator from newIntegrator.
func Generate(ctx context.Context, dyn dynamo.System, newIntegrator func() dynamo.Integrator, initial []dynamo.State, cfg trajectory.Config, opts Options) (*Batch, error) {
	if len(initial) == 0 {
		return nil, dynamo.InvalidParameter("no initial states")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = log
	}

	batch := &Batch{
		Initial:  initial,
		Members:  make([]*trajectory.Trajectory, len(initial)),
		Failures: make(map[int]error),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, x0 := range initial {
		g.Go(func() error {
			tr, err := trajectory.Sample(gctx, dyn, newIntegrator(), x0, cfg)
			if err != nil {
				merr := &MemberError{Index: i, Err: err}
				if opts.Policy == SkipFailed && ctx.Err() == nil {
					log.Warn("trajectory skipped", slog.Int("member", i), slog.Any("error", err))
					mu.Lock()
					batch.Failures[i] = merr
					mu.Unlock()
					return nil
				}
				return merr
			}
			batch.Members[i] = tr
			log.Debug("trajectory done", slog.Int("member", i), slog.Int("samples", tr.Len()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}
