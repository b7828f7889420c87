// Package distributed provides collective operations across the participants
// of a data-parallel training job.
//
// The communication layer itself is a collaborator behind the Group
// interface. LocalGroup implements it in-process, one goroutine per
// participant, for tests and single-machine runs.
package distributed

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/born-ml/backbone/internal/tensor"
)

var (
	// ErrNoGroup is returned when a collective is invoked without an active group.
	ErrNoGroup = errors.New("distributed: no active process group")

	// ErrShapeMismatch is returned when participants contribute tensors of
	// different shapes, or output slots do not match the contributions.
	ErrShapeMismatch = errors.New("distributed: shape mismatch")
)

// Group is one participant's view of a distributed process group.
type Group interface {
	// Rank is this participant's index in [0, WorldSize()).
	Rank() int

	// WorldSize is the number of participants.
	WorldSize() int

	// AllGather copies every participant's in into out[rank of that participant].
	// out must hold WorldSize() preallocated tensors shaped like in.
	// Blocks until all participants have called AllGather.
	AllGather(ctx context.Context, out []*tensor.RawTensor, in *tensor.RawTensor) error
}

// LocalGroup is an in-process Group: participants are goroutines sharing memory.
type LocalGroup struct {
	rank int
	rv   *rendezvous
}

// NewLocalGroups creates worldSize connected participants, one per rank.
// Each must be driven by its own goroutine.
func NewLocalGroups(worldSize int) ([]*LocalGroup, error) {
	if worldSize <= 0 {
		return nil, errors.Errorf("distributed: world size must be positive, got %d", worldSize)
	}
	rv := &rendezvous{size: worldSize}
	rv.round = newRound(worldSize)

	groups := make([]*LocalGroup, worldSize)
	for i := range groups {
		groups[i] = &LocalGroup{rank: i, rv: rv}
	}
	return groups, nil
}

// Rank implements Group.
func (g *LocalGroup) Rank() int {
	return g.rank
}

// WorldSize implements Group.
func (g *LocalGroup) WorldSize() int {
	return g.rv.size
}

// AllGather implements Group.
//
// The contribution is copied, so the caller may modify in once AllGather
// returns. If ctx is cancelled while waiting for peers, the contribution is
// withdrawn from the pending round and ctx.Err() is returned; calling
// AllGather again rejoins the same round.
func (g *LocalGroup) AllGather(ctx context.Context, out []*tensor.RawTensor, in *tensor.RawTensor) error {
	if len(out) != g.rv.size {
		return errors.Errorf("distributed: all-gather needs %d output slots, got %d", g.rv.size, len(out))
	}

	r, err := g.rv.join(g.rank, in.Clone())
	if err != nil {
		return err
	}
	select {
	case <-r.done:
	case <-ctx.Done():
		if g.rv.leave(g.rank, r) {
			return ctx.Err()
		}
		// The round completed while we were being cancelled.
	}
	if r.err != nil {
		return r.err
	}

	for i, contribution := range r.contributions {
		if out[i] == nil {
			return errors.Errorf("distributed: output slot %d is nil", i)
		}
		if err := out[i].CopyFrom(contribution); err != nil {
			return errors.Wrapf(ErrShapeMismatch, "output slot %d: %v", i, err)
		}
	}
	return nil
}

// rendezvous matches up the calls of one collective across participants.
// Calls are grouped into rounds; a round completes once every rank joined.
type rendezvous struct {
	mu    sync.Mutex
	size  int
	round *round
}

type round struct {
	contributions []*tensor.RawTensor
	arrived       int
	done          chan struct{}
	err           error
}

func newRound(size int) *round {
	return &round{
		contributions: make([]*tensor.RawTensor, size),
		done:          make(chan struct{}),
	}
}

// join records rank's contribution in the current round and returns the round.
// The last participant to arrive validates shapes and releases everyone.
func (rv *rendezvous) join(rank int, contribution *tensor.RawTensor) (*round, error) {
	rv.mu.Lock()
	defer rv.mu.Unlock()

	r := rv.round
	if r.contributions[rank] != nil {
		return nil, errors.Errorf("distributed: rank %d joined the same all-gather round twice", rank)
	}
	r.contributions[rank] = contribution
	r.arrived++
	if r.arrived < rv.size {
		return r, nil
	}

	want := r.contributions[0].Shape()
	for i, c := range r.contributions {
		if !c.Shape().Equal(want) {
			r.err = errors.Wrapf(ErrShapeMismatch, "rank %d contributed %v, rank 0 contributed %v", i, c.Shape(), want)
			break
		}
	}
	klog.V(2).Infof("all-gather round complete: world size %d, shape %v", rv.size, want)

	close(r.done)
	rv.round = newRound(rv.size)
	return r, nil
}

// leave withdraws rank's contribution from r if r is still pending.
// It reports false when r already completed, in which case its result stands.
func (rv *rendezvous) leave(rank int, r *round) bool {
	rv.mu.Lock()
	defer rv.mu.Unlock()

	if rv.round != r {
		return false
	}
	r.contributions[rank] = nil
	r.arrived--
	return true
}

// Launch runs fn once per rank of a fresh LocalGroup of worldSize participants,
// each in its own goroutine, and waits for all of them.
//
// The first non-nil error is returned, and the context passed to the other
// participants is cancelled so that they stop waiting on collectives.
func Launch(ctx context.Context, worldSize int, fn func(ctx context.Context, g Group) error) error {
	groups, err := NewLocalGroups(worldSize)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, g := range groups {
		g := g
		eg.Go(func() error {
			return fn(egCtx, g)
		})
	}
	return eg.Wait()
}
