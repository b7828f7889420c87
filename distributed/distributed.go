// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package distributed provides a differentiable all-gather for data-parallel
// training, e.g. contrastive losses computed over the global batch.
//
// Example:
//
//	err := distributed.Launch(ctx, 4, func(ctx context.Context, g distributed.Group) error {
//	    backend := autodiff.New()
//	    backend.Tape().StartRecording()
//	    feats, err := distributed.AllGather(ctx, backend, g, localFeats)
//	    ...
//	})
package distributed

import (
	"context"

	"github.com/born-ml/backbone/internal/autodiff"
	"github.com/born-ml/backbone/internal/distributed"
	"github.com/born-ml/backbone/internal/tensor"
)

// Group is one participant's view of a process group.
type Group = distributed.Group

// LocalGroup is an in-process Group.
type LocalGroup = distributed.LocalGroup

var (
	// ErrNoGroup is returned when AllGather is called without a group.
	ErrNoGroup = distributed.ErrNoGroup

	// ErrShapeMismatch is returned when participants contribute different shapes.
	ErrShapeMismatch = distributed.ErrShapeMismatch
)

// NewLocalGroups creates worldSize connected in-process participants.
func NewLocalGroups(worldSize int) ([]*LocalGroup, error) {
	return distributed.NewLocalGroups(worldSize)
}

// Launch runs fn for every rank of a fresh LocalGroup and waits for all of them.
func Launch(ctx context.Context, worldSize int, fn func(ctx context.Context, g Group) error) error {
	return distributed.Launch(ctx, worldSize, fn)
}

// AllGather gathers x from every participant; gradients flow back to x as
// grads[rank] * worldSize.
func AllGather(ctx context.Context, backend *autodiff.Backend, g Group, x *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return distributed.AllGather(ctx, backend, g, x)
}
