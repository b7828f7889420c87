package distributed

import (
	"context"

	"github.com/born-ml/backbone/internal/autodiff"
	"github.com/born-ml/backbone/internal/tensor"
)

// AllGather collects x from every participant of g, differentiably.
//
// Forward returns one tensor per participant, ordered by rank, identical on
// every participant. It issues exactly one g.AllGather call and returns that
// call's error unmodified.
//
// When backend is recording, the backward pass maps the gradients of the
// gathered tensors to a gradient for x equal to grads[rank] * worldSize.
// Each participant only backpropagates through its own slot, so the scaling
// keeps the effective learning rate independent of the participant count
// once gradients are averaged across participants.
//
// Example (contrastive loss over the global batch):
//
//	feats, err := distributed.AllGather(ctx, backend, group, localFeats)
//	all, err := tensor.Cat(feats, 0)
func AllGather(ctx context.Context, backend *autodiff.Backend, g Group, x *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if g == nil {
		return nil, ErrNoGroup
	}
	return autodiff.Apply(backend, &gatherFunction{ctx: ctx, group: g}, x)
}

// gatherFunction is the forward/backward pair behind AllGather.
type gatherFunction struct {
	ctx   context.Context
	group Group
}

const (
	keyRank      = "rank"
	keyWorldSize = "world_size"
)

func (f *gatherFunction) Forward(fc *autodiff.FunctionContext, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	worldSize := f.group.WorldSize()

	out := make([]*tensor.RawTensor, worldSize)
	for i := range out {
		out[i] = tensor.ZerosLike(x)
	}
	if err := f.group.AllGather(f.ctx, out, x); err != nil {
		return nil, err
	}

	fc.SaveForBackward(x)
	fc.SetInt(keyRank, f.group.Rank())
	fc.SetInt(keyWorldSize, worldSize)
	return out, nil
}

func (f *gatherFunction) Backward(fc *autodiff.FunctionContext, outputGrads ...*tensor.RawTensor) []*tensor.RawTensor {
	x := fc.SavedTensors()[0]
	rank, worldSize := fc.Int(keyRank), fc.Int(keyWorldSize)

	grad := tensor.ZerosLike(x)
	if err := grad.CopyFrom(tensor.MulScalar(outputGrads[rank], float32(worldSize))); err != nil {
		panic(err)
	}
	return []*tensor.RawTensor{grad}
}
