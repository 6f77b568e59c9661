// Package tenalg implements tensor algebra on top of a pluggable numeric backend.
//
// The generalized inner product comes in two flavours:
//
//   - Inner: the scalar (Frobenius) inner product of two tensors with identical
//     shapes, sum(a * b).
//   - Contract: the product of the last nModes modes of the first tensor with the
//     first nModes modes of the second tensor. The result has the leading free
//     modes of the first tensor followed by the trailing free modes of the second.
//
// InnerProduct dispatches between the two based on whether WithModes is given.
package tenalg

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/tenalg/internal/tensor"
)

// Inner returns the scalar inner product sum(t1 * t2).
//
// The shapes of t1 and t2 must be identical, otherwise a *ShapeMismatchError
// (matching ErrShapeMismatch) is returned.
func Inner[T tensor.DType, B tensor.Backend](t1, t2 *tensor.Tensor[T, B]) (T, error) {
	if !t1.Shape().Equal(t2.Shape()) {
		var zero T
		return zero, shapeMismatch(t1.Shape(), t2.Shape())
	}
	return t1.Mul(t2).Sum().Item(), nil
}

// Contract returns the inner product of t1 and t2 along nModes common modes:
// the last nModes modes of t1 against the first nModes modes of t2.
//
// For t1 of shape (a..., c...) and t2 of shape (c..., b...), with len(c) == nModes,
// the result has shape (a..., b...). With nModes == 0 the result is the outer
// product. Both operands are flattened to matrices and multiplied with a single
// backend MatMul.
//
// A *ShapeMismatchError is returned when the common modes differ, or when nModes
// is negative or larger than the rank of either operand. An error is also
// returned when the output shape would overflow the element count.
func Contract[T tensor.DType, B tensor.Backend](t1, t2 *tensor.Tensor[T, B], nModes int) (*tensor.Tensor[T, B], error) {
	shape1, shape2 := t1.Shape(), t2.Shape()
	rank1 := len(shape1)
	if nModes < 0 || nModes > rank1 || nModes > len(shape2) {
		return nil, modesMismatch(nModes, shape1, shape2)
	}

	common := shape1[rank1-nModes:]
	if !common.Equal(shape2[:nModes]) {
		return nil, modesMismatch(nModes, shape1, shape2)
	}

	free1, free2 := shape1[:rank1-nModes], shape2[nModes:]
	commonSize := tensor.Prod(common)
	// rows*commonSize == numel(t1) and commonSize*cols == numel(t2). Products of
	// the free modes are used instead of division so a zero-sized common mode
	// still yields the right output shape.
	rows, cols := tensor.Prod(free1), tensor.Prod(free2)
	outShape := free1.Concat(free2)
	if err := outShape.Validate(); err != nil {
		return nil, errors.Wrapf(err, "contracting %v and %v over %d modes", shape1, shape2, nModes)
	}

	if klog.V(2).Enabled() {
		klog.Infof("tenalg: contracting %v x %v over %d modes on %s: (%d, %d) @ (%d, %d) -> %v",
			shape1, shape2, nModes, t1.Backend().Name(), rows, commonSize, commonSize, cols, outShape)
	}

	lhs := t1.Reshape(rows, commonSize)
	rhs := t2.Reshape(commonSize, cols)
	return lhs.MatMul(rhs).Reshape(outShape...), nil
}

// Option configures InnerProduct.
type Option func(*options)

type options struct {
	nModes   int
	hasModes bool
}

// WithModes makes InnerProduct contract over n common modes instead of
// computing the scalar inner product.
func WithModes(n int) Option {
	return func(o *options) {
		o.nModes = n
		o.hasModes = true
	}
}

// Result holds the outcome of InnerProduct: a scalar when no modes were
// requested, a tensor otherwise.
type Result[T tensor.DType, B tensor.Backend] struct {
	Scalar T
	Tensor *tensor.Tensor[T, B]
}

// IsScalar reports whether the result is the scalar inner product.
func (r Result[T, B]) IsScalar() bool {
	return r.Tensor == nil
}

// InnerProduct computes the generalized inner product of t1 and t2.
//
// Without options it is Inner. With WithModes(n) it is Contract(t1, t2, n).
func InnerProduct[T tensor.DType, B tensor.Backend](t1, t2 *tensor.Tensor[T, B], opts ...Option) (Result[T, B], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if !o.hasModes {
		scalar, err := Inner(t1, t2)
		if err != nil {
			return Result[T, B]{}, err
		}
		return Result[T, B]{Scalar: scalar}, nil
	}

	out, err := Contract(t1, t2, o.nModes)
	if err != nil {
		return Result[T, B]{}, err
	}
	return Result[T, B]{Tensor: out}, nil
}
