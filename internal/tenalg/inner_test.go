package tenalg

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tenalg/internal/backend/cpu"
	"github.com/born-ml/tenalg/internal/backend/gonum"
	"github.com/born-ml/tenalg/internal/tensor"
)

type testTensor = tensor.Tensor[float64, tensor.Backend]

// forEachBackend runs fn once per backend implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, b tensor.Backend)) {
	for _, b := range []tensor.Backend{tensor.NewMockBackend(), cpu.New(), gonum.New()} {
		t.Run(b.Name(), func(t *testing.T) {
			fn(t, b)
		})
	}
}

func fromSlice(t *testing.T, b tensor.Backend, shape tensor.Shape, data ...float64) *testTensor {
	t.Helper()
	x, err := tensor.FromSlice[float64, tensor.Backend](data, shape, b)
	require.NoError(t, err)
	return x
}

func random(rng *rand.Rand, b tensor.Backend, shape tensor.Shape) *testTensor {
	x := tensor.Zeros[float64, tensor.Backend](shape, b)
	for i := range x.Data() {
		x.Data()[i] = rng.NormFloat64()
	}
	return x
}

func TestInner_SumOfSquares(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		rng := rand.New(rand.NewSource(1))
		for _, shape := range []tensor.Shape{{5}, {2, 3}, {2, 3, 4}, {}} {
			a := random(rng, b, shape)
			var want float64
			for _, v := range a.Data() {
				want += v * v
			}

			got, err := Inner(a, a)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-9, "shape %v", shape)
		}
	})
}

func TestInner_Commutative(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		rng := rand.New(rand.NewSource(2))
		a := random(rng, b, tensor.Shape{3, 4, 2})
		c := random(rng, b, tensor.Shape{3, 4, 2})

		ac, err := Inner(a, c)
		require.NoError(t, err)
		ca, err := Inner(c, a)
		require.NoError(t, err)
		assert.InDelta(t, ac, ca, 1e-12)
	})
}

func TestInner_Values(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		a := fromSlice(t, b, tensor.Shape{2, 2}, 1, 2, 3, 4)
		c := fromSlice(t, b, tensor.Shape{2, 2}, 5, 6, 7, 8)

		got, err := Inner(a, c)
		require.NoError(t, err)
		assert.InDelta(t, 70.0, got, 1e-12) // 5 + 12 + 21 + 32
	})
}

func TestInner_ReadOnlyInputs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		a := fromSlice(t, b, tensor.Shape{3}, 1, 2, 3)
		_, err := Inner(a, a)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, a.Data())
		assert.Equal(t, tensor.Shape{3}, a.Shape())
	})
}

func TestContract_ReadOnlyInputs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		a := fromSlice(t, b, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		c := fromSlice(t, b, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)

		for _, nModes := range []int{1, 0} {
			out, err := Contract(a, c, nModes)
			require.NoError(t, err)
			for i := range out.Data() {
				out.Data()[i] = -1 // The result must not alias either operand.
			}

			assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Data(), "modes=%d", nModes)
			assert.Equal(t, []float64{7, 8, 9, 10, 11, 12}, c.Data(), "modes=%d", nModes)
			assert.Equal(t, tensor.Shape{2, 3}, a.Shape(), "modes=%d", nModes)
			assert.Equal(t, tensor.Shape{3, 2}, c.Shape(), "modes=%d", nModes)
		}
	})
}

func TestInner_ShapeMismatch(t *testing.T) {
	b := cpu.New()
	a := tensor.Zeros[float64](tensor.Shape{2, 3}, b)
	c := tensor.Zeros[float64](tensor.Shape{3, 2}, b)

	_, err := Inner(a, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	var mismatch *ShapeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.False(t, mismatch.HasModes)
	assert.Equal(t, tensor.Shape{2, 3}, mismatch.Shape1)
	assert.Equal(t, tensor.Shape{3, 2}, mismatch.Shape2)
	assert.Contains(t, err.Error(), "tensor1.shape=(2, 3)")
	assert.Contains(t, err.Error(), "tensor2.shape=(3, 2)")

	// Same element count but different rank.
	_, err = Inner(tensor.Zeros[float64](tensor.Shape{6}, b), a)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestContract_MatrixProduct(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		rng := rand.New(rand.NewSource(3))
		a := random(rng, b, tensor.Shape{3, 4})
		c := random(rng, b, tensor.Shape{4, 5})

		got, err := Contract(a, c, 1)
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{3, 5}, got.Shape())

		for i := 0; i < 3; i++ {
			for j := 0; j < 5; j++ {
				var want float64
				for k := 0; k < 4; k++ {
					want += a.At(i, k) * c.At(k, j)
				}
				assert.InDelta(t, want, got.At(i, j), 1e-9, "(%d, %d)", i, j)
			}
		}
	})
}

func TestContract_OuterProduct(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		a := fromSlice(t, b, tensor.Shape{3}, 1, 2, 3)
		c := fromSlice(t, b, tensor.Shape{4}, 1, 10, 100, 1000)

		got, err := Contract(a, c, 0)
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{3, 4}, got.Shape())
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				assert.InDelta(t, a.At(i)*c.At(j), got.At(i, j), 1e-12)
			}
		}
	})
}

func TestContract_TwoModes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		rng := rand.New(rand.NewSource(4))
		a := random(rng, b, tensor.Shape{2, 3, 4})
		c := random(rng, b, tensor.Shape{3, 4, 5})

		got, err := Contract(a, c, 2)
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{2, 5}, got.Shape())

		for i := 0; i < 2; i++ {
			for l := 0; l < 5; l++ {
				var want float64
				for j := 0; j < 3; j++ {
					for k := 0; k < 4; k++ {
						want += a.At(i, j, k) * c.At(j, k, l)
					}
				}
				assert.InDelta(t, want, got.At(i, l), 1e-9)
			}
		}
	})
}

func TestContract_AllModesOfFirst(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		rng := rand.New(rand.NewSource(5))
		a := random(rng, b, tensor.Shape{3, 4})
		c := random(rng, b, tensor.Shape{3, 4, 2})

		got, err := Contract(a, c, 2)
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{2}, got.Shape())
	})
}

func TestContract_FullRankMatchesInner(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		rng := rand.New(rand.NewSource(6))
		a := random(rng, b, tensor.Shape{2, 3})
		c := random(rng, b, tensor.Shape{2, 3})

		contracted, err := Contract(a, c, 2)
		require.NoError(t, err)
		require.Equal(t, 0, contracted.Rank())

		scalar, err := Inner(a, c)
		require.NoError(t, err)
		assert.InDelta(t, scalar, contracted.Item(), 1e-9)
	})
}

func TestContract_ZeroSizedCommonMode(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		a := tensor.Zeros[float64, tensor.Backend](tensor.Shape{2, 0}, b)
		c := tensor.Zeros[float64, tensor.Backend](tensor.Shape{0, 3}, b)

		got, err := Contract(a, c, 1)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{2, 3}, got.Shape())
		assert.Equal(t, make([]float64, 6), got.Data())
	})
}

func TestContract_OutputShapeOverflow(t *testing.T) {
	b := cpu.New()
	a := tensor.Zeros[float64](tensor.Shape{math.MaxInt / 2, 0}, b)
	c := tensor.Zeros[float64](tensor.Shape{0, math.MaxInt / 2}, b)

	out, err := Contract(a, c, 1)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.False(t, errors.Is(err, ErrShapeMismatch))
	assert.Contains(t, err.Error(), "overflows")
}

func TestContract_ShapeMismatch(t *testing.T) {
	b := cpu.New()
	tests := []struct {
		name           string
		shape1, shape2 tensor.Shape
		nModes         int
	}{
		{"CommonModeDiffers", tensor.Shape{2, 3}, tensor.Shape{4, 5}, 1},
		{"SecondCommonModeDiffers", tensor.Shape{2, 3, 4}, tensor.Shape{3, 5, 5}, 2},
		{"Negative", tensor.Shape{2, 3}, tensor.Shape{3, 2}, -1},
		{"LargerThanFirstRank", tensor.Shape{3}, tensor.Shape{3, 3}, 2},
		{"LargerThanSecondRank", tensor.Shape{3, 3}, tensor.Shape{3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tensor.Zeros[float64](tt.shape1, b)
			c := tensor.Zeros[float64](tt.shape2, b)

			out, err := Contract(a, c, tt.nModes)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrShapeMismatch))

			var mismatch *ShapeMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.True(t, mismatch.HasModes)
			assert.Equal(t, tt.nModes, mismatch.NModes)
			assert.Contains(t, err.Error(), fmt.Sprintf("along %d common modes", tt.nModes))
			assert.Contains(t, err.Error(), "tensor1.shape="+tt.shape1.String())
			assert.Contains(t, err.Error(), "tensor2.shape="+tt.shape2.String())
		})
	}
}

func TestContract_Int64(t *testing.T) {
	b := cpu.New()
	a, err := tensor.FromSlice([]int64{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	require.NoError(t, err)
	c, err := tensor.FromSlice([]int64{5, 6, 7, 8}, tensor.Shape{2, 2}, b)
	require.NoError(t, err)

	got, err := Contract(a, c, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{19, 22, 43, 50}, got.Data())

	scalar, err := Inner(a, c)
	require.NoError(t, err)
	assert.Equal(t, int64(70), scalar)
}

type weight float64

func TestContract_NamedElementType(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b tensor.Backend) {
		a, err := tensor.FromSlice([]weight{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
		require.NoError(t, err)

		got, err := Contract(a, a, 1)
		require.NoError(t, err)
		assert.Equal(t, []weight{7, 10, 15, 22}, got.Data())

		scalar, err := Inner(a, a)
		require.NoError(t, err)
		assert.Equal(t, weight(30), scalar)
	})
}

func TestInnerProduct_Dispatch(t *testing.T) {
	b := gonum.New()
	a := tensor.Arange[float64](tensor.Shape{2, 3}, b)
	c := tensor.Arange[float64](tensor.Shape{3, 2}, b)

	scalarResult, err := InnerProduct(a, a)
	require.NoError(t, err)
	assert.True(t, scalarResult.IsScalar())
	assert.InDelta(t, 55.0, scalarResult.Scalar, 1e-12) // 0+1+4+9+16+25

	tensorResult, err := InnerProduct(a, c, WithModes(1))
	require.NoError(t, err)
	require.False(t, tensorResult.IsScalar())
	assert.Equal(t, tensor.Shape{2, 2}, tensorResult.Tensor.Shape())

	_, err = InnerProduct(a, c)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = InnerProduct(a, a, WithModes(1))
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestShapeMismatchError_StackTrace(t *testing.T) {
	b := cpu.New()
	_, err := Inner(tensor.Zeros[float64](tensor.Shape{1}, b), tensor.Zeros[float64](tensor.Shape{2}, b))
	require.Error(t, err)
	assert.Contains(t, fmt.Sprintf("%+v", err), "tenalg.Inner")
}
