// Package main provides the tenalg CLI.
//
// Usage:
//
//	tenalg version
//	tenalg backends
//	tenalg inner -a 2,3,4 -b 3,4,5 [-modes 2] [-backend gonum] [-out result.safetensors]
//	tenalg inner -in operands.safetensors [-names a,b] [-modes 2]
//	tenalg save -a 2,3,4 -b 3,4,5 -out operands.safetensors
//
// Without -in, the operands are float64 tensors filled with 0, 1, ..., n-1.
// With -in, they are read from a SafeTensors file and must be F64.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/tenalg/backend"
	_ "github.com/born-ml/tenalg/backend/all"
	"github.com/born-ml/tenalg/internal/safetensors"
	"github.com/born-ml/tenalg/tenalg"
	"github.com/born-ml/tenalg/tensor"
)

const version = "v0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() { usage(flag.CommandLine.Output()) }
	flag.Parse()
	defer klog.Flush()

	err := exceptions.TryCatch[error](func() {
		must.M(run(flag.Args(), os.Stdout))
	})
	if err != nil {
		klog.Exitf("tenalg: %+v", err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "tenalg %s - generalized tensor inner products\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  backends   List registered backends")
	fmt.Fprintln(w, "  inner      Compute the inner product of two tensors")
	fmt.Fprintln(w, "  save       Write two arange-filled tensors to a SafeTensors file")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "The backend is taken from -backend, or the %s environment variable.\n", backend.EnvBackend)
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "tenalg %s\n", version)
		return nil
	case "backends":
		for _, name := range backend.List() {
			fmt.Fprintln(out, name)
		}
		return nil
	case "inner":
		return runInner(args[1:], out)
	case "save":
		return runSave(args[1:], out)
	default:
		return errors.Errorf("unknown command %q", args[0])
	}
}

func runInner(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inner", flag.ContinueOnError)
	fs.SetOutput(out)
	flagA := fs.String("a", "", "Shape of the first tensor, comma separated (empty for a scalar).")
	flagB := fs.String("b", "", "Shape of the second tensor, comma separated (empty for a scalar).")
	flagIn := fs.String("in", "", "SafeTensors file to read the operands from, instead of -a and -b.")
	flagNames := fs.String("names", "a,b", "Names of the two operands in the -in file.")
	flagOut := fs.String("out", "", "If set, the result is also written to this SafeTensors file as \"result\".")
	flagModes := fs.Int("modes", -1, "Number of common modes to contract; negative computes the scalar inner product.")
	flagBackend := fs.String("backend", "", "Backend configuration, \"<name>[:<config>]\". Overrides "+backend.EnvBackend+".")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := newBackend(*flagBackend)
	if err != nil {
		return err
	}

	var x, y *tensor.Tensor[float64, tensor.Backend]
	if *flagIn != "" {
		x, y, err = loadOperands(*flagIn, *flagNames, b)
	} else {
		x, y, err = arangeOperands(*flagA, *flagB, b)
	}
	if err != nil {
		return err
	}

	var opts []tenalg.Option
	if *flagModes >= 0 {
		opts = append(opts, tenalg.WithModes(*flagModes))
	}
	result, err := tenalg.InnerProduct(x, y, opts...)
	if err != nil {
		return err
	}

	resultTensor := result.Tensor
	if result.IsScalar() {
		fmt.Fprintf(out, "%g\n", result.Scalar)
		resultTensor = tensor.Full(tensor.Shape{}, result.Scalar, b)
	} else {
		fmt.Fprintf(out, "shape: %v\n", resultTensor.Shape())
		fmt.Fprintf(out, "data: %v\n", resultTensor.Data())
	}
	if *flagOut != "" {
		return safetensors.WriteFile(*flagOut,
			map[string]*tensor.RawTensor{"result": resultTensor.Raw()},
			map[string]string{"backend": b.Name()})
	}
	return nil
}

func runSave(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(out)
	flagA := fs.String("a", "", "Shape of tensor \"a\", comma separated.")
	flagB := fs.String("b", "", "Shape of tensor \"b\", comma separated.")
	flagOut := fs.String("out", "", "SafeTensors file to write.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *flagOut == "" {
		return errors.New("save: -out is required")
	}

	b, err := backend.NewWithConfig("cpu")
	if err != nil {
		return err
	}
	x, y, err := arangeOperands(*flagA, *flagB, b)
	if err != nil {
		return err
	}
	if err := safetensors.WriteFile(*flagOut, map[string]*tensor.RawTensor{"a": x.Raw(), "b": y.Raw()}, nil); err != nil {
		return err
	}
	size := uint64(x.Raw().ByteSize() + y.Raw().ByteSize())
	fmt.Fprintf(out, "wrote a%v and b%v (%s) to %s\n", x.Shape(), y.Shape(), humanize.Bytes(size), *flagOut)
	return nil
}

func newBackend(config string) (tensor.Backend, error) {
	if config != "" {
		return backend.NewWithConfig(config)
	}
	return backend.New()
}

func arangeOperands(a, b string, be tensor.Backend) (x, y *tensor.Tensor[float64, tensor.Backend], err error) {
	shapeA, err := parseShape(a)
	if err != nil {
		return nil, nil, errors.Wrap(err, "-a")
	}
	shapeB, err := parseShape(b)
	if err != nil {
		return nil, nil, errors.Wrap(err, "-b")
	}
	return tensor.Arange[float64](shapeA, be), tensor.Arange[float64](shapeB, be), nil
}

// loadOperands reads the two comma separated names from a SafeTensors file.
func loadOperands(path, names string, be tensor.Backend) (x, y *tensor.Tensor[float64, tensor.Backend], err error) {
	parts := strings.Split(names, ",")
	if len(parts) != 2 {
		return nil, nil, errors.Errorf("-names: expected two comma separated names, got %q", names)
	}
	file, err := safetensors.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	operands := make([]*tensor.Tensor[float64, tensor.Backend], 2)
	for i, name := range parts {
		name = strings.TrimSpace(name)
		raw, err := file.Tensor(name)
		if err != nil {
			return nil, nil, err
		}
		if raw.DType() != tensor.Float64 {
			return nil, nil, errors.Errorf("tensor %q has dtype %s, only float64 operands are supported", name, raw.DType())
		}
		operands[i] = tensor.New[float64](raw, be)
	}
	return operands[0], operands[1], nil
}

// parseShape parses "2,3,4" into a Shape. An empty string is a scalar.
func parseShape(s string) (tensor.Shape, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return tensor.Shape{}, nil
	}
	parts := strings.Split(s, ",")
	shape := make(tensor.Shape, len(parts))
	for i, part := range parts {
		dim, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid extent %q", part)
		}
		if dim < 0 {
			return nil, errors.Errorf("invalid extent %d: must be >= 0", dim)
		}
		shape[i] = dim
	}
	return shape, nil
}
