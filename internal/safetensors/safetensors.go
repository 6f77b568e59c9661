// Package safetensors reads and writes tensors in the SafeTensors format.
//
// Format:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw bytes]
//
// Only the dtypes supported by internal/tensor are written (F32, F64, I32, I64).
// Read also accepts F16, widened to F32.
package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/born-ml/tenalg/internal/tensor"
)

// MaxHeaderSize bounds the JSON header accepted by Read.
const MaxHeaderSize = 100 * 1024 * 1024

const (
	metadataKey = "__metadata__"
	dtypeF16    = "F16"
)

// TensorInfo describes a tensor in the SafeTensors header.
type TensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end) relative to the data section.
}

// File is a decoded SafeTensors file.
type File struct {
	Metadata map[string]string
	Tensors  map[string]*tensor.RawTensor
}

// Names returns the tensor names sorted alphabetically.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Tensors))
	for name := range f.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tensor returns the named tensor.
func (f *File) Tensor(name string) (*tensor.RawTensor, error) {
	raw, ok := f.Tensors[name]
	if !ok {
		return nil, errors.Errorf("tensor %q not found, available: %v", name, f.Names())
	}
	return raw, nil
}

// Write encodes tensors to w. Tensors are written in alphabetical order by name.
func Write(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if name == metadataKey {
			return errors.Errorf("tensor name %q is reserved", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}
	var offset int64
	for _, name := range names {
		raw := tensors[name]
		dtype, err := dtypeName(raw.DType())
		if err != nil {
			return errors.Wrapf(err, "tensor %q", name)
		}
		size := int64(raw.ByteSize())
		header[name] = TensorInfo{
			DType:       dtype,
			Shape:       raw.Shape().Clone(),
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "failed to write header size")
	}
	if _, err := w.Write(headerJSON); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	// Buffers are stored in host order; all supported platforms are little-endian.
	for _, name := range names {
		if _, err := w.Write(tensors[name].Data()); err != nil {
			return errors.Wrapf(err, "failed to write tensor %q", name)
		}
	}
	return nil
}

// WriteFile writes tensors to path, creating or truncating it.
func WriteFile(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: path is chosen by the caller.
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "failed to close file")
		}
	}()
	return Write(f, tensors, metadata)
}

// Read decodes a SafeTensors stream. Every tensor is copied into its own CPU buffer.
func Read(r io.Reader) (*File, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, errors.Wrap(err, "failed to read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, errors.Errorf("invalid header size: %d (too large)", headerSize)
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	var rawHeader map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &rawHeader); err != nil {
		return nil, errors.Wrap(err, "failed to parse header JSON")
	}

	file := &File{Tensors: make(map[string]*tensor.RawTensor, len(rawHeader))}
	infos := make(map[string]TensorInfo, len(rawHeader))
	for key, value := range rawHeader {
		if key == metadataKey {
			if err := json.Unmarshal(value, &file.Metadata); err != nil {
				return nil, errors.Wrap(err, "failed to parse metadata")
			}
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return nil, errors.Wrapf(err, "failed to parse tensor %q", key)
		}
		infos[key] = info
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tensor data")
	}
	for name, info := range infos {
		raw, err := decodeTensor(info, data)
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %q", name)
		}
		file.Tensors[name] = raw
	}
	klog.V(1).Infof("safetensors: read %d tensors (%d data bytes)", len(file.Tensors), len(data))
	return file, nil
}

// ReadFile reads the SafeTensors file at path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: path is chosen by the caller.
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()
	file, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return file, nil
}

func decodeTensor(info TensorInfo, data []byte) (*tensor.RawTensor, error) {
	half := info.DType == dtypeF16
	dtype := tensor.Float32
	if !half {
		var err error
		if dtype, err = parseDType(info.DType); err != nil {
			return nil, err
		}
	}
	shape := tensor.Shape(info.Shape)
	if err := shape.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	// Sizes are checked against the file before anything is allocated.
	elemSize := dtype.Size()
	if half {
		elemSize = 2
	}
	numel := shape.NumElements()
	if numel > math.MaxInt/elemSize {
		return nil, errors.Errorf("shape %v of %s overflows the byte size", shape, info.DType)
	}
	size := int64(numel * elemSize)
	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if start < 0 || end < start || end > int64(len(data)) {
		return nil, errors.Errorf("invalid data offsets [%d, %d) for %d data bytes", start, end, len(data))
	}
	if end-start != size {
		return nil, errors.Errorf("data size %d does not match shape %v of %s (%d bytes)",
			end-start, shape, info.DType, size)
	}

	raw, err := tensor.NewRaw(shape, dtype, tensor.CPU)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if half {
		src := data[start:end]
		dst := raw.AsFloat32()
		for i := range dst {
			dst[i] = float16.Frombits(binary.LittleEndian.Uint16(src[2*i:])).Float32()
		}
		return raw, nil
	}
	copy(raw.Data(), data[start:end])
	return raw, nil
}

func dtypeName(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return "F32", nil
	case tensor.Float64:
		return "F64", nil
	case tensor.Int32:
		return "I32", nil
	case tensor.Int64:
		return "I64", nil
	default:
		return "", errors.Errorf("unsupported dtype %s", dt)
	}
}

func parseDType(name string) (tensor.DataType, error) {
	switch name {
	case "F32":
		return tensor.Float32, nil
	case "F64":
		return tensor.Float64, nil
	case "I32":
		return tensor.Int32, nil
	case "I64":
		return tensor.Int64, nil
	default:
		return 0, errors.Errorf("unsupported dtype %q", name)
	}
}
