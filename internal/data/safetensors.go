package data

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"

	"github.com/born-ml/detect/internal/tensor"
)

// Detection datasets are stored as SafeTensors files:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw bytes]
//
// with three tensors:
//
//	images       [N, ...]      one record per leading index, any dtype
//	box_offsets  [N+1] I64     rows of record i are boxes[off[i]:off[i+1]]
//	boxes        [M, width]    F32, omitted when M == 0
//
// The label width is kept in the "label_width" metadata entry so files
// without any box still describe their layout.
const (
	imagesTensor  = "images"
	offsetsTensor = "box_offsets"
	boxesTensor   = "boxes"
	widthKey      = "label_width"
	metadataKey   = "__metadata__"
	maxHeaderSize = 100 * 1024 * 1024
)

// ErrFormat is returned for a malformed dataset file.
var ErrFormat = errors.New("data: malformed safetensors dataset")

type tensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

type chunk struct {
	name  string
	info  tensorInfo
	bytes []byte
}

type fileHeader struct {
	Metadata map[string]string
	Tensors  map[string]tensorInfo
}

func (h *fileHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap[metadataKey]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]tensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == metadataKey {
			continue
		}
		var info tensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

var dtypeNames = map[tensor.DataType]string{
	tensor.Float32: "F32",
	tensor.Float64: "F64",
	tensor.Int32:   "I32",
	tensor.Int64:   "I64",
	tensor.Bool:    "BOOL",
}

func parseDType(name string) (tensor.DataType, error) {
	for dt, n := range dtypeNames {
		if n == name {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported dtype %s", ErrFormat, name)
}

// SafetensorsDataset serves detection records from a SafeTensors file.
// Get reads only the bytes of the requested record and is safe for
// concurrent use.
type SafetensorsDataset struct {
	file       *os.File
	dataOffset int64
	payload    int64

	images    tensorInfo
	imageType tensor.DataType
	recordLen int64

	offsets []int64
	boxes   *tensorInfo
	width   int
}

// OpenSafetensors opens a dataset written by WriteSafetensors.
func OpenSafetensors(path string) (*SafetensorsDataset, error) {
	//nolint:gosec // G304: dataset path is user input.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	ds, err := readDataset(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func readDataset(file *os.File) (*SafetensorsDataset, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("%w: header size: %v", ErrFormat, err)
	}
	if headerSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: header size %d too large", ErrFormat, headerSize)
	}

	ds := &SafetensorsDataset{
		file:       file,
		dataOffset: int64(8 + headerSize), //nolint:gosec // G115: bounded by maxHeaderSize.
	}
	if ds.dataOffset > stat.Size() {
		return nil, fmt.Errorf("%w: header of %d bytes exceeds file size %d", ErrFormat, headerSize, stat.Size())
	}
	ds.payload = stat.Size() - ds.dataOffset

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header fileHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}

	images, ok := header.Tensors[imagesTensor]
	if !ok || len(images.Shape) == 0 {
		return nil, fmt.Errorf("%w: missing %q tensor", ErrFormat, imagesTensor)
	}
	dt, err := parseDType(images.DType)
	if err != nil {
		return nil, err
	}
	if err := ds.checkSpan(imagesTensor, images, int64(dt.Size())); err != nil {
		return nil, err
	}
	ds.images = images
	ds.imageType = dt
	ds.recordLen = (images.DataOffsets[1] - images.DataOffsets[0]) / int64(images.Shape[0])

	offsetsInfo, ok := header.Tensors[offsetsTensor]
	if !ok {
		return ds, nil
	}

	if ds.width, err = strconv.Atoi(header.Metadata[widthKey]); err != nil || ds.width <= 0 {
		return nil, fmt.Errorf("%w: invalid %s metadata %q", ErrFormat, widthKey, header.Metadata[widthKey])
	}
	if offsetsInfo.DType != "I64" || !slices.Equal(offsetsInfo.Shape, []int{images.Shape[0] + 1}) {
		return nil, fmt.Errorf("%w: %s must be I64 of shape [%d]", ErrFormat, offsetsTensor, images.Shape[0]+1)
	}
	if ds.offsets, err = ds.readOffsets(offsetsInfo); err != nil {
		return nil, err
	}

	total := ds.offsets[len(ds.offsets)-1]
	if boxes, ok := header.Tensors[boxesTensor]; ok {
		if boxes.DType != "F32" || len(boxes.Shape) != 2 || int64(boxes.Shape[0]) != total || boxes.Shape[1] != ds.width {
			return nil, fmt.Errorf("%w: %s must be F32 of shape [%d %d]", ErrFormat, boxesTensor, total, ds.width)
		}
		if err := ds.checkSpan(boxesTensor, boxes, 4); err != nil {
			return nil, err
		}
		ds.boxes = &boxes
	} else if total != 0 {
		return nil, fmt.Errorf("%w: %s index %d rows but %q is missing", ErrFormat, offsetsTensor, total, boxesTensor)
	}
	return ds, nil
}

// checkSpan verifies that info's data offsets hold exactly its shape times
// elemSize bytes and lie inside the payload.
func (ds *SafetensorsDataset) checkSpan(name string, info tensorInfo, elemSize int64) error {
	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if start < 0 || end < start || end > ds.payload {
		return fmt.Errorf("%w: tensor %s spans [%d, %d] outside a %d byte payload",
			ErrFormat, name, start, end, ds.payload)
	}

	want := elemSize
	for _, d := range info.Shape {
		if d <= 0 {
			return fmt.Errorf("%w: tensor %s has invalid shape %v", ErrFormat, name, info.Shape)
		}
		if want > ds.payload/int64(d) {
			return fmt.Errorf("%w: tensor %s of shape %v exceeds a %d byte payload",
				ErrFormat, name, info.Shape, ds.payload)
		}
		want *= int64(d)
	}
	if end-start != want {
		return fmt.Errorf("%w: tensor %s spans [%d, %d], want %d bytes", ErrFormat, name, start, end, want)
	}
	return nil
}

func (ds *SafetensorsDataset) readOffsets(info tensorInfo) ([]int64, error) {
	if err := ds.checkSpan(offsetsTensor, info, 8); err != nil {
		return nil, err
	}
	n := info.Shape[0]
	buf := make([]byte, n*8)
	if _, err := ds.file.ReadAt(buf, ds.dataOffset+info.DataOffsets[0]); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", offsetsTensor, err)
	}

	offsets := make([]int64, n)
	for i := range offsets {
		offsets[i] = int64(binary.LittleEndian.Uint64(buf[i*8:])) //nolint:gosec // G115: validated below.
		if offsets[i] < 0 || (i > 0 && offsets[i] < offsets[i-1]) {
			return nil, fmt.Errorf("%w: %s not monotonic at %d", ErrFormat, offsetsTensor, i)
		}
	}
	if offsets[0] != 0 {
		return nil, fmt.Errorf("%w: %s must start at 0", ErrFormat, offsetsTensor)
	}
	return offsets, nil
}

// Len returns the number of records.
func (ds *SafetensorsDataset) Len() int {
	return ds.images.Shape[0]
}

// LabelWidth returns the width of a label row, or 0 for unlabeled files.
func (ds *SafetensorsDataset) LabelWidth() int {
	return ds.width
}

// Get returns record i: Tuple{image Array, Labels} for labeled files,
// a bare Array otherwise.
func (ds *SafetensorsDataset) Get(i int) (Field, error) {
	if i < 0 || i >= ds.Len() {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, ds.Len())
	}

	image, err := tensor.NewRaw(ds.images.Shape[1:], ds.imageType, tensor.CPU)
	if err != nil {
		return nil, err
	}
	if err := ds.readAt(image.Data(), ds.images.DataOffsets[0]+int64(i)*ds.recordLen); err != nil {
		return nil, fmt.Errorf("image %d: %w", i, err)
	}
	if ds.offsets == nil {
		return Array{Raw: image}, nil
	}

	start, end := ds.offsets[i], ds.offsets[i+1]
	labels := Labels{Width: ds.width, Rows: make([][]float32, end-start)}
	if end > start {
		rowBytes := int64(ds.width) * 4
		buf := make([]byte, (end-start)*rowBytes)
		if err := ds.readAt(buf, ds.boxes.DataOffsets[0]+start*rowBytes); err != nil {
			return nil, fmt.Errorf("boxes %d: %w", i, err)
		}
		for r := range labels.Rows {
			row := make([]float32, ds.width)
			for c := range row {
				row[c] = math.Float32frombits(binary.LittleEndian.Uint32(buf[(r*ds.width+c)*4:]))
			}
			labels.Rows[r] = row
		}
	}
	return Tuple{Array{Raw: image}, labels}, nil
}

func (ds *SafetensorsDataset) readAt(dst []byte, offset int64) error {
	if _, err := ds.file.ReadAt(dst, ds.dataOffset+offset); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: file truncated: %v", ErrFormat, err)
		}
		return fmt.Errorf("failed to read tensor data: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (ds *SafetensorsDataset) Close() error {
	if ds.file != nil {
		return ds.file.Close()
	}
	return nil
}

// WriteSafetensors stores images (leading axis = record) and, when labels is
// non-nil, one Labels per record of the given width.
func WriteSafetensors(path string, images Array, labels []Labels, width int) (err error) {
	if images.Raw == nil || images.Shape().Rank() == 0 {
		return fmt.Errorf("%w: images need a leading record axis", ErrInvalidConfig)
	}
	if _, ok := dtypeNames[images.Raw.DType()]; !ok {
		return fmt.Errorf("%w: unsupported image dtype %s", ErrInvalidConfig, images.Raw.DType())
	}
	n := images.Shape()[0]

	chunks := []chunk{{
		name:  imagesTensor,
		info:  tensorInfo{DType: dtypeNames[images.Raw.DType()], Shape: images.Shape()},
		bytes: images.Raw.Data(),
	}}

	metadata := map[string]string{}
	if labels != nil {
		if len(labels) != n {
			return fmt.Errorf("%w: %d label records for %d images", ErrInvalidConfig, len(labels), n)
		}
		offsets := make([]byte, 8, (n+1)*8)
		var boxes []byte
		var total uint64
		for i, l := range labels {
			if l.Width != width {
				return fmt.Errorf("%w: labels %d have width %d, want %d", ErrInvalidConfig, i, l.Width, width)
			}
			if err := l.validate(); err != nil {
				return fmt.Errorf("labels %d: %w", i, err)
			}
			for _, row := range l.Rows {
				for _, v := range row {
					boxes = binary.LittleEndian.AppendUint32(boxes, math.Float32bits(v))
				}
			}
			total += uint64(len(l.Rows))
			offsets = binary.LittleEndian.AppendUint64(offsets, total)
		}
		metadata[widthKey] = strconv.Itoa(width)
		chunks = append(chunks, chunk{
			name:  offsetsTensor,
			info:  tensorInfo{DType: "I64", Shape: []int{n + 1}},
			bytes: offsets,
		})
		if total > 0 {
			chunks = append(chunks, chunk{
				name:  boxesTensor,
				info:  tensorInfo{DType: "F32", Shape: []int{int(total), width}}, //nolint:gosec // G115: row count.
				bytes: boxes,
			})
		}
	}

	header := map[string]any{}
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}
	var offset int64
	for _, c := range chunks {
		c.info.DataOffsets = [2]int64{offset, offset + int64(len(c.bytes))}
		header[c.name] = c.info
		offset += int64(len(c.bytes))
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	//nolint:gosec // G304: dataset path is user input.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range chunks {
		if _, err := file.Write(c.bytes); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", c.name, err)
		}
	}
	return nil
}
