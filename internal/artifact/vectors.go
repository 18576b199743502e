// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/x448/float16"
	"golang.org/x/sys/unix"
)

// vectorMeta is the JSON sidecar describing the raw vector file.
type vectorMeta struct {
	Rows  int    `json:"rows"`
	Dims  int    `json:"dims"`
	DType string `json:"dtype"`
}

// VectorTable is a memory-mapped table of float16 embedding vectors, one
// fixed-length row per paper. Rows are decoded on demand; the table itself
// is never copied into the heap.
type VectorTable struct {
	data []byte
	rows int
	dims int
}

const bytesPerValue = 2 // float16

func openVectorTable(binPath, metaPath string) (*VectorTable, error) {
	metaRaw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading vector metadata: %w", err)
	}

	var meta vectorMeta
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("parsing vector metadata: %w", err)
	}
	if meta.DType != "float16" {
		return nil, fmt.Errorf("unsupported vector dtype %q", meta.DType)
	}
	if meta.Rows <= 0 || meta.Dims <= 0 {
		return nil, fmt.Errorf("invalid vector shape %dx%d", meta.Rows, meta.Dims)
	}

	f, err := os.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("opening vector table: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat vector table: %w", err)
	}

	want := int64(meta.Rows) * int64(meta.Dims) * bytesPerValue
	if info.Size() != want {
		return nil, fmt.Errorf("vector table is %d bytes, want %d for shape %dx%d",
			info.Size(), want, meta.Rows, meta.Dims)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap vector table: %w", err)
	}

	return &VectorTable{data: data, rows: meta.Rows, dims: meta.Dims}, nil
}

func (v *VectorTable) close() error {
	if v.data == nil {
		return nil
	}
	err := unix.Munmap(v.data)
	v.data = nil
	return err
}

// Rows returns the number of vectors.
func (v *VectorTable) Rows() int { return v.rows }

// Dims returns the vector length.
func (v *VectorTable) Dims() int { return v.dims }

// Row decodes the vector for one paper id into float32.
func (v *VectorTable) Row(id int) ([]float32, error) {
	if id < 0 || id >= v.rows {
		return nil, fmt.Errorf("vector row %d out of range [0,%d)", id, v.rows)
	}
	out := make([]float32, v.dims)
	base := id * v.dims * bytesPerValue
	for i := 0; i < v.dims; i++ {
		bits := binary.LittleEndian.Uint16(v.data[base+i*bytesPerValue:])
		out[i] = float16.Frombits(bits).Float32()
	}
	return out, nil
}

// loadVectors materializes the vector table on first use.
func (s *Store) loadVectors() (*VectorTable, error) {
	s.mu.RLock()
	v := s.vectors
	s.mu.RUnlock()
	if v != nil {
		return v, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectors != nil {
		return s.vectors, nil
	}

	v, err := openVectorTable(s.path(VectorsFile), s.path(VectorsMetaFile))
	if err != nil {
		return nil, unavailable(NameVectors, err)
	}
	s.vectors = v
	return v, nil
}

// VectorRow returns the embedding for one paper id.
func (s *Store) VectorRow(id int) ([]float32, error) {
	v, err := s.loadVectors()
	if err != nil {
		return nil, err
	}
	return v.Row(id)
}

// VectorDims returns the fixed embedding length.
func (s *Store) VectorDims() (int, error) {
	v, err := s.loadVectors()
	if err != nil {
		return 0, err
	}
	return v.dims, nil
}
