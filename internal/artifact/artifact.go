// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact exposes the precomputed, immutable retrieval artifacts:
// the paper table, the lexical index, the dense vector table, and the
// citation-authority vector. Artifacts are materialized lazily on first
// use and live for the process lifetime; nothing here mutates them after
// load.
//
// See docs/ARCHITECTURE § Artifact Store.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Artifact file names inside the data directory.
const (
	PapersFile      = "papers.db"
	LexicalFile     = "lexical.json"
	VectorsFile     = "vectors.f16.bin"
	VectorsMetaFile = "vectors.meta.json"
	AuthorityFile   = "authority.json"
)

// Artifact names used in readiness reports and unavailability errors.
// NameEmbedding is not a file in the bundle; it names the external
// embedding capability in unavailability errors.
const (
	NamePapers    = "papers"
	NameLexical   = "lexical"
	NameVectors   = "vectors"
	NameAuthority = "authority"
	NameEmbedding = "embedding"
)

// ErrUnavailable marks a required artifact that could not be loaded.
// Callers distinguish the missing capability via UnavailableError.
var ErrUnavailable = errors.New("artifact unavailable")

// UnavailableError reports which artifact failed to load. It wraps
// ErrUnavailable so callers can classify with errors.Is.
type UnavailableError struct {
	Artifact string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("artifact %s unavailable: %v", e.Artifact, e.Err)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func unavailable(name string, err error) error {
	return &UnavailableError{Artifact: name, Err: err}
}

// Status describes one artifact for health reporting.
type Status struct {
	// Present reports whether the backing file exists on disk.
	Present bool `json:"present" yaml:"present"`

	// Loaded reports whether the artifact has been materialized.
	Loaded bool `json:"loaded" yaml:"loaded"`
}

// Store owns the four artifact views. Loads are guarded per artifact with
// double-checked locking so a failed load (file not yet fetched) is
// retried on the next access rather than cached forever.
type Store struct {
	dataDir string

	mu        sync.RWMutex
	papers    *paperTable
	lexical   *LexicalIndex
	vectors   *VectorTable
	authority []float64
}

// Open prepares a store rooted at dataDir. No artifact is touched until
// first use.
func Open(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Close releases the paper table connection and unmaps the vector table.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.papers != nil {
		errs = append(errs, s.papers.close())
		s.papers = nil
	}
	if s.vectors != nil {
		errs = append(errs, s.vectors.close())
		s.vectors = nil
	}
	s.lexical = nil
	s.authority = nil
	return errors.Join(errs...)
}

// Status reports presence and load state for every artifact.
func (s *Store) Status() map[string]Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(s.dataDir, name))
		return err == nil
	}

	return map[string]Status{
		NamePapers:    {Present: exists(PapersFile), Loaded: s.papers != nil},
		NameLexical:   {Present: exists(LexicalFile), Loaded: s.lexical != nil},
		NameVectors:   {Present: exists(VectorsFile) && exists(VectorsMetaFile), Loaded: s.vectors != nil},
		NameAuthority: {Present: exists(AuthorityFile), Loaded: s.authority != nil},
	}
}

// Ready reports whether every artifact file is present.
func (s *Store) Ready() bool {
	for _, st := range s.Status() {
		if !st.Present {
			return false
		}
	}
	return true
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dataDir, name)
}
