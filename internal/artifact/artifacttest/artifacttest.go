// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifacttest writes small, fully consistent artifact bundles
// into temporary directories for tests. The offline pipeline that builds
// the real bundle lives elsewhere; this package reproduces only its file
// formats.
package artifacttest

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// Doc is one fixture paper with its derived artifacts.
type Doc struct {
	Paper     types.Paper
	Vector    []float32
	Authority float64
}

// WriteBundle writes a complete, mutually consistent artifact bundle for
// the given docs into dir. Paper ids are assigned by position.
func WriteBundle(t testing.TB, dir string, docs []Doc) {
	t.Helper()
	for i := range docs {
		docs[i].Paper.ID = i
	}
	WritePapers(t, dir, docs)
	WriteLexical(t, dir, docs)
	WriteVectors(t, dir, docs)
	WriteAuthority(t, dir, docs)
}

// WritePapers creates the SQLite paper table.
func WritePapers(t testing.TB, dir string, docs []Doc) {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(dir, artifact.PapersFile))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE papers (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		abstract TEXT NOT NULL,
		link TEXT
	)`)
	require.NoError(t, err)

	for i, d := range docs {
		_, err = db.Exec(`INSERT INTO papers (id, title, abstract, link) VALUES (?, ?, ?, ?)`,
			i, d.Paper.Title, d.Paper.Abstract, d.Paper.Link)
		require.NoError(t, err)
	}
}

// WriteLexical builds a BM25 index over title+abstract and writes it in
// the lexical.json layout.
func WriteLexical(t testing.TB, dir string, docs []Doc) {
	t.Helper()

	const k1, b = 1.5, 0.75

	type jsonTerm struct {
		IDF      float64  `json:"idf"`
		Postings [][2]int `json:"postings"`
	}

	docLengths := make([]int, len(docs))
	termFreqs := make([]map[string]int, len(docs))
	docFreq := map[string]int{}

	for i, d := range docs {
		terms := artifact.Tokenize(d.Paper.Title + " " + d.Paper.Abstract)
		docLengths[i] = len(terms)
		tf := map[string]int{}
		for _, term := range terms {
			tf[term]++
		}
		termFreqs[i] = tf
		for term := range tf {
			docFreq[term]++
		}
	}

	var total int
	for _, dl := range docLengths {
		total += dl
	}
	avgdl := float64(total) / float64(len(docs))

	terms := map[string]jsonTerm{}
	for term, df := range docFreq {
		n := float64(len(docs))
		entry := jsonTerm{
			IDF: math.Log(1.0 + (n-float64(df)+0.5)/(float64(df)+0.5)),
		}
		for i, tf := range termFreqs {
			if freq, ok := tf[term]; ok {
				entry.Postings = append(entry.Postings, [2]int{i, freq})
			}
		}
		terms[term] = entry
	}

	index := map[string]any{
		"k1":          k1,
		"b":           b,
		"avgdl":       avgdl,
		"doc_lengths": docLengths,
		"terms":       terms,
	}
	data, err := json.Marshal(index)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.LexicalFile), data, 0o644))
}

// WriteVectors writes the float16 vector table and its metadata sidecar.
// Every doc must carry a vector of the same length.
func WriteVectors(t testing.TB, dir string, docs []Doc) {
	t.Helper()
	require.NotEmpty(t, docs)

	dims := len(docs[0].Vector)
	buf := make([]byte, 0, len(docs)*dims*2)
	for _, d := range docs {
		require.Len(t, d.Vector, dims, "all vectors must share one length")
		for _, v := range d.Vector {
			buf = binary.LittleEndian.AppendUint16(buf, float16.Fromfloat32(v).Bits())
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.VectorsFile), buf, 0o644))

	meta, err := json.Marshal(map[string]any{
		"rows":  len(docs),
		"dims":  dims,
		"dtype": "float16",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.VectorsMetaFile), meta, 0o644))
}

// WriteAuthority writes the citation-authority vector.
func WriteAuthority(t testing.TB, dir string, docs []Doc) {
	t.Helper()

	scores := make([]float64, len(docs))
	for i, d := range docs {
		scores[i] = d.Authority
	}
	data, err := json.Marshal(map[string]any{
		"damping": 0.85,
		"scores":  scores,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.AuthorityFile), data, 0o644))
}

// Corpus returns a small deterministic fixture corpus with clearly
// separated topics. Vectors are unit length in a 4-dimensional space.
func Corpus() []Doc {
	return []Doc{
		{
			Paper: types.Paper{
				Title:    "Attention Mechanisms for Neural Machine Translation",
				Abstract: "We study attention in sequence models and show attention alone suffices for neural translation of text.",
				Link:     "https://arxiv.org/abs/1706.03762",
			},
			Vector:    []float32{1, 0, 0, 0},
			Authority: 0.45,
		},
		{
			Paper: types.Paper{
				Title:    "Pretraining Deep Bidirectional Transformers",
				Abstract: "Bidirectional pretraining of transformers yields strong transfer to downstream language understanding tasks.",
				Link:     "https://arxiv.org/abs/1810.04805",
			},
			Vector:    []float32{0.8, 0.6, 0, 0},
			Authority: 0.30,
		},
		{
			Paper: types.Paper{
				Title:    "Spectral Methods for Graph Clustering",
				Abstract: "Eigenvector techniques partition citation graph data into communities of related papers.",
				Link:     "",
			},
			Vector:    []float32{0, 1, 0, 0},
			Authority: 0.05,
		},
		{
			Paper: types.Paper{
				Title:    "Ranking Web Pages by Link Structure",
				Abstract: "A random surfer model assigns importance to pages from the graph structure of the web.",
				Link:     "https://example.org/pagerank",
			},
			Vector:    []float32{0, 0, 1, 0},
			Authority: 0.50,
		},
		{
			Paper: types.Paper{
				Title:    "Error Correction in Superconducting Qubits",
				Abstract: "Surface codes protect quantum information against decoherence in superconducting hardware.",
				Link:     "https://example.org/qec",
			},
			Vector:    []float32{0, 0, 0, 1},
			Authority: 0.02,
		},
	}
}
