// Package store provides the backing stores for retrieval: an HNSW
// vector index over embedded code units and a SQLite graph database
// holding the call graph and file dependency graph.
package store

import (
	"fmt"
)

// VectorResult is a single nearest-neighbor hit from the vector index.
type VectorResult struct {
	// ID is the code unit identifier ("path#symbol", or just "path").
	ID string

	// Distance is the raw distance in the index metric.
	Distance float32

	// Score is the similarity score derived from Distance (0-1).
	Score float32
}

// VectorStoreConfig configures the HNSW vector index.
type VectorStoreConfig struct {
	// Dimensions is the embedding dimension.
	Dimensions int

	// Metric is the distance metric: "cos" (default) or "l2".
	Metric string

	// M is the HNSW max connections per node (default: 16).
	M int

	// EfSearch is the HNSW search expansion factor (default: 20).
	EfSearch int
}

// ErrDimensionMismatch is returned when a vector's dimension does not
// match the index dimension.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: index has %d, got %d", e.Expected, e.Got)
}

// Function is a function node in the code graph.
type Function struct {
	Name      string
	FilePath  string
	StartLine int
	EndLine   int
	Snippet   string
}

// FunctionRelation carries a function together with the relation that
// surfaced it relative to a query function.
type FunctionRelation struct {
	Function *Function

	// Relation is "definition", "caller" or "callee".
	Relation string

	// Depth is the call-graph distance from the query function (0 for
	// the definition itself).
	Depth int
}

// FileDependency is one edge of the file dependency graph.
type FileDependency struct {
	// Path is the related file.
	Path string

	// Direction is "includes" (Path is included by the query file) or
	// "included_by" (Path includes the query file).
	Direction string
}

// GraphStats summarizes the graph store contents.
type GraphStats struct {
	Functions int
	Calls     int
	Includes  int
}
