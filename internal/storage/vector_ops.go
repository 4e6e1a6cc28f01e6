package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// searchNearest performs a nearest-neighbour search by L2 distance
func searchNearest(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]VectorHit, error) {
	// Use optimized SQL-based search when sqlite-vec is available
	if VectorExtensionAvailable {
		return searchNearestOptimized(ctx, db, queryVector, limit)
	}
	// Fall back to Go-based computation for purego builds
	return searchNearestFallback(ctx, db, queryVector, limit)
}

// searchNearestOptimized lets sqlite-vec compute distances in the database
func searchNearestOptimized(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]VectorHit, error) {
	query := `
		SELECT project_id, vec_distance_l2(vector, ?) AS distance
		FROM project_embeddings
		WHERE dimension = ?
		ORDER BY distance ASC, project_id ASC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, serializeVector(queryVector), len(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := make([]VectorHit, 0, limit)
	for rows.Next() {
		var hit VectorHit
		if err := rows.Scan(&hit.ProjectID, &hit.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// searchNearestFallback scans every stored vector and ranks in Go.
// This is used when sqlite-vec extension is not available (purego builds)
func searchNearestFallback(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]VectorHit, error) {
	rows, err := db.QueryContext(ctx, `SELECT project_id, vector FROM project_embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates, err := computeDistances(rows, queryVector)
	if err != nil {
		return nil, err
	}

	sortCandidates(candidates)

	if limit > len(candidates) {
		limit = len(candidates)
	}
	hits := make([]VectorHit, limit)
	for i := 0; i < limit; i++ {
		hits[i] = VectorHit{ProjectID: candidates[i].projectID, Distance: candidates[i].distance}
	}
	return hits, nil
}

// computeDistances deserializes each row and measures it against the query
func computeDistances(rows *sql.Rows, queryVector []float32) ([]candidate, error) {
	candidates := make([]candidate, 0, 256)

	for rows.Next() {
		var projectID int64
		var vectorBlob []byte
		if err := rows.Scan(&projectID, &vectorBlob); err != nil {
			return nil, err
		}

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		candidates = append(candidates, candidate{projectID: projectID, distance: l2Distance(queryVector, vector)})
	}

	return candidates, rows.Err()
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// l2Distance computes the euclidean distance between two vectors
func l2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// candidate represents a project with its distance to the query
type candidate struct {
	projectID int64
	distance  float64
}

// sortCandidates orders by ascending distance, ties by id for stable output
func sortCandidates(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].projectID < candidates[j].projectID
	})
}

// SerializeVector is an exported helper for testing
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// L2Distance is an exported helper for testing
func L2Distance(a, b []float32) float64 {
	return l2Distance(a, b)
}
