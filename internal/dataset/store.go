package dataset

import (
	"fmt"
	"math/rand"
)

// Columns carried by the snapshot that are not scoring features:
// the pandas row index, the client identifier, the partition marker and the
// ground-truth label.
var IgnoredColumns = []string{"Unnamed: 0", "SK_ID_CURR", "INDEX", "TARGET"}

// IDColumn is the client identifier column of the snapshot.
const IDColumn = "SK_ID_CURR"

// ClientRecord is one fully-imputed row of the feature store.
type ClientRecord struct {
	ID     int                `json:"id"`
	Values map[string]float64 `json:"values"`
}

// Store is the read-only feature store: the imputed scoring frame plus the
// client index and the ordered feature catalog. Built once at startup and
// never mutated afterwards, so it is safe for concurrent reads.
type Store struct {
	frame      *Frame
	ids        []int
	rowByID    map[int]int
	catalog    []string
	catalogIdx []int
}

// NewStore indexes an imputed frame into a feature store. The frame must
// carry the client identifier column; the catalog is every column except the
// ignored identifier/label columns, preserving column order.
func NewStore(frame *Frame) (*Store, error) {
	idCol, ok := frame.Column(IDColumn)
	if !ok {
		return nil, fmt.Errorf("snapshot is missing the %s column", IDColumn)
	}

	ids := make([]int, len(idCol))
	rowByID := make(map[int]int, len(idCol))
	for i, v := range idCol {
		id := int(v)
		if _, dup := rowByID[id]; dup {
			return nil, fmt.Errorf("duplicate client id %d in snapshot", id)
		}
		ids[i] = id
		rowByID[id] = i
	}

	ignored := make(map[string]bool, len(IgnoredColumns))
	for _, name := range IgnoredColumns {
		ignored[name] = true
	}

	var catalog []string
	var catalogIdx []int
	for i, name := range frame.Columns() {
		if ignored[name] {
			continue
		}
		catalog = append(catalog, name)
		catalogIdx = append(catalogIdx, i)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("snapshot has no feature columns")
	}

	return &Store{
		frame:      frame,
		ids:        ids,
		rowByID:    rowByID,
		catalog:    catalog,
		catalogIdx: catalogIdx,
	}, nil
}

// Catalog returns the ordered feature names eligible for scoring.
func (s *Store) Catalog() []string {
	return s.catalog
}

// ClientIDs returns all client identifiers in row order.
func (s *Store) ClientIDs() []int {
	return s.ids
}

// NumClients returns the population size.
func (s *Store) NumClients() int {
	return len(s.ids)
}

// HasClient reports whether the client exists in the store.
func (s *Store) HasClient(clientID int) bool {
	_, ok := s.rowByID[clientID]
	return ok
}

// FeatureVector returns the client's features projected onto the catalog,
// in catalog order.
func (s *Store) FeatureVector(clientID int) ([]float64, bool) {
	row, ok := s.rowByID[clientID]
	if !ok {
		return nil, false
	}
	return s.vectorAt(row), true
}

// VectorAt returns the catalog-projected feature vector of a row position.
func (s *Store) VectorAt(row int) []float64 {
	return s.vectorAt(row)
}

func (s *Store) vectorAt(row int) []float64 {
	raw := s.frame.Row(row)
	vec := make([]float64, len(s.catalogIdx))
	for i, idx := range s.catalogIdx {
		vec[i] = raw[idx]
	}
	return vec
}

// Record returns the client's full row, every snapshot column included.
func (s *Store) Record(clientID int) (ClientRecord, bool) {
	row, ok := s.rowByID[clientID]
	if !ok {
		return ClientRecord{}, false
	}
	return s.recordAt(row), true
}

// RecordAt returns the full row at a position.
func (s *Store) RecordAt(row int) ClientRecord {
	return s.recordAt(row)
}

func (s *Store) recordAt(row int) ClientRecord {
	raw := s.frame.Row(row)
	values := make(map[string]float64, len(raw))
	for i, name := range s.frame.Columns() {
		values[name] = raw[i]
	}
	return ClientRecord{ID: s.ids[row], Values: values}
}

// SampleRows draws n distinct row positions with a fixed seed. The draw is a
// pure function of (n, seed, population size); n is clamped to the
// population.
func (s *Store) SampleRows(n int, seed int64) []int {
	if n > len(s.ids) {
		n = len(s.ids)
	}
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	return rng.Perm(len(s.ids))[:n]
}

// SampleRecords draws n client records with a fixed seed.
func (s *Store) SampleRecords(n int, seed int64) []ClientRecord {
	rows := s.SampleRows(n, seed)
	records := make([]ClientRecord, len(rows))
	for i, row := range rows {
		records[i] = s.recordAt(row)
	}
	return records
}

// SampleFraction draws a fraction of a frame's rows with a fixed seed,
// used to freeze the drift snapshots at startup.
func SampleFraction(f *Frame, fraction float64, seed int64) *Frame {
	n := int(float64(f.NumRows()) * fraction)
	if n >= f.NumRows() {
		return f
	}
	if n <= 0 {
		n = 1
	}
	rng := rand.New(rand.NewSource(seed))
	return f.Select(rng.Perm(f.NumRows())[:n])
}
