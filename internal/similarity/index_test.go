package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akenfack/creditrisk/internal/dataset"
)

// newTestStore lays four clients on two features with very different
// scales: the first feature spans 0..1000, the second 0..1.
func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	frame, err := dataset.NewFrame(
		[]string{"SK_ID_CURR", "AMT_CREDIT", "AMT_ANNUITY"},
		[][]float64{
			{100, 0, 0},
			{101, 1000, 0},
			{102, 0, 1},
			{103, 1000, 1},
		},
	)
	require.NoError(t, err)

	store, err := dataset.NewStore(frame)
	require.NoError(t, err)
	return store
}

func TestNearestRows_SelfFirst(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndex(store, false)

	query, ok := store.FeatureVector(102)
	require.True(t, ok)

	rows := ix.NearestRows(query, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0], "the query client is its own nearest neighbor")
}

func TestNearestRows_RawScaleOrder(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndex(store, false)

	// Unnormalized distance is dominated by the large-scale feature, so
	// from client 100 the small-feature neighbor comes before the far one.
	query, _ := store.FeatureVector(100)
	rows := ix.NearestRows(query, 4)
	assert.Equal(t, []int{0, 2, 1, 3}, rows)
}

func TestNearestRows_NormalizedOrder(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndex(store, true)

	// After z-scoring both features weigh equally; rows 1 and 2 tie and
	// keep row order.
	query, _ := store.FeatureVector(100)
	rows := ix.NearestRows(query, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, rows)
}

func TestNearestRows_Clamped(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndex(store, false)

	query, _ := store.FeatureVector(100)
	assert.Len(t, ix.NearestRows(query, 50), store.NumClients())
	assert.Nil(t, ix.NearestRows(query, 0))
}

func TestNearestRows_Deterministic(t *testing.T) {
	store := newTestStore(t)
	ix := NewIndex(store, false)

	query, _ := store.FeatureVector(103)
	first := ix.NearestRows(query, 3)
	second := ix.NearestRows(query, 3)
	assert.Equal(t, first, second)
}
