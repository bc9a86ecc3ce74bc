package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	frame, err := NewFrame(
		[]string{"Unnamed: 0", "SK_ID_CURR", "INDEX", "TARGET", "AMT_CREDIT", "AMT_ANNUITY"},
		[][]float64{
			{0, 100, 0, 0, 1000, 50},
			{1, 101, 1, 1, 2000, 60},
			{2, 102, 2, 0, 3000, 70},
			{3, 103, 3, 0, 4000, 80},
		},
	)
	require.NoError(t, err)

	store, err := NewStore(frame)
	require.NoError(t, err)
	return store
}

func TestNewStore_CatalogExcludesNonFeatures(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, []string{"AMT_CREDIT", "AMT_ANNUITY"}, store.Catalog())
	assert.Equal(t, []int{100, 101, 102, 103}, store.ClientIDs())
	assert.Equal(t, 4, store.NumClients())
}

func TestNewStore_MissingIDColumn(t *testing.T) {
	frame, err := NewFrame([]string{"AMT_CREDIT"}, [][]float64{{1000}})
	require.NoError(t, err)

	_, err = NewStore(frame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), IDColumn)
}

func TestNewStore_DuplicateClientID(t *testing.T) {
	frame, err := NewFrame(
		[]string{"SK_ID_CURR", "AMT_CREDIT"},
		[][]float64{{100, 1000}, {100, 2000}},
	)
	require.NoError(t, err)

	_, err = NewStore(frame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate client id")
}

func TestStore_FeatureVector(t *testing.T) {
	store := newTestStore(t)

	vec, ok := store.FeatureVector(101)
	require.True(t, ok)
	assert.Equal(t, []float64{2000, 60}, vec)

	_, ok = store.FeatureVector(-1)
	assert.False(t, ok)
}

func TestStore_Record(t *testing.T) {
	store := newTestStore(t)

	record, ok := store.Record(102)
	require.True(t, ok)
	assert.Equal(t, 102, record.ID)
	assert.Equal(t, 3000.0, record.Values["AMT_CREDIT"])
	assert.Equal(t, 0.0, record.Values["TARGET"], "records expose every snapshot column")
	assert.True(t, store.HasClient(102))
	assert.False(t, store.HasClient(999))
}

func TestStore_SampleRowsDeterministic(t *testing.T) {
	store := newTestStore(t)

	first := store.SampleRows(3, 42)
	second := store.SampleRows(3, 42)
	assert.Equal(t, first, second, "same size and seed must draw the same rows")
	assert.Len(t, first, 3)

	seen := make(map[int]bool)
	for _, row := range first {
		assert.False(t, seen[row], "sample must not repeat rows")
		seen[row] = true
	}
}

func TestStore_SampleRowsClamped(t *testing.T) {
	store := newTestStore(t)

	assert.Len(t, store.SampleRows(100, 42), store.NumClients())
	assert.Nil(t, store.SampleRows(0, 42))
}

func TestStore_SampleRecords(t *testing.T) {
	store := newTestStore(t)

	records := store.SampleRecords(2, 7)
	require.Len(t, records, 2)
	again := store.SampleRecords(2, 7)
	assert.Equal(t, records, again)
}

func TestSampleFraction(t *testing.T) {
	rows := make([][]float64, 10)
	for i := range rows {
		rows[i] = []float64{float64(i)}
	}
	frame, err := NewFrame([]string{"x"}, rows)
	require.NoError(t, err)

	half := SampleFraction(frame, 0.5, 42)
	assert.Equal(t, 5, half.NumRows())

	again := SampleFraction(frame, 0.5, 42)
	for i := 0; i < half.NumRows(); i++ {
		assert.Equal(t, half.Row(i), again.Row(i))
	}

	full := SampleFraction(frame, 1.0, 42)
	assert.Equal(t, frame.NumRows(), full.NumRows())

	tiny := SampleFraction(frame, 0.001, 42)
	assert.Equal(t, 1, tiny.NumRows(), "a nonzero fraction keeps at least one row")
}
