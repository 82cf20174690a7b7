package store

import (
	"testing"
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(n int) []domain.ProjectionRecord {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.ProjectionRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, domain.ProjectionRecord{
			MonthIndex:  i,
			Date:        start.AddDate(0, i, 0),
			TotalAssets: decimal.NewFromInt(int64(10000 + i*100)),
			NetWorth:    decimal.NewFromInt(int64(8000 + i*100)),
			NetCashFlow: decimal.NewFromFloat(123.45),
			IncomeByCategory: map[string]decimal.Decimal{
				"salary": decimal.NewFromInt(6000),
			},
		})
	}
	return records
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestStore(t)
	records := sampleRecords(6)

	require.NoError(t, s.ReplaceRecords("base", records))

	got, err := s.Records("base")
	require.NoError(t, err)
	require.Len(t, got, 6)
	for i, rec := range got {
		assert.Equal(t, i, rec.MonthIndex)
		assert.True(t, rec.TotalAssets.Equal(records[i].TotalAssets))
		assert.True(t, rec.NetCashFlow.Equal(records[i].NetCashFlow))
		assert.True(t, rec.IncomeByCategory["salary"].Equal(decimal.NewFromInt(6000)))
		assert.True(t, rec.Date.Equal(records[i].Date))
	}
}

func TestSQLiteReplaceIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.ReplaceRecords("base", sampleRecords(12)))
	// A re-run with a shorter horizon fully replaces the prior set, leaving
	// no stale tail.
	require.NoError(t, s.ReplaceRecords("base", sampleRecords(6)))

	got, err := s.Records("base")
	require.NoError(t, err)
	assert.Len(t, got, 6)
}

func TestSQLiteScenariosIsolated(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.ReplaceRecords("base", sampleRecords(3)))
	require.NoError(t, s.ReplaceRecords("what-if", sampleRecords(9)))

	base, err := s.Records("base")
	require.NoError(t, err)
	assert.Len(t, base, 3)

	whatIf, err := s.Records("what-if")
	require.NoError(t, err)
	assert.Len(t, whatIf, 9)

	empty, err := s.Records("missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	records := sampleRecords(4)

	require.NoError(t, m.ReplaceRecords("base", records))
	got, err := m.Records("base")
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// The store holds its own copy; mutating the returned slice does not
	// leak back in.
	got[0].MonthIndex = 99
	again, err := m.Records("base")
	require.NoError(t, err)
	assert.Equal(t, 0, again[0].MonthIndex)

	require.NoError(t, m.ReplaceRecords("base", sampleRecords(1)))
	final, err := m.Records("base")
	require.NoError(t, err)
	assert.Len(t, final, 1)
}
