package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fincast/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "fincast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample() model.State {
	return model.State{
		Year:           2025,
		InitialBalance: decimal.RequireFromString("1500.25"),
		MonthlyRules: []model.MonthlyRule{
			{Title: "rent", Amount: decimal.RequireFromString("-700"), DayOfMonth: 1, ActiveFrom: model.NewDate(2025, time.January, 1)},
			{Title: "salary", Amount: decimal.RequireFromString("2100.10"), DayOfMonth: 31, ActiveFrom: model.NewDate(2024, time.September, 1)},
		},
		PlannedEvents: []model.PlannedEvent{
			{Title: "holiday", Amount: decimal.RequireFromString("-950"), Date: model.NewDate(2025, time.August, 3), Description: "two weeks"},
		},
		RealMovements: []model.RealMovement{
			{Title: "bonus", Amount: decimal.RequireFromString("200"), Date: model.NewDate(2025, time.January, 10), Note: "q4"},
		},
	}
}

func TestLoad_EmptyUsesDefaults(t *testing.T) {
	s := openTemp(t)

	got, err := s.Load(model.State{Year: 2031, InitialBalance: decimal.NewFromInt(12)})
	require.NoError(t, err)

	assert.Equal(t, 2031, got.Year)
	assert.True(t, got.InitialBalance.Equal(decimal.NewFromInt(12)))
	assert.NotNil(t, got.MonthlyRules)
	assert.Empty(t, got.MonthlyRules)
	assert.Empty(t, got.PlannedEvents)
	assert.Empty(t, got.RealMovements)

	rev, err := s.Revision()
	require.NoError(t, err)
	assert.Zero(t, rev)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openTemp(t)
	want := sample()

	require.NoError(t, s.Save(want))

	got, err := s.Load(model.State{Year: 1999})
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "loaded %+v", got)
	assert.Equal(t, "salary", got.MonthlyRules[1].Title)
}

func TestSave_OverwritesAndBumpsRevision(t *testing.T) {
	s := openTemp(t)
	st := sample()
	require.NoError(t, s.Save(st))
	require.NoError(t, s.Save(st))

	rev, err := s.Revision()
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)

	require.NoError(t, st.RemoveRule(0))
	st.PlannedEvents = nil
	require.NoError(t, st.SetYear(2026))
	require.NoError(t, s.Save(st))

	got, err := s.Load(model.State{})
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year)
	require.Len(t, got.MonthlyRules, 1)
	assert.Equal(t, "salary", got.MonthlyRules[0].Title)
	assert.Empty(t, got.PlannedEvents)
	assert.Len(t, got.RealMovements, 1)

	rev, err = s.Revision()
	require.NoError(t, err)
	assert.Equal(t, int64(3), rev)

	at, err := s.SavedAt()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), at, time.Minute)
}

func TestReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fincast.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(sample()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Load(model.State{})
	require.NoError(t, err)
	assert.True(t, sample().Equal(got))
	assert.Equal(t, path, s.Path())
}
