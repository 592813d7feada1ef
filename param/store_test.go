package param

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefs() []Definition {
	return []Definition{
		{Name: "PumpEnabled", Kind: KindBool, Level: LevelUser, Default: false,
			Description: "irrigation pump master switch"},
		{Name: "SampleInterval", Kind: KindInt, Level: LevelUser, Default: 60,
			Description: "sensor sampling interval, seconds"},
		{Name: "MoistureThreshold", Kind: KindFloat, Level: LevelService, Default: 0.35,
			Description: "soil moisture fraction that triggers watering"},
		{Name: "DeviceName", Kind: KindString, Level: LevelFactory, Default: "plant-01",
			Description: "device identity string"},
	}
}

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()

	s, err := NewStore(testDefs(), opts...)
	require.NoError(t, err)

	return s
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore([]Definition{{Name: "", Kind: KindBool, Default: false}})
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = NewStore([]Definition{
		{Name: "Dup", Kind: KindBool, Default: false},
		{Name: "dup", Kind: KindInt, Default: 1},
	})
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = NewStore([]Definition{{Name: "Bad", Kind: KindInt, Default: "sixty"}})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestStore_DefaultsAndTypedAccess(t *testing.T) {
	s := newTestStore(t)

	enabled, err := s.Bool("PumpEnabled")
	require.NoError(t, err)
	assert.False(t, enabled)

	interval, err := s.Int("SampleInterval")
	require.NoError(t, err)
	assert.Equal(t, int64(60), interval)

	threshold, err := s.Float("MoistureThreshold")
	require.NoError(t, err)
	assert.InDelta(t, 0.35, threshold, 1e-9)

	name, err := s.String("DeviceName")
	require.NoError(t, err)
	assert.Equal(t, "plant-01", name)
}

func TestStore_LookupIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	enabled, err := s.Bool("pumpenabled")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestStore_UnknownParameter(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Bool("Nonexistent")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Set("Nonexistent", "1"), ErrNotFound)
}

func TestStore_KindMismatch(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Int("PumpEnabled")
	require.ErrorIs(t, err, ErrKindMismatch)

	require.ErrorIs(t, s.SetBool("SampleInterval", true), ErrKindMismatch)
}

func TestStore_SetMarksDirty(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.Dirty())

	require.NoError(t, s.SetBool("PumpEnabled", true))
	assert.Equal(t, []string{"PumpEnabled"}, s.Dirty())

	enabled, err := s.Bool("PumpEnabled")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestStore_UnchangedWriteStaysClean(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetInt("SampleInterval", 60))
	assert.Empty(t, s.Dirty())
}

func TestStore_SecureLevelRejection(t *testing.T) {
	s := newTestStore(t) // active level defaults to LevelUser

	// Service- and factory-level parameters refuse user-level writes.
	require.ErrorIs(t, s.SetFloat("MoistureThreshold", 0.5), ErrAccessDenied)
	require.ErrorIs(t, s.SetString("DeviceName", "plant-02"), ErrAccessDenied)

	s.SetSecureLevel(LevelService)
	require.NoError(t, s.SetFloat("MoistureThreshold", 0.5))
	require.ErrorIs(t, s.SetString("DeviceName", "plant-02"), ErrAccessDenied)

	s.SetSecureLevel(LevelFactory)
	require.NoError(t, s.SetString("DeviceName", "plant-02"))
}

func TestStore_SetFromString(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set("PumpEnabled", "true"))
	require.NoError(t, s.Set("SampleInterval", "120"))

	interval, err := s.Int("SampleInterval")
	require.NoError(t, err)
	assert.Equal(t, int64(120), interval)

	err = s.Set("SampleInterval", "not-a-number")
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestStore_Show(t *testing.T) {
	s := newTestStore(t)

	for name, want := range map[string]string{
		"PumpEnabled":       "false",
		"SampleInterval":    "60",
		"MoistureThreshold": "0.35",
		"DeviceName":        "plant-01",
	} {
		got, err := s.Show(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, "parameter %s", name)
	}
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetInt("SampleInterval", 10))
	require.NoError(t, s.Reset("SampleInterval"))

	interval, err := s.Int("SampleInterval")
	require.NoError(t, err)
	assert.Equal(t, int64(60), interval)
}

func TestStore_List(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetBool("PumpEnabled", true))

	list := s.List()
	require.Len(t, list, 4)

	// Sorted by name.
	assert.Equal(t, "DeviceName", list[0].Name)
	assert.Equal(t, "MoistureThreshold", list[1].Name)
	assert.Equal(t, "PumpEnabled", list[2].Name)
	assert.Equal(t, "SampleInterval", list[3].Name)

	pump := list[2]
	assert.Equal(t, "true", pump.Value)
	assert.True(t, pump.Dirty)
	assert.False(t, pump.Default)

	interval := list[3]
	assert.False(t, interval.Dirty)
	assert.True(t, interval.Default)
}

func TestStore_SaveDirtyAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")

	s := newTestStore(t)

	// Nothing dirty: no file written.
	n, err := s.SaveDirty(path)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, s.SetBool("PumpEnabled", true))
	require.NoError(t, s.SetInt("SampleInterval", 30))

	n, err = s.SaveDirty(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.Dirty(), "save must clear dirty flags")

	// A fresh store restores the persisted values.
	restored := newTestStore(t)
	require.NoError(t, restored.Load(path))

	enabled, err := restored.Bool("PumpEnabled")
	require.NoError(t, err)
	assert.True(t, enabled)

	interval, err := restored.Int("SampleInterval")
	require.NoError(t, err)
	assert.Equal(t, int64(30), interval)

	assert.Empty(t, restored.Dirty())
}

func TestStore_LoadMissingFileFallsBackToDefaults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Load(filepath.Join(t.TempDir(), "absent.json")))

	// Everything took its default and is dirty so the next save writes it.
	assert.Len(t, s.Dirty(), 4)

	interval, err := s.Int("SampleInterval")
	require.NoError(t, err)
	assert.Equal(t, int64(60), interval)
}

func TestStore_LoadRejectsCorruptValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"SampleInterval": "ninety"}`), 0o644))

	s := newTestStore(t)
	require.NoError(t, s.Load(path))

	// The unparsable value falls back to the default, dirty.
	interval, err := s.Int("SampleInterval")
	require.NoError(t, err)
	assert.Equal(t, int64(60), interval)
	assert.Contains(t, s.Dirty(), "SampleInterval")
}
