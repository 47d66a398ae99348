package tuning_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fableweave.dev/internal/sim/tuning"
)

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(p, []byte("sleep_threshold: 10\nevent_history_cap: 50\n"), 0o644))

	got, err := tuning.Load(p)
	require.NoError(t, err)
	require.Equal(t, 10.0, got.SleepThreshold)
	require.Equal(t, 50, got.EventHistoryCap)
	// Untouched keys stay at defaults.
	require.Equal(t, tuning.Defaults().WakeThreshold, got.WakeThreshold)
	require.Equal(t, tuning.Defaults().Autosave.Slots, got.Autosave.Slots)
}

func TestLoad_RejectsInvertedThresholds(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(p, []byte("sleep_threshold: 90\n"), 0o644))

	_, err := tuning.Load(p)
	require.Error(t, err)
}

func TestDefaults_Valid(t *testing.T) {
	require.NoError(t, tuning.Defaults().Validate())
}
