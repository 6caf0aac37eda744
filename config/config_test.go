package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/poolsim/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NUM_CALLS", "VALIDATORS_MY_POOL", "POOL_FEE", "SEED", "START_BLOCK", "FETCH_CALLS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	s := cfg.Simulation
	assert.Equal(t, 20000, s.TrialCount)
	assert.Equal(t, 1350, s.ReferencePoolSize)
	require.NotNil(t, s.FeeMultiplier)
	assert.Equal(t, 0.93, *s.FeeMultiplier)
	assert.Equal(t, 2.5, s.BlocksPerValidatorPerYear)
	assert.Equal(t, []int{1, 10, 100, 300, 500, 1000}, s.PoolSizes)
	assert.Nil(t, s.Seed)
	assert.Equal(t, "index_paired", s.ComparisonMode)
	assert.Equal(t, "mean", s.Reducer)
	assert.Equal(t, "block_data.csv", cfg.Sample.Path)
	assert.Equal(t, "payment", cfg.Sample.Column)
	assert.Equal(t, int64(22347396), cfg.Fetch.StartBlock)
	assert.Equal(t, 10, cfg.Fetch.NumCalls)
	assert.Empty(t, cfg.Storage.DSN)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLValues(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(writeConfig(t, `
simulation:
  trial_count: 500
  pool_sizes: [5, 50]
  seed: 7
  comparison_mode: ALL_PAIRS
storage:
  dsn: ":memory:"
`))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Simulation.TrialCount)
	assert.Equal(t, []int{5, 50}, cfg.Simulation.PoolSizes)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Equal(t, uint64(7), *cfg.Simulation.Seed)
	assert.Equal(t, "all_pairs", cfg.Simulation.ComparisonMode)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NUM_CALLS", "1234")
	t.Setenv("VALIDATORS_MY_POOL", "2000")
	t.Setenv("POOL_FEE", "0.9")
	t.Setenv("SEED", "18446744073709551615")
	t.Setenv("START_BLOCK", "100")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(writeConfig(t, "simulation:\n  trial_count: 10\n"))
	require.NoError(t, err)

	assert.Equal(t, 1234, cfg.Simulation.TrialCount)
	assert.Equal(t, 2000, cfg.Simulation.ReferencePoolSize)
	require.NotNil(t, cfg.Simulation.FeeMultiplier)
	assert.Equal(t, 0.9, *cfg.Simulation.FeeMultiplier)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Equal(t, uint64(18446744073709551615), *cfg.Simulation.Seed)
	assert.Equal(t, int64(100), cfg.Fetch.StartBlock)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NUM_CALLS", "lots")

	_, err := config.Load(writeConfig(t, "{}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NUM_CALLS")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative trials", "simulation:\n  trial_count: -1\n", "trial_count"},
		{"fee above one", "simulation:\n  fee_multiplier: 1.5\n", "fee_multiplier"},
		{"fee zero", "simulation:\n  fee_multiplier: 0\n", "fee_multiplier"},
		{"unknown mode", "simulation:\n  comparison_mode: bogus\n", "comparison_mode"},
		{"unknown reducer", "simulation:\n  reducer: max\n", "reducer"},
		{"negative pool", "simulation:\n  pool_sizes: [10, -1]\n", "pool_sizes"},
		{"bad log format", "log:\n  format: xml\n", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, tt.body))
			require.NoError(t, err)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ExplicitZeroFeeIsKept(t *testing.T) {
	clearEnv(t)
	t.Setenv("POOL_FEE", "0")

	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Simulation.FeeMultiplier)
	assert.Equal(t, 0.0, *cfg.Simulation.FeeMultiplier)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fee_multiplier must be in (0,1], got 0")
}
