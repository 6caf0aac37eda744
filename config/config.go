package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del simulador.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Sample     SampleConfig     `yaml:"sample"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// SimulationConfig controla el bootstrap y las comparaciones.
type SimulationConfig struct {
	TrialCount                int      `yaml:"trial_count"`
	ReferencePoolSize         int      `yaml:"reference_pool_size"`
	FeeMultiplier             *float64 `yaml:"fee_multiplier"` // fracción que se queda el validador (0.93 = fee 7%); nil = default
	BlocksPerValidatorPerYear float64  `yaml:"blocks_per_validator_per_year"`
	PoolSizes                 []int    `yaml:"pool_sizes"`
	Seed                      *uint64  `yaml:"seed"` // nil = semilla aleatoria, reportada en la salida
	Workers                   int      `yaml:"workers"`
	ComparisonMode            string   `yaml:"comparison_mode"` // index_paired | all_pairs
	Reducer                   string   `yaml:"reducer"`         // mean | median
}

// SampleConfig dice de dónde sale la muestra empírica.
type SampleConfig struct {
	Path   string `yaml:"path"`
	Column string `yaml:"column"`
}

// FetchConfig controla la descarga de bloques para construir la muestra.
type FetchConfig struct {
	BaseURL    string  `yaml:"base_url"`
	StartBlock int64   `yaml:"start_block"`
	NumCalls   int     `yaml:"num_calls"`
	RatePerSec float64 `yaml:"rate_per_sec"`
}

// StorageConfig controla dónde se persiste el historial.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para no guardar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// Validate rechaza valores con los que no tiene sentido simular.
func (c *Config) Validate() error {
	var errs []error
	s := c.Simulation
	if s.TrialCount <= 0 {
		errs = append(errs, fmt.Errorf("simulation.trial_count must be > 0, got %d", s.TrialCount))
	}
	if s.ReferencePoolSize < 0 {
		errs = append(errs, fmt.Errorf("simulation.reference_pool_size must be >= 0, got %d", s.ReferencePoolSize))
	}
	if s.FeeMultiplier == nil {
		errs = append(errs, errors.New("simulation.fee_multiplier is not set"))
	} else if f := *s.FeeMultiplier; f <= 0 || f > 1 {
		errs = append(errs, fmt.Errorf("simulation.fee_multiplier must be in (0,1], got %g", f))
	}
	if s.BlocksPerValidatorPerYear <= 0 {
		errs = append(errs, fmt.Errorf("simulation.blocks_per_validator_per_year must be > 0, got %g", s.BlocksPerValidatorPerYear))
	}
	for _, p := range s.PoolSizes {
		if p < 0 {
			errs = append(errs, fmt.Errorf("simulation.pool_sizes: negative size %d", p))
		}
	}
	switch s.ComparisonMode {
	case "index_paired", "all_pairs":
	default:
		errs = append(errs, fmt.Errorf("simulation.comparison_mode: unknown %q", s.ComparisonMode))
	}
	switch s.Reducer {
	case "mean", "median":
	default:
		errs = append(errs, fmt.Errorf("simulation.reducer: unknown %q", s.Reducer))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
// Los nombres coinciden con los .env ya existentes de block_data.csv.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NUM_CALLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NUM_CALLS %q: %w", v, err)
		}
		cfg.Simulation.TrialCount = n
	}
	if v := os.Getenv("VALIDATORS_MY_POOL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VALIDATORS_MY_POOL %q: %w", v, err)
		}
		cfg.Simulation.ReferencePoolSize = n
	}
	if v := os.Getenv("POOL_FEE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("POOL_FEE %q: %w", v, err)
		}
		cfg.Simulation.FeeMultiplier = &f
	}
	if v := os.Getenv("SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SEED %q: %w", v, err)
		}
		cfg.Simulation.Seed = &seed
	}
	if v := os.Getenv("START_BLOCK"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("START_BLOCK %q: %w", v, err)
		}
		cfg.Fetch.StartBlock = n
	}
	if v := os.Getenv("FETCH_CALLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FETCH_CALLS %q: %w", v, err)
		}
		cfg.Fetch.NumCalls = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// Storage.DSN no tiene default: vacío desactiva el historial.
func setDefaults(cfg *Config) {
	if cfg.Simulation.TrialCount == 0 {
		cfg.Simulation.TrialCount = 20000
	}
	if cfg.Simulation.ReferencePoolSize == 0 {
		cfg.Simulation.ReferencePoolSize = 1350
	}
	// solo si la key falta: un 0 explícito lo rechaza Validate
	if cfg.Simulation.FeeMultiplier == nil {
		fee := 0.93
		cfg.Simulation.FeeMultiplier = &fee
	}
	if cfg.Simulation.BlocksPerValidatorPerYear == 0 {
		cfg.Simulation.BlocksPerValidatorPerYear = 2.5
	}
	if len(cfg.Simulation.PoolSizes) == 0 {
		cfg.Simulation.PoolSizes = []int{1, 10, 100, 300, 500, 1000}
	}
	cfg.Simulation.ComparisonMode = strings.ToLower(cfg.Simulation.ComparisonMode)
	if cfg.Simulation.ComparisonMode == "" {
		cfg.Simulation.ComparisonMode = "index_paired"
	}
	cfg.Simulation.Reducer = strings.ToLower(cfg.Simulation.Reducer)
	if cfg.Simulation.Reducer == "" {
		cfg.Simulation.Reducer = "mean"
	}
	if cfg.Sample.Path == "" {
		cfg.Sample.Path = "block_data.csv"
	}
	if cfg.Sample.Column == "" {
		cfg.Sample.Column = "payment"
	}
	if cfg.Fetch.BaseURL == "" {
		cfg.Fetch.BaseURL = "https://api.payload.de"
	}
	if cfg.Fetch.StartBlock == 0 {
		cfg.Fetch.StartBlock = 22347396
	}
	if cfg.Fetch.NumCalls == 0 {
		cfg.Fetch.NumCalls = 10
	}
	if cfg.Fetch.RatePerSec <= 0 {
		cfg.Fetch.RatePerSec = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
