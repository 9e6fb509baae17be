package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
	"github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"
)

// Publish sinks.
const (
	SinkNone     = "none"
	SinkKafka    = "kafka"
	SinkPostgres = "postgres"
)

// Report formats.
const (
	FormatLaTeX = "latex"
	FormatCSV   = "csv"
)

// DefaultSensors are the digital surveillance sensors fused by the model.
var DefaultSensors = []string{"gft", "ght", "twtr", "wiki", "cdc", "epic", "sar3", "arch"}

// Config holds all settings, populated from an optional analysis file and
// environment variables.
type Config struct {
	DataDir        string
	AnalysisConfig string

	Sensors             []string
	Locations           []string
	Model               string
	NaiveLag            int
	Exclusions          domain.ExclusionRules
	SkipFailedLocations bool
	ReportFormat        string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Nowcast publication.
	PublishSink       string
	KafkaBrokers      []string
	KafkaNowcastTopic string
	DatabaseURL       string
	BatchSize         int
	PublishDryRun     bool
	PublishFirst      epiweek.Epiweek
	PublishLast       epiweek.Epiweek
}

// analysisFile is the YAML document named by ANALYSIS_CONFIG.
type analysisFile struct {
	Sensors    []string               `yaml:"sensors"`
	Locations  []string               `yaml:"locations"`
	Model      string                 `yaml:"model"`
	NaiveLag   int                    `yaml:"naive_lag"`
	Exclusions []domain.ExclusionRule `yaml:"exclusions"`
}

// Load reads configuration, applying defaults where unset. Environment
// variables override values from the analysis file.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:             sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		AnalysisConfig:      os.Getenv("ANALYSIS_CONFIG"),
		Sensors:             slices.Clone(DefaultSensors),
		Locations:           DefaultLocations(),
		Model:               "vanilla",
		Exclusions:          domain.DefaultExclusionRules(),
		SkipFailedLocations: true,
		ReportFormat:        sharedcfg.EnvOrDefault("REPORT_FORMAT", FormatLaTeX),
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		PublishSink:         sharedcfg.EnvOrDefault("PUBLISH_SINK", SinkNone),
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaNowcastTopic:   sharedcfg.EnvOrDefault("KAFKA_NOWCAST_TOPIC", "nowcasts"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		BatchSize:           batchSize,
	}

	if cfg.AnalysisConfig != "" {
		if err := cfg.applyFile(cfg.AnalysisConfig); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ANALYSIS_CONFIG: %w", err)
	}
	var f analysisFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse ANALYSIS_CONFIG %s: %w", path, err)
	}

	if len(f.Sensors) > 0 {
		c.Sensors = f.Sensors
	}
	if len(f.Locations) > 0 {
		c.Locations = f.Locations
	}
	if f.Model != "" {
		c.Model = f.Model
	}
	if f.NaiveLag != 0 {
		c.NaiveLag = f.NaiveLag
	}
	if f.Exclusions != nil {
		c.Exclusions = f.Exclusions
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SENSORS"); v != "" {
		c.Sensors = splitList(v)
	}
	if v := os.Getenv("LOCATIONS"); v != "" {
		c.Locations = splitList(v)
	}
	if v := os.Getenv("NOWCAST_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("NAIVE_LAG"); v != "" {
		lag, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NAIVE_LAG %q", v)
		}
		c.NaiveLag = lag
	}

	var err error
	if c.SkipFailedLocations, err = parseBool("SKIP_FAILED_LOCATIONS", true); err != nil {
		return err
	}
	if c.PublishDryRun, err = parseBool("PUBLISH_DRY_RUN", false); err != nil {
		return err
	}
	if c.PublishFirst, err = parseEpiweek("PUBLISH_FIRST"); err != nil {
		return err
	}
	if c.PublishLast, err = parseEpiweek("PUBLISH_LAST"); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	if c.NaiveLag == 0 {
		return errors.New("NAIVE_LAG is required")
	}
	if c.NaiveLag < 0 {
		return fmt.Errorf("NAIVE_LAG must be positive, got %d", c.NaiveLag)
	}
	if len(c.Sensors) == 0 {
		return errors.New("SENSORS must name at least one sensor")
	}
	if len(c.Locations) == 0 {
		return errors.New("LOCATIONS must name at least one location")
	}
	if c.Model == "" {
		return errors.New("NOWCAST_MODEL is required")
	}

	switch c.ReportFormat {
	case FormatLaTeX, FormatCSV:
	default:
		return fmt.Errorf("invalid REPORT_FORMAT %q", c.ReportFormat)
	}

	switch c.PublishSink {
	case SinkNone:
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaNowcastTopic == "" {
			return errors.New("KAFKA_NOWCAST_TOPIC is required")
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when PUBLISH_SINK is postgres")
		}
	default:
		return fmt.Errorf("invalid PUBLISH_SINK %q", c.PublishSink)
	}

	if (c.PublishFirst == 0) != (c.PublishLast == 0) {
		return errors.New("PUBLISH_FIRST and PUBLISH_LAST must be set together")
	}
	if c.PublishFirst > c.PublishLast {
		return fmt.Errorf("PUBLISH_FIRST %s is after PUBLISH_LAST %s", c.PublishFirst, c.PublishLast)
	}
	return nil
}

// DefaultLocations returns the national, HHS region, census division and
// state-level location codes.
func DefaultLocations() []string {
	locs := []string{"nat"}
	for i := 1; i <= 10; i++ {
		locs = append(locs, fmt.Sprintf("hhs%d", i))
	}
	for i := 1; i <= 9; i++ {
		locs = append(locs, fmt.Sprintf("cen%d", i))
	}
	return append(locs, states...)
}

var states = []string{
	"ak", "al", "ar", "az", "ca", "co", "ct", "dc", "de", "fl",
	"ga", "hi", "ia", "id", "il", "in", "ks", "ky", "la", "ma",
	"md", "me", "mi", "mn", "mo", "ms", "mt", "nc", "nd", "ne",
	"nh", "nj", "nm", "nv", "ny", "oh", "ok", "or", "pa", "pr",
	"ri", "sc", "sd", "tn", "tx", "ut", "va", "vi", "vt", "wa",
	"wi", "wv", "wy",
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}

func parseEpiweek(key string) (epiweek.Epiweek, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	w, err := epiweek.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return w, nil
}
