package contract

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/parityci/dpc/schema"
)

// Default values for configuration.
const (
	DefaultThreshold      = 0.9
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	MaxViewportEdge       = 10000
	DefaultRunsLimit      = 25
	MaxRunsLimit          = 1000
	DefaultStack          = "html"
)

// DefaultTimeout caps one whole comparison, capture included.
const DefaultTimeout = 60 * time.Second

// DefaultWorkers is the default number of concurrent metric workers.
var DefaultWorkers = min(runtime.NumCPU(), len(schema.AllMetrics))

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom metric weights from the YAML config file.
// Only fields that might be customized are included. Use float64 pointers
// for optional fields.
type WeightsRawInput struct {
	Pixel      *float64 `mapstructure:"pixel"`
	Layout     *float64 `mapstructure:"layout"`
	Typography *float64 `mapstructure:"typography"`
	Color      *float64 `mapstructure:"color"`
	Content    *float64 `mapstructure:"content"`
}

// MinScoresRawInput holds per-metric minimum scores from the YAML config file.
type MinScoresRawInput struct {
	Pixel      *float64 `mapstructure:"pixel"`
	Layout     *float64 `mapstructure:"layout"`
	Typography *float64 `mapstructure:"typography"`
	Color      *float64 `mapstructure:"color"`
	Content    *float64 `mapstructure:"content"`
}

// MatchingRawInput holds element matching weights from the YAML config file.
type MatchingRawInput struct {
	Type      *float64 `mapstructure:"type"`
	Label     *float64 `mapstructure:"label"`
	Proximity *float64 `mapstructure:"proximity"`
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	RefResource   schema.Resource
	ImplResource  schema.Resource
	InputResource schema.Resource

	Viewport  schema.Viewport
	Metrics   []schema.MetricName
	Threshold float64
	Workers   int
	Timeout   time.Duration

	// CustomWeights holds only the user-provided weight overrides
	CustomWeights map[schema.MetricName]float64

	// Weights is the final weight map, computed from defaults + custom overrides
	Weights map[schema.MetricName]float64

	MatchWeights schema.MatchWeights

	// MinScores is the per-metric floor enforced by the check command
	MinScores map[schema.MetricName]float64

	IgnoreRegions   []schema.IgnoreRegion
	IgnoreSelectors []string

	RefSidecar  string
	ImplSidecar string

	Output      schema.OutputMode
	OutputFile  string
	ArtifactDir string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	FigmaToken string

	Stack     string
	RunsLimit int

	UseColors bool // Enable colored labels in table output
	Width     int  // Terminal width override (0 = auto-detect)
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tags
	RefStr   string
	ImplStr  string
	InputStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Viewport       string  `mapstructure:"viewport"`
	Metrics        string  `mapstructure:"metrics"`
	Threshold      float64 `mapstructure:"threshold"`
	Workers        int     `mapstructure:"workers"`
	Timeout        string  `mapstructure:"timeout"`
	Format         string  `mapstructure:"format"`
	OutputFile     string  `mapstructure:"output"`
	ArtifactDir    string  `mapstructure:"artifact-dir"`
	StoreBackend   string  `mapstructure:"store-backend"`
	StoreDBConnect string  `mapstructure:"store-db-connect"`
	Color          string  `mapstructure:"color"`
	Width          int     `mapstructure:"width"`

	// --- Fields from compareCmd.PersistentFlags() ---
	RefSidecar      string `mapstructure:"ref-dom"`
	ImplSidecar     string `mapstructure:"impl-dom"`
	IgnoreRegions   string `mapstructure:"ignore-regions"`
	IgnoreSelectors string `mapstructure:"ignore-selectors"`
	WeightsStr      string `mapstructure:"weights-override"`

	// --- Fields from checkCmd.Flags() ---
	MinScoresStr string `mapstructure:"min-scores"`

	// --- Fields from generateCmd.Flags() ---
	Stack string `mapstructure:"stack"`

	// --- Fields from runs subcommands ---
	Limit int `mapstructure:"limit"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Per-metric minimums from config file ---
	MinScores MinScoresRawInput `mapstructure:"minimums"`

	// --- Element matching weights from config file ---
	Matching MatchingRawInput `mapstructure:"matching"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Metrics != nil {
		clone.Metrics = slices.Clone(c.Metrics)
	}
	if c.CustomWeights != nil {
		clone.CustomWeights = maps.Clone(c.CustomWeights)
	}
	if c.Weights != nil {
		clone.Weights = maps.Clone(c.Weights)
	}
	if c.MinScores != nil {
		clone.MinScores = maps.Clone(c.MinScores)
	}
	if c.IgnoreRegions != nil {
		clone.IgnoreRegions = slices.Clone(c.IgnoreRegions)
	}
	if c.IgnoreSelectors != nil {
		clone.IgnoreSelectors = slices.Clone(c.IgnoreSelectors)
	}
	return &clone
}

// ConfigParams returns the settings recorded alongside a run for later audit.
func (c *Config) ConfigParams() map[string]any {
	names := make([]string, 0, len(c.Metrics))
	for _, name := range c.Metrics {
		names = append(names, string(name))
	}
	return map[string]any{
		"viewport":  c.Viewport.String(),
		"metrics":   strings.Join(names, ","),
		"threshold": c.Threshold,
		"weights":   schema.FormatBreakdown(c.Weights),
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processViewport(cfg, input); err != nil {
		return err
	}
	if err := processMetrics(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processMatching(cfg, input); err != nil {
		return err
	}
	if err := processMinScores(cfg, input); err != nil {
		return err
	}
	if err := processIgnores(cfg, input); err != nil {
		return err
	}
	if err := processResources(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("%w: store-db-connect is required when using %s backend", schema.ErrConfig, backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("%w: MySQL connection string must contain '@tcp(' for host:port specification", schema.ErrConfig)
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("%w: MySQL connection string must contain '/' followed by database name", schema.ErrConfig)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("%w: store-db-connect is required when using %s backend", schema.ErrConfig, backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("%w: PostgreSQL connection string must contain 'host=' parameter", schema.ErrConfig)
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("%w: PostgreSQL connection string must contain 'dbname=' parameter", schema.ErrConfig)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-resource fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.ArtifactDir = input.ArtifactDir
	cfg.RefSidecar = input.RefSidecar
	cfg.ImplSidecar = input.ImplSidecar
	cfg.Stack = strings.TrimSpace(input.Stack)
	cfg.Width = input.Width
	cfg.FigmaToken = os.Getenv("FIGMA_TOKEN")

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("%w: invalid --color value: %v", schema.ErrConfig, err)
	}
	cfg.UseColors = colors

	// --- 1. Threshold Validation ---
	if input.Threshold < 0 || input.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be within [0, 1] (received %.3f)", schema.ErrConfig, input.Threshold)
	}
	cfg.Threshold = input.Threshold

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("%w: workers must be greater than 0 (received %d)", schema.ErrConfig, input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Timeout Validation ---
	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return fmt.Errorf("%w: invalid timeout %q: %v", schema.ErrConfig, input.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive (received %s)", schema.ErrConfig, timeout)
	}
	cfg.Timeout = timeout

	// --- 4. Format Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Format))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("%w: invalid format '%s'. must be json, pretty", schema.ErrConfig, input.Format)
	}

	// --- 5. Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("%w: invalid store backend '%s'. must be sqlite, mysql, postgresql, none", schema.ErrConfig, input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- 6. Runs Limit Validation ---
	if input.Limit < 0 || input.Limit > MaxRunsLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d (received %d)", schema.ErrConfig, MaxRunsLimit, input.Limit)
	}
	cfg.RunsLimit = input.Limit

	return nil
}

// processViewport parses and bounds the comparison viewport.
func processViewport(cfg *Config, input *ConfigRawInput) error {
	vp, err := schema.ParseViewport(input.Viewport)
	if err != nil {
		return err
	}
	if vp.Width > MaxViewportEdge || vp.Height > MaxViewportEdge {
		return fmt.Errorf("%w: viewport edges cannot exceed %d (received %s)", schema.ErrConfig, MaxViewportEdge, vp)
	}
	cfg.Viewport = vp
	return nil
}

// processMetrics parses the requested metric list, preserving order and
// dropping duplicates. Empty means all metrics.
func processMetrics(cfg *Config, input *ConfigRawInput) error {
	raw := strings.TrimSpace(input.Metrics)
	if raw == "" || strings.EqualFold(raw, "all") {
		cfg.Metrics = slices.Clone(schema.AllMetrics)
		return nil
	}

	metrics := []schema.MetricName{}
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := schema.MetricName(strings.ToLower(part))
		if _, ok := schema.ValidMetrics[name]; !ok {
			return fmt.Errorf("%w: invalid metric '%s'. must be pixel, layout, typography, color, content", schema.ErrConfig, part)
		}
		if !slices.Contains(metrics, name) {
			metrics = append(metrics, name)
		}
	}
	if len(metrics) == 0 {
		return fmt.Errorf("%w: metrics list is empty", schema.ErrConfig)
	}
	cfg.Metrics = metrics
	return nil
}

// processWeights layers config-file weights and the --weights-override flag
// over the defaults, then validates the final map still sums to 1.0.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	custom := map[schema.MetricName]float64{}

	fileWeights := map[schema.MetricName]*float64{
		schema.PixelMetricName:      input.Weights.Pixel,
		schema.LayoutMetricName:     input.Weights.Layout,
		schema.TypographyMetricName: input.Weights.Typography,
		schema.ColorMetricName:      input.Weights.Color,
		schema.ContentMetricName:    input.Weights.Content,
	}
	for _, name := range schema.AllMetrics {
		if w := fileWeights[name]; w != nil {
			custom[name] = *w
		}
	}

	// Command-line --weights-override takes precedence over config file settings
	if input.WeightsStr != "" {
		overrides, err := parseMetricValueString(input.WeightsStr)
		if err != nil {
			return fmt.Errorf("%w: invalid --weights-override format: %v", schema.ErrConfig, err)
		}
		maps.Copy(custom, overrides)
	}

	for name, w := range custom {
		if w < 0 {
			return fmt.Errorf("%w: weight for metric %s cannot be negative (received %.3f)", schema.ErrConfig, name, w)
		}
	}
	cfg.CustomWeights = custom

	weights := schema.GetDefaultWeights()
	maps.Copy(weights, custom)

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: metric weights must sum to 1.0, got %.3f", schema.ErrConfig, sum)
	}
	cfg.Weights = weights
	return nil
}

// processMatching layers config-file matching weights over the defaults and
// validates the sum.
func processMatching(cfg *Config, input *ConfigRawInput) error {
	mw := schema.DefaultMatchWeights()
	if input.Matching.Type != nil {
		mw.Type = *input.Matching.Type
	}
	if input.Matching.Label != nil {
		mw.Label = *input.Matching.Label
	}
	if input.Matching.Proximity != nil {
		mw.Proximity = *input.Matching.Proximity
	}
	sum := mw.Type + mw.Label + mw.Proximity
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: matching weights must sum to 1.0, got %.3f", schema.ErrConfig, sum)
	}
	cfg.MatchWeights = mw
	return nil
}

// processMinScores builds the per-metric floors for the check command.
// Command-line --min-scores takes precedence over config file settings.
func processMinScores(cfg *Config, input *ConfigRawInput) error {
	minScores := map[schema.MetricName]float64{}

	fileMins := map[schema.MetricName]*float64{
		schema.PixelMetricName:      input.MinScores.Pixel,
		schema.LayoutMetricName:     input.MinScores.Layout,
		schema.TypographyMetricName: input.MinScores.Typography,
		schema.ColorMetricName:      input.MinScores.Color,
		schema.ContentMetricName:    input.MinScores.Content,
	}
	for _, name := range schema.AllMetrics {
		if m := fileMins[name]; m != nil {
			minScores[name] = *m
		}
	}

	if input.MinScoresStr != "" {
		overrides, err := parseMetricValueString(input.MinScoresStr)
		if err != nil {
			return fmt.Errorf("%w: invalid --min-scores format: %v", schema.ErrConfig, err)
		}
		maps.Copy(minScores, overrides)
	}

	for name, m := range minScores {
		if m < 0 || m > 1 {
			return fmt.Errorf("%w: minimum score for metric %s must be within [0, 1] (received %.3f)", schema.ErrConfig, name, m)
		}
	}
	cfg.MinScores = minScores
	return nil
}

// processIgnores loads the ignore-regions file and splits the selector list.
func processIgnores(cfg *Config, input *ConfigRawInput) error {
	if input.IgnoreRegions != "" {
		data, err := os.ReadFile(input.IgnoreRegions)
		if err != nil {
			return fmt.Errorf("%w: cannot read ignore-regions file: %v", schema.ErrConfig, err)
		}
		var regions []schema.IgnoreRegion
		if err := json.Unmarshal(data, &regions); err != nil {
			return fmt.Errorf("%w: ignore-regions file is not a JSON array of rects: %v", schema.ErrConfig, err)
		}
		for i, region := range regions {
			if region.W <= 0 || region.H <= 0 {
				return fmt.Errorf("%w: ignore region %d has non-positive dimensions", schema.ErrConfig, i)
			}
		}
		cfg.IgnoreRegions = regions
	}

	if input.IgnoreSelectors != "" {
		selectors := []string{}
		for part := range strings.SplitSeq(input.IgnoreSelectors, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				selectors = append(selectors, part)
			}
		}
		cfg.IgnoreSelectors = selectors
	}
	return nil
}

// processResources parses the positional resource arguments that the active
// command filled in. Commands enforce their own argument counts, so empty
// strings are simply skipped here.
func processResources(cfg *Config, input *ConfigRawInput) error {
	parse := func(s string) (schema.Resource, error) {
		res, err := schema.ParseResource(s)
		if err != nil {
			return schema.Resource{}, err
		}
		if res.Kind == schema.FigmaResource {
			if err := validateFigmaResource(cfg, res); err != nil {
				return schema.Resource{}, err
			}
		}
		return res, nil
	}

	var err error
	if input.RefStr != "" {
		if cfg.RefResource, err = parse(input.RefStr); err != nil {
			return err
		}
	}
	if input.ImplStr != "" {
		if cfg.ImplResource, err = parse(input.ImplStr); err != nil {
			return err
		}
	}
	if input.InputStr != "" {
		if cfg.InputResource, err = parse(input.InputStr); err != nil {
			return err
		}
	}
	return nil
}

// validateFigmaResource enforces the Figma guard rails up front, before any
// network call: a personal access token and an explicit node-id.
func validateFigmaResource(cfg *Config, res schema.Resource) error {
	if cfg.FigmaToken == "" {
		return fmt.Errorf("%w: figma resources require authentication. Set the FIGMA_TOKEN environment variable with a personal access token", schema.ErrConfig)
	}
	u, err := url.Parse(res.Value)
	if err != nil {
		return fmt.Errorf("%w: invalid figma URL %q: %v", schema.ErrConfig, res.Value, err)
	}
	if u.Query().Get("node-id") == "" {
		return fmt.Errorf("%w: figma URL is missing the node-id query parameter. Copy the link from Figma with a frame selected", schema.ErrConfig)
	}
	return nil
}

// parseMetricValueString parses a string like "pixel:0.9,layout:0.8"
// into a map of MetricName to float64.
func parseMetricValueString(s string) (map[schema.MetricName]float64, error) {
	values := make(map[schema.MetricName]float64)

	if s == "" {
		return values, nil
	}

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid entry format '%s', expected 'metric:value'", part)
		}

		nameStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		name := schema.MetricName(strings.ToLower(nameStr))
		if _, ok := schema.ValidMetrics[name]; !ok {
			return nil, fmt.Errorf("invalid metric '%s', must be pixel, layout, typography, color, or content", nameStr)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s' for metric %s: %w", valueStr, name, err)
		}

		values[name] = value
	}

	return values, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// RevalidateCompare re-runs resource and option validation for a compare
// request that arrived outside the CLI, e.g. over MCP. Empty optional
// arguments keep whatever the base config already carries; a negative
// threshold means not provided.
func RevalidateCompare(cfg *Config, refStr, implStr, viewportStr, metricsStr string, threshold float64) error {
	if refStr == "" || implStr == "" {
		return fmt.Errorf("%w: both ref and impl resources are required", schema.ErrConfig)
	}
	if err := processResources(cfg, &ConfigRawInput{RefStr: refStr, ImplStr: implStr}); err != nil {
		return err
	}
	if viewportStr != "" {
		if err := processViewport(cfg, &ConfigRawInput{Viewport: viewportStr}); err != nil {
			return err
		}
	}
	if metricsStr != "" {
		if err := processMetrics(cfg, &ConfigRawInput{Metrics: metricsStr}); err != nil {
			return err
		}
	}
	if threshold >= 0 {
		if threshold > 1 {
			return fmt.Errorf("%w: threshold must be within [0, 1] (received %.3f)", schema.ErrConfig, threshold)
		}
		cfg.Threshold = threshold
	}
	return nil
}

// RevalidateQuality is the single-resource variant for the quality tool.
func RevalidateQuality(cfg *Config, inputStr, viewportStr string) error {
	if inputStr == "" {
		return fmt.Errorf("%w: an input resource is required", schema.ErrConfig)
	}
	if err := processResources(cfg, &ConfigRawInput{InputStr: inputStr}); err != nil {
		return err
	}
	if viewportStr != "" {
		return processViewport(cfg, &ConfigRawInput{Viewport: viewportStr})
	}
	return nil
}
