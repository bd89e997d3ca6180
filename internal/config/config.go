package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"codecritic/internal/analyzer/detectors"
)

// Config represents the configuration for codecritic.
type Config struct {
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Scoring  ScoringConfig  `yaml:"scoring" json:"scoring"`
	Rules    RulesConfig    `yaml:"rules" json:"rules"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Files    FilesConfig    `yaml:"files" json:"files"`
}

type AnalysisConfig struct {
	// Parallelism for producer fan-out
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

// ScoringConfig is the judge's policy: penalties are tunable, the
// ordering and critical override are structural.
type ScoringConfig struct {
	Penalties PenaltyConfig     `yaml:"penalties" json:"penalties"`
	Verdicts  VerdictThresholds `yaml:"verdict_thresholds" json:"verdict_thresholds"`
}

type PenaltyConfig struct {
	Critical int `yaml:"critical" json:"critical"`
	High     int `yaml:"high" json:"high"`
	Medium   int `yaml:"medium" json:"medium"`
	Low      int `yaml:"low" json:"low"`
	Nitpick  int `yaml:"nitpick" json:"nitpick"`
}

type VerdictThresholds struct {
	Approve     int `yaml:"approve" json:"approve"`           // score >= approve
	CommentOnly int `yaml:"comment_only" json:"comment_only"` // score >= comment_only
}

type RulesConfig struct {
	Structure StructureRules `yaml:"structure" json:"structure"`
	Loops     ToggleRule     `yaml:"loops" json:"loops"`
	Async     ToggleRule     `yaml:"async" json:"async"`
	Naming    ToggleRule     `yaml:"naming" json:"naming"`
	Secrets   SecretRules    `yaml:"secrets" json:"secrets"`
	Sinks     ToggleRule     `yaml:"sinks" json:"sinks"`
}

type ToggleRule struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type StructureRules struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	Complexity     ThresholdConfig `yaml:"complexity" json:"complexity"`
	FunctionLength ThresholdConfig `yaml:"function_length" json:"function_length"`

	GodObjectMethods int `yaml:"god_object_methods" json:"god_object_methods"`
	MaxNestingDepth  int `yaml:"max_nesting_depth" json:"max_nesting_depth"`
}

type ThresholdConfig struct {
	MediumThreshold   int `yaml:"medium_threshold" json:"medium_threshold"`
	HighThreshold     int `yaml:"high_threshold" json:"high_threshold"`
	CriticalThreshold int `yaml:"critical_threshold" json:"critical_threshold"`
}

type SecretRules struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	EntropyThreshold float64 `yaml:"entropy_threshold" json:"entropy_threshold"`
}

type OutputConfig struct {
	Format          string `yaml:"format" json:"format"`
	Colors          bool   `yaml:"colors" json:"colors"`
	Verbose         bool   `yaml:"verbose" json:"verbose"`
	ShowSuggestions bool   `yaml:"show_suggestions" json:"show_suggestions"`
	OutputFile      string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

type FilesConfig struct {
	// Extensions to analyze; defaults cover every grammar the engine has
	Extensions   []string `yaml:"extensions" json:"extensions"`
	Exclude      []string `yaml:"exclude" json:"exclude"`
	IncludeTests bool     `yaml:"include_tests" json:"include_tests"`
	MaxFileSize  int      `yaml:"max_file_size" json:"max_file_size"` // KB
}

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			MaxWorkers: 4,
		},
		Scoring: ScoringConfig{
			Penalties: PenaltyConfig{
				Critical: 40,
				High:     15,
				Medium:   5,
				Low:      1,
				Nitpick:  0,
			},
			Verdicts: VerdictThresholds{
				Approve:     90,
				CommentOnly: 70,
			},
		},
		Rules: RulesConfig{
			Structure: StructureRules{
				Enabled: true,
				Complexity: ThresholdConfig{
					MediumThreshold:   10,
					HighThreshold:     15,
					CriticalThreshold: 25,
				},
				FunctionLength: ThresholdConfig{
					MediumThreshold:   50,
					HighThreshold:     100,
					CriticalThreshold: 200,
				},
				GodObjectMethods: 10,
				MaxNestingDepth:  4,
			},
			Loops:  ToggleRule{Enabled: true},
			Async:  ToggleRule{Enabled: true},
			Naming: ToggleRule{Enabled: true},
			Secrets: SecretRules{
				Enabled:          true,
				EntropyThreshold: 4.5,
			},
			Sinks: ToggleRule{Enabled: true},
		},
		Output: OutputConfig{
			Format:          "console",
			Colors:          true,
			Verbose:         false,
			ShowSuggestions: true,
		},
		Files: FilesConfig{
			Extensions:   []string{".py", ".go", ".js", ".jsx", ".mjs", ".ts", ".tsx", ".rs"},
			Exclude:      []string{"vendor/**", ".git/**", "node_modules/**"},
			IncludeTests: false,
			MaxFileSize:  1024, // 1MB
		},
	}
}

// LoadConfig loads configuration from file or returns default.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig() // start with defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// findConfigFile looks for config files in common locations.
func findConfigFile() string {
	possiblePaths := []string{
		".codecritic.yml",
		".codecritic.yaml",
		"codecritic.yml",
		"codecritic.yaml",
		".config/codecritic.yml",
		".config/codecritic.yaml",
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	v := c.Scoring.Verdicts
	if v.Approve <= v.CommentOnly {
		return fmt.Errorf("approve threshold must be above comment_only threshold")
	}
	if v.CommentOnly < 0 || v.Approve > 100 {
		return fmt.Errorf("verdict thresholds must lie in [0,100]")
	}

	p := c.Scoring.Penalties
	if p.Critical < p.High || p.High < p.Medium || p.Medium < p.Low || p.Low < p.Nitpick {
		return fmt.Errorf("severity penalties must be in descending order")
	}

	validFormats := []string{"console", "json"}
	formatValid := false
	for _, format := range validFormats {
		if c.Output.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	if c.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1")
	}

	cc := c.Rules.Structure.Complexity
	if c.Rules.Structure.Enabled && (cc.MediumThreshold >= cc.HighThreshold || cc.HighThreshold >= cc.CriticalThreshold) {
		return fmt.Errorf("complexity thresholds must be in ascending order")
	}
	fl := c.Rules.Structure.FunctionLength
	if c.Rules.Structure.Enabled && (fl.MediumThreshold >= fl.HighThreshold || fl.HighThreshold >= fl.CriticalThreshold) {
		return fmt.Errorf("function length thresholds must be in ascending order")
	}
	if c.Rules.Secrets.Enabled && c.Rules.Secrets.EntropyThreshold <= 0 {
		return fmt.Errorf("entropy_threshold must be positive")
	}
	return nil
}

// StructureThresholds converts the structure rule block into the
// detector's threshold set.
func (c *Config) StructureThresholds() detectors.StructureThresholds {
	s := c.Rules.Structure
	return detectors.StructureThresholds{
		ComplexityMedium:   s.Complexity.MediumThreshold,
		ComplexityHigh:     s.Complexity.HighThreshold,
		ComplexityCritical: s.Complexity.CriticalThreshold,
		LOCMedium:          s.FunctionLength.MediumThreshold,
		LOCHigh:            s.FunctionLength.HighThreshold,
		LOCCritical:        s.FunctionLength.CriticalThreshold,
		GodObjectMethods:   s.GodObjectMethods,
		MaxNestingDepth:    s.MaxNestingDepth,
	}
}

// SaveConfig saves configuration to file.
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateConfig creates a sample configuration file.
func GenerateConfig(configPath string) error {
	return DefaultConfig().SaveConfig(configPath)
}
