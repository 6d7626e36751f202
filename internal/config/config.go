package config

import (
	"fmt"
	"os"
	"path/filepath"
	"rowmatch/internal/logger"

	"github.com/BurntSushi/toml"
)

const DefaultPath = "configs/rowmatch.toml"

type Config struct {
	Match   MatchConfig   `toml:"match"`
	Output  OutputConfig  `toml:"output"`
	Dates   DatesConfig   `toml:"dates"`
	Scan    ScanConfig    `toml:"scan"`
	Suggest SuggestConfig `toml:"suggest"`
	Log     LogConfig     `toml:"log"`
}

type MatchConfig struct {
	SourceFiles  []string          `toml:"source_files"`
	SourceSheet  string            `toml:"source_sheet"`
	SourceSheets map[string]string `toml:"source_sheets"`
	LookupFile   string            `toml:"lookup_file"`
	LookupSheet  string            `toml:"lookup_sheet"`
	SourceColumn string            `toml:"source_column"`
	LookupColumn string            `toml:"lookup_column"`
	HeaderRow    int               `toml:"header_row"`
	LookupHeader int               `toml:"lookup_header_row"`
}

type OutputConfig struct {
	Directory         string `toml:"directory"`
	FileName          string `toml:"file_name"`
	SheetName         string `toml:"sheet_name"`
	FallbackToDesktop bool   `toml:"fallback_to_desktop"`
}

type DatesConfig struct {
	HeaderKeywords   []string `toml:"header_keywords"`
	SerialThreshold  float64  `toml:"serial_threshold"`
	DateColumnFormat string   `toml:"date_column_format"`
}

type ScanConfig struct {
	InputDirectory string `toml:"input_directory"`
}

type SuggestConfig struct {
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MinConfidence  float64 `toml:"min_confidence"`
}

type LogConfig struct {
	Directory string `toml:"directory"`
	Verbose   bool   `toml:"verbose"`
}

// Default returns the configuration written when no config file exists yet.
func Default() *Config {
	return &Config{
		Match: MatchConfig{
			SourceSheets: map[string]string{},
			SourceColumn: "C",
			LookupColumn: "A",
			HeaderRow:    1,
			LookupHeader: 1,
		},
		Output: OutputConfig{
			Directory:         ".",
			FileName:          "匹配结果.xlsx",
			SheetName:         "匹配结果",
			FallbackToDesktop: true,
		},
		Dates: DatesConfig{
			HeaderKeywords:   []string{"日期", "时间", "date", "time"},
			SerialThreshold:  40000,
			DateColumnFormat: `m"月"d"日"`,
		},
		Scan: ScanConfig{
			InputDirectory: "data/input",
		},
		Suggest: SuggestConfig{
			Model:          "gemini-2.0-flash-exp",
			TimeoutSeconds: 60,
			MinConfidence:  0.8,
		},
		Log: LogConfig{
			Directory: "logs",
		},
	}
}

// LoadConfig loads configuration from the specified config file path. A
// missing file is created with the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		defaultConfig := Default()
		if err := SaveConfig(configPath, defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	var config Config
	md, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	applyDefaults(&config, md)
	return &config, nil
}

// applyDefaults fills fields the file left out
func applyDefaults(config *Config, md toml.MetaData) {
	def := Default()

	if config.Match.SourceSheets == nil {
		config.Match.SourceSheets = map[string]string{}
	}
	if config.Match.SourceColumn == "" {
		config.Match.SourceColumn = def.Match.SourceColumn
	}
	if config.Match.LookupColumn == "" {
		config.Match.LookupColumn = def.Match.LookupColumn
	}
	if config.Match.HeaderRow == 0 {
		config.Match.HeaderRow = def.Match.HeaderRow
	}
	if config.Match.LookupHeader == 0 {
		config.Match.LookupHeader = def.Match.LookupHeader
	}
	if config.Output.Directory == "" {
		config.Output.Directory = def.Output.Directory
	}
	if config.Output.FileName == "" {
		config.Output.FileName = def.Output.FileName
	}
	if config.Output.SheetName == "" {
		config.Output.SheetName = def.Output.SheetName
	}
	if !md.IsDefined("output", "fallback_to_desktop") {
		config.Output.FallbackToDesktop = def.Output.FallbackToDesktop
	}
	if len(config.Dates.HeaderKeywords) == 0 {
		config.Dates.HeaderKeywords = def.Dates.HeaderKeywords
	}
	if config.Dates.SerialThreshold == 0 {
		config.Dates.SerialThreshold = def.Dates.SerialThreshold
	}
	if config.Dates.DateColumnFormat == "" {
		config.Dates.DateColumnFormat = def.Dates.DateColumnFormat
	}
	if config.Scan.InputDirectory == "" {
		config.Scan.InputDirectory = def.Scan.InputDirectory
	}
	if config.Suggest.Model == "" {
		config.Suggest.Model = def.Suggest.Model
	}
	if config.Suggest.TimeoutSeconds == 0 {
		config.Suggest.TimeoutSeconds = def.Suggest.TimeoutSeconds
	}
	if config.Suggest.MinConfidence == 0 {
		config.Suggest.MinConfidence = def.Suggest.MinConfidence
	}
	if config.Log.Directory == "" {
		config.Log.Directory = def.Log.Directory
	}
}

// SaveConfig saves configuration to the specified config file path
func SaveConfig(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	logger.Info("Saved configuration", "path", configPath)
	return nil
}
