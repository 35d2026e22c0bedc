package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configVersionV1 = "1"
	// ConfigVersion exposes the current config format version for tooling.
	ConfigVersion = configVersionV1

	// DefaultSourceURL is the public REST endpoint that seeds sessions.
	DefaultSourceURL = "https://fakestoreapi.com"
)

// Table names served by a session.
const (
	TableSales   = "sales"
	TableUsers   = "users"
	TableMetrics = "metrics"
)

// ExportPreset names and styles the files produced for a table.
type ExportPreset struct {
	Title       string  `yaml:"title" json:"title"`
	HeaderColor RGB     `yaml:"header_color" json:"header_color"`
	CSVFilename string  `yaml:"csv_filename" json:"csv_filename"`
	PDFFilename string  `yaml:"pdf_filename" json:"pdf_filename"`
	FontSize    float64 `yaml:"font_size,omitempty" json:"font_size,omitempty"`
}

// TableConfig describes how one table is searched, dated, and exported. An empty DateField
// marks a table that cannot be filtered by date.
type TableConfig struct {
	Name         string       `yaml:"name" json:"name"`
	Columns      []Column     `yaml:"columns" json:"columns"`
	SearchFields []string     `yaml:"search_fields,omitempty" json:"search_fields,omitempty"`
	DateField    string       `yaml:"date_field,omitempty" json:"date_field,omitempty"`
	Export       ExportPreset `yaml:"export" json:"export"`
}

// SourceConfig points at the upstream user listing.
type SourceConfig struct {
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ServerConfig controls the HTTP listener started by insightsctl serve.
type ServerConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	BasePath string `yaml:"base_path" json:"base_path"`
}

// NotificationsConfig forwards session events to an MQTT broker. An empty Broker
// disables forwarding.
type NotificationsConfig struct {
	Broker   string   `yaml:"broker,omitempty" json:"broker,omitempty"`
	ClientID string   `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	Channel  string   `yaml:"channel,omitempty" json:"channel,omitempty"`
	Kinds    []string `yaml:"kinds,omitempty" json:"kinds,omitempty"`
}

// Enabled reports whether a broker is configured.
func (n NotificationsConfig) Enabled() bool {
	return n.Broker != ""
}

// Config is the YAML document that drives a dashboard service.
type Config struct {
	Version       string              `yaml:"version" json:"version"`
	Source        SourceConfig        `yaml:"source" json:"source"`
	Simulation    SimulationConfig    `yaml:"simulation" json:"simulation"`
	Server        ServerConfig        `yaml:"server" json:"server"`
	Notifications NotificationsConfig `yaml:"notifications,omitempty" json:"notifications,omitempty"`
	Tables        []TableConfig       `yaml:"tables" json:"tables"`
	Path          string              `yaml:"-" json:"-"`
}

// DefaultTables returns the sales, users, and metrics table presets.
func DefaultTables() []TableConfig {
	return []TableConfig{
		{
			Name:         TableSales,
			Columns:      Columns("name", "email", "sales", "date"),
			SearchFields: []string{"name", "email"},
			DateField:    DefaultDateField,
			Export: ExportPreset{
				Title:       "Data Table Export",
				HeaderColor: RGB{R: 40, G: 116, B: 166},
				CSVFilename: "datatable_export.csv",
				PDFFilename: "datatable_export.pdf",
			},
		},
		{
			Name: TableUsers,
			Columns: []Column{
				{Key: "id", Label: "ID"},
				{Key: "name", Label: "Name"},
				{Key: "email", Label: "Email"},
				{Key: "phone", Label: "Phone"},
			},
			SearchFields: []string{"name", "email"},
			Export: ExportPreset{
				Title:       "User List",
				HeaderColor: RGB{R: 220, G: 53, B: 69},
				CSVFilename: "users_export.csv",
				PDFFilename: "users.pdf",
			},
		},
		{
			Name: TableMetrics,
			Columns: []Column{
				{Key: "title", Label: "Title"},
				{Key: "display", Label: "Value"},
				{Key: "change", Label: "Change"},
				{Key: "date", Label: "Date"},
			},
			SearchFields: []string{"title"},
			DateField:    DefaultDateField,
			Export: ExportPreset{
				Title:       "Metrics Export",
				HeaderColor: RGB{R: 40, G: 116, B: 166},
				CSVFilename: "metrics_export.csv",
				PDFFilename: "metrics_export.pdf",
			},
		},
	}
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// ReadConfig loads a config file from disk.
func ReadConfig(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open config %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// DecodeConfig reads a config from any reader. Unknown keys are rejected.
func DecodeConfig(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: config is empty")
		}
		return nil, fmt.Errorf("dashboard: parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	if c.Version != configVersionV1 {
		return fmt.Errorf("dashboard: unsupported config version %q", c.Version)
	}
	if c.Simulation.TickInterval > c.Simulation.Interval {
		return fmt.Errorf("dashboard: simulation tick_interval %s exceeds interval %s",
			c.Simulation.TickInterval, c.Simulation.Interval)
	}
	if c.Simulation.UpdateWindow < c.Simulation.TickInterval {
		return fmt.Errorf("dashboard: simulation update_window %s is shorter than tick_interval %s",
			c.Simulation.UpdateWindow, c.Simulation.TickInterval)
	}
	seen := make(map[string]struct{}, len(c.Tables))
	for idx, table := range c.Tables {
		if table.Name == "" {
			return fmt.Errorf("dashboard: table at index %d is missing name", idx)
		}
		if !knownTable(table.Name) {
			return fmt.Errorf("%w: %s", ErrUnknownTable, table.Name)
		}
		if _, exists := seen[table.Name]; exists {
			return fmt.Errorf("dashboard: config duplicates table %s", table.Name)
		}
		seen[table.Name] = struct{}{}
		if len(table.Columns) == 0 {
			return fmt.Errorf("dashboard: table %s has no columns", table.Name)
		}
		for _, col := range table.Columns {
			if col.Key == "" {
				return fmt.Errorf("dashboard: table %s has a column without key", table.Name)
			}
		}
	}
	return nil
}

// Table returns the preset for name.
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, table := range c.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return TableConfig{}, false
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = configVersionV1
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = DefaultSourceURL
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = 10 * time.Second
	}
	c.Simulation = c.Simulation.withDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/insights"
	}
	if c.Notifications.Enabled() {
		if c.Notifications.ClientID == "" {
			c.Notifications.ClientID = "go-insights"
		}
		if c.Notifications.Channel == "" {
			c.Notifications.Channel = "insights"
		}
	}

	defaults := DefaultTables()
	for i := range c.Tables {
		for _, def := range defaults {
			if def.Name == c.Tables[i].Name {
				c.Tables[i] = mergeTable(c.Tables[i], def)
			}
		}
	}
	for _, def := range defaults {
		if _, ok := c.Table(def.Name); !ok {
			c.Tables = append(c.Tables, def)
		}
	}
}

func mergeTable(table, def TableConfig) TableConfig {
	if len(table.Columns) == 0 {
		table.Columns = def.Columns
	}
	if len(table.SearchFields) == 0 {
		table.SearchFields = def.SearchFields
	}
	if table.DateField == "" {
		table.DateField = def.DateField
	}
	if table.Export.Title == "" {
		table.Export.Title = def.Export.Title
	}
	if table.Export.HeaderColor == (RGB{}) {
		table.Export.HeaderColor = def.Export.HeaderColor
	}
	if table.Export.CSVFilename == "" {
		table.Export.CSVFilename = def.Export.CSVFilename
	}
	if table.Export.PDFFilename == "" {
		table.Export.PDFFilename = def.Export.PDFFilename
	}
	return table
}

func knownTable(name string) bool {
	switch name {
	case TableSales, TableUsers, TableMetrics:
		return true
	}
	return false
}
