package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Log      Log      `yaml:"log"`
	Frontend Frontend `yaml:"frontend"`
	Backend  Backend  `yaml:"backend"`
	Board    Board    `yaml:"board"`
	Boarding Boarding `yaml:"boarding"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Frontend struct {
	Port            string        `yaml:"port"`
	APIBaseURL      string        `yaml:"api_base_url"`
	SecureCookies   bool          `yaml:"secure_cookies"`
	TemplatesDir    string        `yaml:"templates_dir"`
	StaticDir       string        `yaml:"static_dir"`
	ReloadTemplates bool          `yaml:"reload_templates"`
	RequestTimeout  time.Duration `yaml:"request_timeout"` // 0 keeps the transport default
}

type Backend struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	JwtTTL         time.Duration `yaml:"jwt_ttl"`
	SeedDemoUsers  bool          `yaml:"seed_demo_users"`
}

type Board struct {
	PageSize        int `yaml:"page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	TitleMaxLen     int `yaml:"title_max_len"`
	TitlePreviewLen int `yaml:"title_preview_len"` // list view truncation
	PageButtons     int `yaml:"page_buttons"`
}

type Boarding struct {
	TTL              time.Duration `yaml:"ttl"`
	RefreshDelay     time.Duration `yaml:"refresh_delay"`
	WarningThreshold time.Duration `yaml:"warning_threshold"`
	TickInterval     time.Duration `yaml:"tick_interval"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"` // cards untouched for this long are dropped
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.Backend.JwtTTL
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Public: Public{
			Log: Log{Level: "info"},
			Frontend: Frontend{
				Port:         "8081",
				APIBaseURL:   "http://localhost:9090/api",
				TemplatesDir: "frontend/templates",
				StaticDir:    "frontend/static",
			},
			Backend: Backend{
				Port:           "9090",
				AllowedOrigins: []string{"http://localhost:8081"},
				JwtTTL:         24 * time.Hour,
			},
			Board: Board{
				PageSize:        10,
				MaxPageSize:     100,
				TitleMaxLen:     200,
				TitlePreviewLen: 80,
				PageButtons:     5,
			},
			Boarding: Boarding{
				TTL:              2 * time.Minute,
				RefreshDelay:     300 * time.Millisecond,
				WarningThreshold: time.Minute,
				TickInterval:     time.Second,
				IdleTimeout:      30 * time.Minute,
			},
		},
		Private: Private{
			Pg: Pg{Host: "localhost", Port: 5432, User: "portal", Dbname: "portal"},
		},
	}
}

// loadPath unmarshals configPath over output. A missing file leaves output untouched.
func loadPath(configPath string, output interface{}) error {
	configFile, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml and private.yaml from configFolder over the defaults,
// then applies environment overrides.
func Load(configFolder string) (*Config, error) {
	cfg := Default()
	if err := loadPath(path.Join(configFolder, "public.yaml"), &cfg.Public); err != nil {
		return nil, err
	}
	if err := loadPath(path.Join(configFolder, "private.yaml"), &cfg.Private); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("PORTAL_API_URL", &cfg.Public.Frontend.APIBaseURL)
	setString("LOG_LEVEL", &cfg.Public.Log.Level)
	setString("JWT_SECRET", &cfg.Private.JwtKey)
	setString("PG_HOST", &cfg.Private.Pg.Host)
	setString("PG_USER", &cfg.Private.Pg.User)
	setString("PG_PASSWORD", &cfg.Private.Pg.Password)
	setString("PG_DBNAME", &cfg.Private.Pg.Dbname)
	if v := os.Getenv("PG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PG_PORT must be a number: %w", err)
		}
		cfg.Private.Pg.Port = port
	}
	return nil
}

func (c *Config) validate() error {
	b := c.Public.Board
	if b.PageSize <= 0 || b.MaxPageSize < b.PageSize {
		return fmt.Errorf("board.page_size must be positive and not above board.max_page_size")
	}
	if b.TitleMaxLen <= 0 || b.PageButtons <= 0 {
		return fmt.Errorf("board.title_max_len and board.page_buttons must be positive")
	}
	q := c.Public.Boarding
	if q.TTL <= 0 || q.TickInterval <= 0 {
		return fmt.Errorf("boarding.ttl and boarding.tick_interval must be positive")
	}
	if q.WarningThreshold < 0 || q.WarningThreshold > q.TTL {
		return fmt.Errorf("boarding.warning_threshold must be within boarding.ttl")
	}
	return nil
}
