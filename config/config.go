package config

import (
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port string

	MongoURI   string
	DBUser     string
	DBPass     string
	DBHost     string
	DBName     string
	Collection string
	DBTimeout  time.Duration

	AllToysLimit      int64
	CategoryLimit     int64
	CategoryAllowList []string
}

// Default values, overridable through the environment.
const (
	DefaultPort          = "5000"
	DefaultDBHost        = "cluster0.qe4grrt.mongodb.net"
	DefaultDBName        = "toyStacks"
	DefaultCollection    = "all_toys"
	DefaultDBTimeout     = 5 * time.Second
	MinDBTimeout         = time.Millisecond
	DefaultAllToysLimit  = 20
	DefaultCategoryLimit = 2
)

// DefaultCategoryAllowList holds the sub categories the category route filters on.
var DefaultCategoryAllowList = []string{"Architecture", "Technic", "Minifigures"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("mongodb_uri", "")
	v.SetDefault("db_user", "")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_host", DefaultDBHost)
	v.SetDefault("db_name", DefaultDBName)
	v.SetDefault("db_collection", DefaultCollection)
	v.SetDefault("db_timeout", DefaultDBTimeout.String())
	v.SetDefault("all_toys_limit", DefaultAllToysLimit)
	v.SetDefault("category_limit", DefaultCategoryLimit)
	v.SetDefault("category_allowlist", strings.Join(DefaultCategoryAllowList, ","))
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// It's safe to ignore the error, the file is optional (production uses real env vars)
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded (%v), relying on system environment variables", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	timeout, err := parseTimeout(v.GetString("db_timeout"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              v.GetString("port"),
		MongoURI:          v.GetString("mongodb_uri"),
		DBUser:            v.GetString("db_user"),
		DBPass:            v.GetString("db_pass"),
		DBHost:            v.GetString("db_host"),
		DBName:            v.GetString("db_name"),
		Collection:        v.GetString("db_collection"),
		DBTimeout:         timeout,
		AllToysLimit:      v.GetInt64("all_toys_limit"),
		CategoryLimit:     v.GetInt64("category_limit"),
		CategoryAllowList: splitList(v.GetString("category_allowlist")),
	}

	if cfg.MongoURI == "" && (cfg.DBUser == "" || cfg.DBPass == "") {
		return nil, fmt.Errorf("either MONGODB_URI or both DB_USER and DB_PASS must be set")
	}
	if cfg.DBTimeout < MinDBTimeout {
		return nil, fmt.Errorf("DB_TIMEOUT must be at least %s, got %s", MinDBTimeout, cfg.DBTimeout)
	}
	if cfg.AllToysLimit < 0 || cfg.CategoryLimit < 0 {
		return nil, fmt.Errorf("limits must not be negative")
	}

	log.Printf("[config] PORT=%s DB_NAME=%s DB_COLLECTION=%s DB_TIMEOUT=%s", cfg.Port, cfg.DBName, cfg.Collection, cfg.DBTimeout)
	return cfg, nil
}

// ConnectionURI returns MONGODB_URI when set, otherwise the Atlas SRV URI
// assembled from the credentials.
func (c *Config) ConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPass), c.DBHost)
}

// IsAllowedCategory reports whether category is in the allow-list (exact, case-sensitive).
func (c *Config) IsAllowedCategory(category string) bool {
	for _, allowed := range c.CategoryAllowList {
		if allowed == category {
			return true
		}
	}
	return false
}

// parseTimeout accepts a Go duration ("5s", "250ms") or a bare integer, read as seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("DB_TIMEOUT %q is not a duration: %w", raw, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
