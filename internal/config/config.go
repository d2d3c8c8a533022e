package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"go.uber.org/zap/zapcore"
	"net/url"
	"os"
	"time"
)

type JsonUrl struct {
	*url.URL
}

func (j *JsonUrl) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	configUrl, err := url.Parse(s)
	j.URL = configUrl
	return err
}

func (j *JsonUrl) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.URL.String())
}

type JsonDuration struct {
	time.Duration
}

func (j *JsonDuration) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	var duration time.Duration
	duration, err = time.ParseDuration(s)
	if err != nil {
		return err
	}
	j.Duration = duration
	return err
}

func (j *JsonDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Duration.String())
}

// database drivers
const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

type Configuration struct {
	Logging struct {
		MaxSize         int
		MaxBackups      int
		MaxAge          int
		Level           zapcore.Level
		ConsoleLogLevel zapcore.Level
		File            string
		HttpAccessFile  string
		DbLogFile       string
	}
	ListeningPort    string
	ListeningAddress string
	ShutdownTimeout  *JsonDuration
	Database         struct {
		Driver          string
		Host            string
		Port            uint
		Username        string
		Password        string
		DatabaseName    string
		SslMode         string
		// Path is the database file when Driver is sqlite.
		Path            string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime *JsonDuration
	}
	Site struct {
		Name     string
		BaseUrl  *JsonUrl
		Debug    bool
		Language string

		// TrustForwardedProto lets a reverse proxy pick the scheme of derived site URLs.
		TrustForwardedProto bool
	}
	Media struct {
		Root        string
		MaxUploadMB int64
	}
	Admin struct {
		SigningKey     string
		TokenTtl       *JsonDuration
		AllowedOrigins []string
	}
}

var config *Configuration

func InitConfig() *Configuration {
	configFile := flag.String("config", "config.json", "Path to config file (json)")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "\nUsage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		_, _ = fmt.Fprint(os.Stderr, "\n")
	}
	flag.Parse()

	c, err := Load(*configFile)
	if err != nil {
		flag.Usage()
		panic("Error parsing config file: " + err.Error())
	}

	config = c
	return config
}

// Load reads and decodes a JSON config file and applies defaults.
func Load(path string) (*Configuration, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var c Configuration
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&c); err != nil {
		return nil, err
	}

	ApplyDefaults(&c)

	return &c, nil
}

// ApplyDefaults fills every unset option with its default.
func ApplyDefaults(c *Configuration) {
	if c.Logging.MaxSize <= 0 {
		c.Logging.MaxSize = 500
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge <= 0 {
		c.Logging.MaxAge = 28
	}
	if c.ShutdownTimeout == nil {
		c.ShutdownTimeout = &JsonDuration{Duration: 10 * time.Second}
	}

	if len(c.Database.Driver) == 0 {
		c.Database.Driver = DriverPostgres
	}
	if len(c.Database.SslMode) == 0 {
		c.Database.SslMode = "disable"
	}
	if len(c.Database.Path) == 0 {
		c.Database.Path = "site.db"
	}
	if c.Database.ConnMaxLifetime == nil {
		c.Database.ConnMaxLifetime = &JsonDuration{Duration: time.Hour}
	}

	if len(c.Site.Name) == 0 {
		c.Site.Name = "IT Solutions Hub"
	}
	if len(c.Site.Language) == 0 {
		c.Site.Language = "ru"
	}

	if len(c.Media.Root) == 0 {
		c.Media.Root = "media"
	}
	if c.Media.MaxUploadMB <= 0 {
		c.Media.MaxUploadMB = 10
	}

	if c.Admin.TokenTtl == nil {
		c.Admin.TokenTtl = &JsonDuration{Duration: 12 * time.Hour}
	}
}

func Config() *Configuration {
	return config
}

func Port() string {
	return config.ListeningPort
}

func Address() string {
	return config.ListeningAddress
}

// BaseUrl returns the configured absolute site URL without a trailing slash, or "" if unset.
func BaseUrl() string {
	if config == nil || config.Site.BaseUrl == nil || config.Site.BaseUrl.URL == nil {
		return ""
	}
	u := *config.Site.BaseUrl.URL
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
