package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	Debug         bool
	LogFormat     string
	AdminUser     string
	AdminPassword string
}

// environment holds the defaults read from QCAMPAIGN_* variables. Flags
// override them.
type environment struct {
	Host          string `env:"HOST" envDefault:"0.0.0.0"`
	Port          uint   `env:"PORT" envDefault:"80"`
	DBUrl         string `env:"DB_URL" envDefault:"qcampaign.sqlite"`
	TokenSecret   string `env:"TOKEN_SECRET"`
	TokenTTL      uint   `env:"TOKEN_TTL" envDefault:"120"`
	Debug         bool   `env:"DEBUG"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	AdminUser     string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

const envPrefix = "QCAMPAIGN_"

func ParseFlags() (Config, error) {
	return Parse(os.Args[0], os.Args[1:], flag.ExitOnError)
}

func Parse(name string, args []string, handling flag.ErrorHandling) (cfg Config, err error) {
	var e environment
	if err = env.ParseWithOptions(&e, env.Options{Prefix: envPrefix}); err != nil {
		return
	}

	flags := flag.NewFlagSet(name, handling)
	var host string
	flags.StringVar(&host, "host", e.Host, "listen host name")
	var port uint
	flags.UintVar(&port, "port", e.Port, "listen port number")
	flags.StringVar(&cfg.DBUrl, "db-url", e.DBUrl, "path to SQLite3 DB file")
	flags.StringVar(&cfg.TokenSecret, "token-secret", e.TokenSecret, "secret key for token encryption and decryption")
	var ttl uint
	flags.UintVar(&ttl, "token-ttl", e.TokenTTL, "token TTL in seconds")
	flags.BoolVar(&cfg.Debug, "debug", e.Debug, "log at DEBUG level")
	flags.StringVar(&cfg.LogFormat, "log-format", e.LogFormat, "log line format, text or json")
	flags.StringVar(&cfg.AdminUser, "admin-user", e.AdminUser, "administrator created at startup")
	flags.StringVar(&cfg.AdminPassword, "admin-password", e.AdminPassword, "password of the administrator created at startup, none when empty")
	if err = flags.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
