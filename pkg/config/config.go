package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/kkyr/fig"
	"github.com/spf13/pflag"
	"switchboard/pkg/monitoring"
)

type (
	Config struct {
		Switchboard Switchboard
	}
	Switchboard struct {
		Debug      bool
		Server     Server
		Rooms      Rooms
		Monitoring monitoring.Config
	}
	Server struct {
		Address  string
		PortRoll bool `fig:"portRoll"`
		Https    bool
		Tls      Tls
	}
	Tls struct {
		HttpsCert string `fig:"httpsCert"`
		HttpsKey  string `fig:"httpsKey"`
		// CertCacheDir stores the automatic certificates when no
		// cert/key pair is given.
		CertCacheDir string `fig:"certCacheDir"`
		Domain       string
	}
	Rooms struct {
		// Policies is a path to the JSON room-policy file,
		// an array of {roomId, pwd, turns} records.
		Policies string
		// StaticDir is served on any non-websocket request.
		StaticDir string `fig:"staticDir"`
		// AppFile is the SPA fallback document for unknown paths.
		AppFile string `fig:"appFile"`
	}
)

const EnvPrefix = "SWITCHBOARD"

func NewConfig() Config {
	return Config{
		Switchboard: Switchboard{
			Server: Server{
				Address: ":8081",
				Tls:     Tls{CertCacheDir: "configs/cache"},
			},
			Rooms: Rooms{
				Policies:  "configs/rooms.json",
				StaticDir: "web",
				AppFile:   "index.html",
			},
			Monitoring: monitoring.Config{
				Port:      6601,
				URLPrefix: "/switchboard",
			},
		},
	}
}

// Load reads the configuration file into conf.
// The path param specifies a custom path to the configuration file.
// Reads and applies environment variables with the prefix SWITCHBOARD_.
// A missing file is not an error, the defaults are kept.
func Load(conf *Config, path string) error {
	dirs := []string{path}
	if path == "" {
		dirs = append(dirs, ".", "configs", "../../configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, home+"/.switchboard")
		}
	}
	err := fig.Load(conf, fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if err != nil && errors.Is(err, fig.ErrFileNotFound) {
		return nil
	}
	return err
}

func (c *Config) AddFlags(fs *pflag.FlagSet) *Config {
	sw := &c.Switchboard
	fs.BoolVarP(&sw.Debug, "debug", "v", sw.Debug, "Enable debug logging")
	fs.StringVarP(&sw.Server.Address, "address", "a", sw.Server.Address, "Server listen address")
	fs.StringVarP(&sw.Rooms.Policies, "rooms", "r", sw.Rooms.Policies, "Path to the room policy file")
	fs.StringVarP(&sw.Rooms.StaticDir, "static", "s", sw.Rooms.StaticDir, "Static assets directory")
	fs.BoolVarP(&sw.Monitoring.MetricEnabled, "monitoring.metric", "m", sw.Monitoring.MetricEnabled, "Enable prometheus metrics for the server")
	fs.BoolVarP(&sw.Monitoring.ProfilingEnabled, "monitoring.pprof", "p", sw.Monitoring.ProfilingEnabled, "Enable golang pprof for the server")
	fs.IntVarP(&sw.Monitoring.Port, "monitoring.port", "", sw.Monitoring.Port, "Monitoring server port")
	return c
}

// ParseFlags processes the command line.
// A single optional positional argument overrides the listen port.
func (c *Config) ParseFlags() error {
	c.AddFlags(pflag.CommandLine)
	pflag.Parse()
	if arg := pflag.Arg(0); arg != "" {
		port, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid port argument [%v]", arg)
		}
		c.Switchboard.Server.Address = fmt.Sprintf(":%d", port)
	}
	return nil
}
