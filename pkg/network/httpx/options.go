package httpx

import (
	"time"

	"switchboard/pkg/logger"
)

type (
	Options struct {
		Https          bool
		HttpsCert      string
		HttpsKey       string
		HttpsCertCache string
		Domain         string
		PortRoll       bool

		IdleTimeout  time.Duration
		ReadTimeout  time.Duration
		WriteTimeout time.Duration

		Logger *logger.Logger
	}
	Option func(*Options)
)

func (o *Options) override(options ...Option) {
	for _, opt := range options {
		opt(o)
	}
}

func (o *Options) IsAutoHttpsCert() bool { return !(o.HttpsCert != "" && o.HttpsKey != "") }

func WithPortRoll(roll bool) Option        { return func(opts *Options) { opts.PortRoll = roll } }
func WithLogger(log *logger.Logger) Option { return func(opts *Options) { opts.Logger = log } }
func WithHttps(cert string, key string) Option {
	return func(opts *Options) {
		opts.Https = true
		opts.HttpsCert = cert
		opts.HttpsKey = key
	}
}
func WithCertCacheDir(dir string) Option { return func(opts *Options) { opts.HttpsCertCache = dir } }
func WithDomain(domain string) Option    { return func(opts *Options) { opts.Domain = domain } }
