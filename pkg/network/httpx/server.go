package httpx

import (
	"context"
	"net/http"
	"time"

	"switchboard/pkg/logger"
)

type Server struct {
	http.Server

	tls      *TLS
	opts     Options
	listener *Listener
	log      *logger.Logger
}

// NewServer creates a server for the given address.
// The handler constructor receives the half-initialized server so
// routes can use its final address.
func NewServer(address string, handler func(*Server) http.Handler, options ...Option) (*Server, error) {
	opts := &Options{
		HttpsCertCache: "configs/cache",
		IdleTimeout:    120 * time.Second,
		ReadTimeout:    120 * time.Second,
		WriteTimeout:   120 * time.Second,
	}
	opts.override(options...)
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	server := &Server{
		Server: http.Server{
			Addr:         address,
			IdleTimeout:  opts.IdleTimeout,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		opts: *opts,
		log:  opts.Logger,
	}
	server.Handler = handler(server)

	if opts.Https && opts.IsAutoHttpsCert() {
		server.tls = NewTLSConfig(opts.Domain, opts.HttpsCertCache)
		server.TLSConfig = server.tls.CertManager.TLSConfig()
	}

	listener, err := NewListener(server.Addr, opts.PortRoll)
	if err != nil {
		return nil, err
	}
	server.listener = listener
	server.Addr = listener.Addr().String()

	return server, nil
}

func (s *Server) Run() {
	s.log.Info().Msgf("Starting %s server on %s", s.GetProtocol(), s.Addr)
	var err error
	if s.opts.Https {
		err = s.ServeTLS(s.listener, s.opts.HttpsCert, s.opts.HttpsKey)
	} else {
		err = s.Serve(s.listener)
	}
	if err != http.ErrServerClosed {
		s.log.Error().Err(err).Msgf("%s server was closed", s.GetProtocol())
	}
}

func (s *Server) Shutdown(ctx context.Context) error { return s.Server.Shutdown(ctx) }

func (s *Server) GetProtocol() string {
	if s.opts.Https {
		return "https"
	}
	return "http"
}
