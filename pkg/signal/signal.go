package signal

import (
	"context"
	"net/http"

	"switchboard/pkg/config"
	"switchboard/pkg/logger"
	"switchboard/pkg/monitoring"
	"switchboard/pkg/network/httpx"
	"switchboard/pkg/service"
)

// Switchboard is the relay application: the signaling hub with its
// HTTP server plus the optional monitoring service.
type Switchboard struct {
	conf     config.Config
	hub      *Hub
	log      *logger.Logger
	services service.Group
}

func New(conf config.Config, log *logger.Logger) (*Switchboard, error) {
	sw := &Switchboard{conf: conf, log: log}

	policies := LoadPolicies(conf.Switchboard.Rooms.Policies, log)
	sw.hub = NewHub(conf.Switchboard.Rooms, policies, log)

	serverConf := conf.Switchboard.Server
	options := []httpx.Option{
		httpx.WithLogger(log),
		httpx.WithPortRoll(serverConf.PortRoll),
	}
	if serverConf.Https {
		options = append(options,
			httpx.WithHttps(serverConf.Tls.HttpsCert, serverConf.Tls.HttpsKey),
			httpx.WithCertCacheDir(serverConf.Tls.CertCacheDir),
			httpx.WithDomain(serverConf.Tls.Domain),
		)
	}
	server, err := httpx.NewServer(
		serverConf.Address,
		func(*httpx.Server) http.Handler { return sw.hub.Handler() },
		options...,
	)
	if err != nil {
		return nil, err
	}
	sw.services.Add(server)
	if conf.Switchboard.Monitoring.IsEnabled() {
		if m := monitoring.New(conf.Switchboard.Monitoring, "sw", log); m != nil {
			sw.services.Add(m)
		}
	}
	return sw, nil
}

func (sw *Switchboard) Start() { sw.services.Start() }

func (sw *Switchboard) Shutdown(ctx context.Context) error {
	sw.hub.Close()
	return sw.services.Shutdown(ctx)
}
