package main

import (
	"context"

	"switchboard/pkg/config"
	"switchboard/pkg/logger"
	"switchboard/pkg/os"
	"switchboard/pkg/signal"
)

var Version = "?"

func main() {
	conf := config.NewConfig()
	log := logger.NewConsole(conf.Switchboard.Debug, "sw", false)
	if err := config.Load(&conf, ""); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := conf.ParseFlags(); err != nil {
		log.Fatal().Err(err).Msg("command line parse failed")
	}
	log = logger.NewConsole(conf.Switchboard.Debug, "sw", false)

	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	sw, err := signal.New(conf, log)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't init the relay")
	}
	sw.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		if err := sw.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("service shutdown errors")
		}
	}()
	<-os.ExpectTermination()
	cancel()
}
