package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/coordkit/coordctl/internal/config"
	"github.com/coordkit/coordctl/internal/facade"
	"github.com/coordkit/coordctl/internal/observability"
	"github.com/coordkit/coordctl/internal/provider/etcd"
	"github.com/coordkit/coordctl/internal/provider/memory"
	"github.com/coordkit/coordctl/internal/provider/redis"
)

func main() {
	observability.InitLogger("coordctl")
	configPath := flag.String("config", "cmd/coordctl/config.toml", "path to coordctl config")
	flag.Parse()

	etcd.Register()
	redis.Register()
	memory.Register()
	observability.RegisterMetrics()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load coordctl config")
	}
	log.Info().Str("path", *configPath).Msg("loaded coordctl config")

	f := facade.Instance()
	if err := f.Init(config.Pool(cfg), cfg.Schemas); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("coordination bootstrap failed")
	}
	if err := f.ActivateRuntime(); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("runtime activation failed")
	}
	log.Info().
		Str("instance", f.RegistryCenter().InstanceID()).
		Bool("overwrite", f.Overwrite()).
		Msg("runtime online")

	go consumeEvents(f)
	go serveAdmin(cfg.AdminAddr, f)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")
	f.Close()
}

func consumeEvents(f *facade.Facade) {
	for ev := range f.Events() {
		log.Debug().
			Str("type", ev.Type.String()).
			Str("key", ev.Key).
			Msg("store change observed")
	}
}
