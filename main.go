package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idiomle/apps/go-server/internal/config"
	"github.com/robalobadob/idiomle/apps/go-server/internal/db"
	"github.com/robalobadob/idiomle/apps/go-server/internal/httpserver"
	"github.com/robalobadob/idiomle/apps/go-server/internal/idioms"
	"github.com/robalobadob/idiomle/apps/go-server/internal/kv"
	"github.com/robalobadob/idiomle/apps/go-server/internal/pinyin"
	"github.com/robalobadob/idiomle/apps/go-server/internal/store"
)

// Abandoned rounds and idle quiz players are dropped after this long.
const idleTTL = 6 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer conn.Close()

	list, err := idioms.Load(cfg.IdiomsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load idiom list")
	}
	log.Info().Int("answers", list.Len()).Msg("idioms loaded")

	srv := httpserver.New(*cfg, httpserver.Deps{
		Games:  store.NewMemoryStore(),
		DB:     conn,
		KV:     kv.NewSQLiteStore(conn),
		Idioms: list,
		Lookup: pinyin.New(),
	})
	go sweepIdle(ctx, srv)
	log.Info().Str("port", cfg.Port).Msg("starting go-server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// sweepIdle periodically forgets rounds and quiz players nobody touched.
func sweepIdle(ctx context.Context, srv *httpserver.Server) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rounds, players := srv.SweepIdle(ctx, time.Now().Add(-idleTTL))
			if rounds+players > 0 {
				log.Debug().Int("rounds", rounds).Int("players", players).Msg("swept idle state")
			}
		}
	}
}
