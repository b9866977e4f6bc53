package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/config"
	"github.com/robalobadob/bingo/internal/database"
	"github.com/robalobadob/bingo/internal/httpserver"
	"github.com/robalobadob/bingo/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := database.OpenMigrated(cfg.DBDriver, cfg.DBPath, assets.Migrations())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()

	mem := store.NewMemoryStore()
	srv := httpserver.New(cfg, mem, db)
	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("starting bingo server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
