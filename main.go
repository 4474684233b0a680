package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mbolis/quick-campaign/app"
	"github.com/mbolis/quick-campaign/config"
	"github.com/mbolis/quick-campaign/database"
	"github.com/mbolis/quick-campaign/httpx"
	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err = log.SetFormat(cfg.LogFormat); err != nil {
		log.Fatal("main.config:", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	if cfg.AdminPassword != "" {
		err = database.SaveUser(context.Background(), db, cfg.AdminUser, cfg.AdminPassword, true)
		if err != nil {
			log.Fatal("main.db.admin:", err)
		}
		log.Info("Admin user " + cfg.AdminUser + " ready")
	}

	bearerServer := httpx.NewBearerServer(db, cfg)

	app := app.App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
