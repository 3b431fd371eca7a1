package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"training-plan-wizard/internal/config"
	"training-plan-wizard/internal/infra/logging"
	"training-plan-wizard/internal/infra/metrics"
	"training-plan-wizard/internal/infra/stub"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", true, "development mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	srv := stub.NewServer(cfg.Stub.StepDuration, logger)
	addr := fmt.Sprintf(":%d", cfg.Stub.Port)
	logger.Info().Str("addr", addr).Msg("stub generation backend listening")
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatalf("stub server: %v", err)
	}
}
