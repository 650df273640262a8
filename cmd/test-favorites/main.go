package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"deliveryOps/internal/config"
	"deliveryOps/internal/logging"
	"deliveryOps/internal/smoketest"
)

func main() {
	cfg, err := config.LoadSmoke()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		config.Exitf("init logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	err = smoketest.Run(context.Background(), smoketest.Config{
		BaseURL:      cfg.Smoke.BaseURL,
		Email:        cfg.Smoke.Email,
		Password:     cfg.Smoke.Password,
		RestaurantID: cfg.Smoke.RestaurantID,
		Note:         cfg.Smoke.Note,
	}, nil, os.Stdout)
	if err != nil {
		// Output is for a human; the command still exits 0.
		log.Warn("smoke test aborted", zap.String("base_url", cfg.Smoke.BaseURL), zap.Error(err))
		fmt.Fprintln(os.Stdout, "Error:", err)
	}
}
