package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"go.uber.org/zap"

	"deliveryOps/internal/config"
	"deliveryOps/internal/db"
	"deliveryOps/internal/identity"
	"deliveryOps/internal/logging"
	"deliveryOps/internal/rolesync"
	"deliveryOps/repository"
)

func main() {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		config.Exitf("init logger: %v", err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded", zap.Stringer("config", cfg))

	ctx := context.Background()
	source, deps, closeSource, err := openSource(cfg.Sync)
	if err != nil {
		log.Error("open user source", zap.Error(err))
		config.Exitf("open user source: %v", err)
	}
	defer closeSource()

	_, err = rolesync.Run(ctx, rolesync.Options{
		Source:          source,
		Dependencies:    deps,
		Confirm:         rolesync.PromptConfirm(os.Stdin, os.Stdout),
		CredentialsFile: cfg.Sync.CredentialsFile,
		NewUpdater: func(ctx context.Context, creds rolesync.Credentials) (rolesync.Updater, error) {
			return identity.Dial(ctx, identity.Settings{
				Region:          cfg.Sync.Region,
				UserPoolID:      cfg.Sync.UserPoolID,
				Endpoint:        cfg.Sync.Endpoint,
				AccessKeyID:     creds.AccessKeyID,
				SecretAccessKey: creds.SecretAccessKey,
			})
		},
		Out:    os.Stdout,
		Color:  true,
		Logger: log,
	})
	if code := exitCode(err); code != 0 {
		closeSource()
		_ = log.Sync()
		os.Exit(code)
	}
}

// exitCode maps the result of a run to the process status. Per-user failures
// are not errors of Run, so they exit 0 like a declined run.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, rolesync.ErrDeclined):
		return 0
	default:
		return 1
	}
}

// openSource selects where linked users are read from.
func openSource(cfg config.SyncConfig) (repository.LinkedUserSource, []rolesync.Dependency, func(), error) {
	switch cfg.Source {
	case config.SourcePostgres:
		d, err := db.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewUserRepository(d), nil, closer(d), nil
	case config.SourceSQLite:
		d, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewUserRepository(d), nil, closer(d), nil
	default:
		src := repository.NewContainerSource(cfg.Container, cfg.DBName, cfg.DBUser)
		dep := rolesync.CommandDependency("docker", "Install Docker and start the "+cfg.Container+" container, then retry.")
		return src, []rolesync.Dependency{dep}, func() {}, nil
	}
}

func closer(d *sql.DB) func() {
	return func() { _ = d.Close() }
}
