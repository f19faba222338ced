// Package main provides a CLI for applying the embedded schema migrations.
//
//	migrate up
//	migrate down
//	migrate steps -n -1
//	migrate version
//	migrate force -version 3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"penomoran/internal/config"
	"penomoran/internal/infrastructure/storage/postgres"
	"penomoran/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	steps := fs.Int("n", 1, "number of steps for the steps command (negative goes down)")
	version := fs.Int("version", -1, "version for the force command")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.ApplicationName = cfg.App.Name + "-migrate"
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool, log)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	defer func() { _ = m.Close() }()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(*steps)
	case "force":
		if *version < 0 {
			log.Fatal("force requires -version")
		}
		err = m.Force(*version)
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil {
			err = verr
			break
		}
		log.Infow("migration version", "version", v, "dirty", dirty)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalw("migration failed", "command", command, "error", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate <up|down|steps|version|force> [-n N] [-version V]")
}
