// Package main raises document counters to values carried over from a legacy
// export, so numbers issued after the switch never repeat old ones.
//
//	seed --year 2025 --scope department --dept IF --value 120
//	seed --file counters.csv   # rows: year,scope,dept,value
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"penomoran/internal/config"
	"penomoran/internal/core/audit"
	appctx "penomoran/internal/core/context"
	corenumerator "penomoran/internal/core/numerator"
	"penomoran/internal/infrastructure/numerator"
	"penomoran/internal/infrastructure/storage/postgres"
	"penomoran/pkg/logger"
)

func main() {
	year := flag.String("year", strconv.Itoa(time.Now().Year()), "gregorian year of the counter")
	scope := flag.String("scope", "", "faculty or department")
	dept := flag.String("dept", "", "department code (department scope only)")
	value := flag.Int64("value", 0, "last number issued by the legacy system")
	file := flag.String("file", "", "CSV export with year,scope,dept,value rows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	var entries []numerator.SeedEntry
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalw("failed to open seed file", "file", *file, "error", err)
		}
		entries, err = readEntries(f)
		_ = f.Close()
		if err != nil {
			log.Fatalw("failed to read seed file", "file", *file, "error", err)
		}
	} else {
		entry, err := parseEntry(*year, *scope, *dept, strconv.FormatInt(*value, 10))
		if err != nil {
			log.Fatalw("invalid counter", "error", err)
		}
		entries = []numerator.SeedEntry{entry}
	}

	ctx := appctx.WithTrace(context.Background(), appctx.NewTraceContext())
	ctx = logger.WithLogger(ctx, log)

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.ApplicationName = cfg.App.Name + "-seed"
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	allocs, err := numerator.New(txManager.Pool()).SeedAll(ctx, entries)
	if err != nil {
		log.Fatalw("failed to seed counters", "seeded", len(allocs), "error", err)
	}

	for i, alloc := range allocs {
		requested := entries[i].Value
		auditService.Record(ctx, audit.Event{
			Action:         audit.ActionSeeded,
			Year:           alloc.Key.Year,
			Scope:          alloc.Key.Scope.String(),
			DepartmentCode: alloc.Key.DepartmentCode,
			CounterID:      alloc.CounterID,
			Counter:        alloc.Value,
			Payload:        map[string]any{"requested": requested},
		})

		if alloc.Value > requested {
			log.Warnw("counter was already ahead of the legacy value, left unchanged",
				"key", alloc.Key.String(), "requested", requested, "counter", alloc.Value)
			continue
		}
		log.Infow("counter seeded", "key", alloc.Key.String(), "counter_id", alloc.CounterID, "counter", alloc.Value)
	}
}

func parseEntry(year, scope, dept, value string) (numerator.SeedEntry, error) {
	s, err := corenumerator.ParseScope(scope)
	if err != nil {
		return numerator.SeedEntry{}, err
	}
	key, err := corenumerator.NewKey(year, s, dept)
	if err != nil {
		return numerator.SeedEntry{}, err
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return numerator.SeedEntry{}, fmt.Errorf("value %q: %w", value, err)
	}
	return numerator.SeedEntry{Key: key, Value: v}, nil
}
