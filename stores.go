package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Reservation-Dialogue/agent/notify"
	recordx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/record"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
	configx "github.com/tanpawarit/Chative-Reservation-Dialogue/pkg/config"
	qstashx "github.com/tanpawarit/Chative-Reservation-Dialogue/pkg/qstash"
)

// openRecordStore opens the configured backend. Bolt and Postgres are seeded from
// the JSON files in DataDir on first use.
func openRecordStore(ctx context.Context, cfg AppConfig) (recordx.Store, func(), error) {
	noop := func() {}

	files, err := recordx.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, noop, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.StoreBackend)) {
	case "", "file":
		return files, noop, nil
	case "memory":
		mem := recordx.NewMemoryStore(nil, nil)
		if err := recordx.SeedFrom(ctx, files, mem); err != nil {
			return nil, noop, err
		}
		return mem, noop, nil
	case "bolt":
		db, err := recordx.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() { closeQuietly("bolt", db.Close) }
		if err := recordx.SeedFrom(ctx, files, db); err != nil {
			closeFn()
			return nil, noop, err
		}
		return db, closeFn, nil
	case "postgres":
		db, err := recordx.OpenBunStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() { closeQuietly("postgres", db.Close) }
		if err := recordx.SeedFrom(ctx, files, db); err != nil {
			closeFn()
			return nil, noop, err
		}
		return db, closeFn, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown store backend %q", contractx.ErrValidation, cfg.StoreBackend)
	}
}

func openSessionStore(cfg AppConfig) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.SessionBackend)) {
	case "", "memory":
		return statex.NewMemoryStore(), nil
	case "upstash":
		redisCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, err
		}
		return statex.NewUpstashRedisStore(*redisCfg)
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", contractx.ErrValidation, cfg.SessionBackend)
	}
}

// openNotifier publishes through QStash when NOTIFY_DESTINATION is set.
func openNotifier() (contractx.Notifier, error) {
	notifyCfg, err := configx.New[notify.Config]("NOTIFY")
	if err != nil {
		return nil, err
	}
	if !notifyCfg.Enabled() {
		return notify.Noop{}, nil
	}

	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		return nil, err
	}
	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		return nil, err
	}
	return notify.NewQStash(client, *notifyCfg)
}

func closeQuietly(name string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn().Err(err).Str("store", name).Msg("close record store")
	}
}
