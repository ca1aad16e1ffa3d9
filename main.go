package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	arbiterx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/agents/arbiter"
	"github.com/tanpawarit/Chative-Reservation-Dialogue/agent/agents/completion"
	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	llmx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/llm"
	toolx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/tool"
	configx "github.com/tanpawarit/Chative-Reservation-Dialogue/pkg/config"
	_ "github.com/tanpawarit/Chative-Reservation-Dialogue/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Chative-Reservation-Dialogue/pkg/openrouter"
)

type AppConfig struct {
	StoreBackend       string `split_words:"true" default:"file"`
	DataDir            string `split_words:"true" default:"data"`
	BoltPath           string `split_words:"true" default:"data/reservations.db"`
	PostgresDSN        string `envconfig:"POSTGRES_DSN"`
	SessionBackend     string `split_words:"true" default:"memory"`
	SessionID          string `split_words:"true" default:"cli"`
	HistoryWindow      int    `split_words:"true" default:"10"`
	ExtractLookback    int    `split_words:"true" default:"6"`
	AutoCancelOnLookup bool   `split_words:"true" default:"false"`
	ProbeModel         bool   `split_words:"true" default:"true"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")

	records, closeRecords, err := openRecordStore(ctx, *appCfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", appCfg.StoreBackend).Msg("open record store")
	}
	defer closeRecords()

	sessions, err := openSessionStore(*appCfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", appCfg.SessionBackend).Msg("open session store")
	}

	notifier, err := openNotifier()
	if err != nil {
		log.Fatal().Err(err).Msg("open notifier")
	}

	if appCfg.ProbeModel {
		orCfg := llmCfg.OpenRouterFor(contractx.AgentTypeArbiter)
		if err := openrouterx.ProbeModel(ctx, openrouterx.NewClient(orCfg), orCfg.Model); err != nil {
			log.Fatal().Err(err).Msg("probe model")
		}
	}

	completer, err := completion.NewFromConfig(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create completion service")
	}

	arb, err := arbiterx.New(sessions, completer, toolx.New(records), notifier, arbiterx.Config{
		HistoryWindow:      appCfg.HistoryWindow,
		ExtractLookback:    appCfg.ExtractLookback,
		AutoCancelOnLookup: appCfg.AutoCancelOnLookup,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create arbiter")
	}

	log.Info().
		Str("store", appCfg.StoreBackend).
		Str("sessions", appCfg.SessionBackend).
		Str("model", llmCfg.OpenRouterFor(contractx.AgentTypeArbiter).Model).
		Msg("reservation assistant ready")

	if err := runREPL(ctx, arb, appCfg.SessionID, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("repl stopped")
	}
}
