package app

import (
	"context"

	"github.com/doeshing/shellpilot/internal/application/ask"
	"github.com/doeshing/shellpilot/internal/application/doctor"
	"github.com/doeshing/shellpilot/internal/application/explain"
	"github.com/doeshing/shellpilot/internal/infrastructure/ai"
	"github.com/doeshing/shellpilot/internal/infrastructure/cache"
	"github.com/doeshing/shellpilot/internal/infrastructure/config"
	contextsnapshot "github.com/doeshing/shellpilot/internal/infrastructure/context"
	"github.com/doeshing/shellpilot/internal/infrastructure/executor"
	"github.com/doeshing/shellpilot/internal/infrastructure/history"
	"github.com/doeshing/shellpilot/internal/infrastructure/pattern"
	"github.com/doeshing/shellpilot/internal/infrastructure/safety"
	"github.com/doeshing/shellpilot/internal/pkg/logger"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Container wires application services with infrastructure adapters.
type Container struct {
	AskService     *ask.Service
	ExplainService *explain.Service
	DoctorService  *doctor.Service
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	HistoryStore   ports.HistoryRepository
	CacheStore     ports.CacheRepository
	Logger         ports.Logger
}

// BuildContainer constructs the dependency graph. The prompter is CLI
// territory and is attached by the caller.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	builder := contextsnapshot.NewBuilder()
	historyStore := history.NewSQLiteStore()
	cacheStore := cache.NewFileCache()

	engine, err := pattern.NewEngine(cfg.Patterns.RulesFile)
	if err != nil {
		log.Warn("pattern rules file unusable, using embedded defaults", map[string]interface{}{
			"file":  cfg.Patterns.RulesFile,
			"error": err.Error(),
		})
		engine, err = pattern.NewEngine("")
		if err != nil {
			return nil, err
		}
	}

	classifier, err := safety.NewClassifier(cfg.Safety.RulesFile)
	if err != nil {
		log.Warn("guardrail rules file unusable, using embedded defaults", map[string]interface{}{
			"file":  cfg.Safety.RulesFile,
			"error": err.Error(),
		})
		classifier, err = safety.NewClassifier("")
		if err != nil {
			return nil, err
		}
	}

	var requester *ai.Requester
	if cfg.AI.Enabled {
		requester, err = ai.NewRequester(cfg)
		if err != nil {
			log.Warn("ai requester unavailable, pattern engine only", map[string]interface{}{
				"error": err.Error(),
			})
			requester = nil
		}
	}

	askService := &ask.Service{
		ConfigProvider: cfgLoader,
		ContextBuilder: builder,
		Patterns:       engine,
		Classifier:     classifier,
		Executor:       executor.NewLocalExecutor(cfg.Execution.Shell),
		Logger:         log,
		HistoryStore:   historyStore,
		CacheStore:     cacheStore,
	}
	explainService := &explain.Service{
		ConfigProvider: cfgLoader,
		ContextBuilder: builder,
		Classifier:     classifier,
		Logger:         log,
	}
	if requester != nil {
		askService.Requester = requester
		explainService.Explainer = requester
	}

	doctorService := &doctor.Service{
		Config:    cfgLoader,
		Context:   builder,
		Patterns:  engine,
		Guardrail: classifier,
	}
	if requester != nil {
		doctorService.AI = requester
	}

	return &Container{
		AskService:     askService,
		ExplainService: explainService,
		DoctorService:  doctorService,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		HistoryStore:   historyStore,
		CacheStore:     cacheStore,
		Logger:         log,
	}, nil
}
