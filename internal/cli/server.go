package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"santa-agent-service/internal/app"
	"santa-agent-service/internal/catalog"
	"santa-agent-service/internal/config"
	"santa-agent-service/internal/domain"
	"santa-agent-service/internal/infra/memory"
	pgbank "santa-agent-service/internal/infra/postgres"
	rediscache "santa-agent-service/internal/infra/redis"
	"santa-agent-service/internal/letter"
	"santa-agent-service/internal/session"
	"santa-agent-service/internal/transport/httpapi"
	"santa-agent-service/internal/transport/ws"
)

const defaultCatalogURL = "https://dummyjson.com"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the agent server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	catalogURL := cfg.Catalog.BaseURL
	if catalogURL == "" {
		catalogURL = defaultCatalogURL
	}
	client := catalog.NewClient(catalogURL, config.Duration(cfg.Catalog.Timeout, 5*time.Second))

	var resolver catalog.Source = catalog.NewResolver(client, log)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		resolver = rediscache.NewResolverCache(redisClient, resolver, config.Duration(cfg.Redis.TTL, 10*time.Minute))
	}

	var bank app.QuizBank = memory.NewStaticQuizBank(sampleQuizBanks())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		bank = pgbank.NewQuizBank(pool)
	}

	service := app.NewAgentService(
		session.NewStore(),
		resolver,
		client,
		letter.NewComposer(letter.KeywordReviser{}),
		bank,
		app.NewLogSpeaker(log),
		log,
	)
	wsHandler := ws.NewHandler(service, log)
	router := httpapi.NewRouter(httpapi.NewHandler(service, log), wsHandler.ServeWS, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting santa agent service", zap.String("port", finalPort), zap.String("catalog", catalogURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizBanks seeds a few pre-authored quizzes for running without
// postgres.
func sampleQuizBanks() map[string][]domain.QuestionInput {
	return map[string][]domain.QuestionInput{
		"christmas-traditions": {
			{
				Text: "Where does Santa Claus live?",
				Answers: []domain.AnswerInput{
					{Text: "The South Pole"},
					{Text: "The North Pole", IsCorrect: true},
					{Text: "Lapland Airport"},
				},
			},
			{
				Text: "What do children traditionally leave out for Santa?",
				Answers: []domain.AnswerInput{
					{Text: "Milk and cookies", IsCorrect: true},
					{Text: "Tea and toast"},
					{Text: "Carrot soup"},
				},
			},
		},
		"reindeer-facts": {
			{
				Text: "Which reindeer has a glowing red nose?",
				Answers: []domain.AnswerInput{
					{Text: "Dasher"},
					{Text: "Blitzen"},
					{Text: "Rudolph", IsCorrect: true},
				},
			},
		},
	}
}
