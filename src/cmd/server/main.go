package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	httpadapter "feedbackflow/src/adapters/http"
	"feedbackflow/src/adapters/kafka/consumers"
	"feedbackflow/src/domain"
	"feedbackflow/src/domain/entities"
	"feedbackflow/src/helper/env"
	"feedbackflow/src/infra/kafka"
	"feedbackflow/src/infra/metrics"
	"feedbackflow/src/infra/postgres"
	"feedbackflow/src/infra/redis"
	"feedbackflow/src/repositories"
	"feedbackflow/src/services/audit"
	"feedbackflow/src/services/events"
	"feedbackflow/src/services/feedback"
	"feedbackflow/src/services/optimistic"
	"feedbackflow/src/services/signature"
	"feedbackflow/src/services/survey"
	"feedbackflow/src/services/workspace"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting FeedbackFlow API with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newPrometheusRegistry,
			newMetrics,
			newReadWriteClient,
			newRedisClient,
			newKafkaClient,
			newChangePublisher,
			newUserRepository,
			newAuditService,
			newRemotes,
			newRegistry,
			newFeedbackRepository,
			newFeedbackService,
			newSurveyService,
			newSignatureService,
			newServer,
			newChangeFeedConsumer,
		),

		// Invocations
		fx.Invoke(
			registerInfraHooks,
			registerConsumerHooks,
			registerServerHooks,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h).With("service", "feedbackflow-api")
	slog.SetDefault(logger)
	return logger
}

func newPrometheusRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func newMetrics(registry *prometheus.Registry) *metrics.Metrics {
	return metrics.New(registry)
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	writeHost := env.MustGetString("DB_WRITE_HOST")

	return postgres.NewReadWriteClient(postgres.Config{
		ReadHost:       env.GetString("DB_READ_HOST", writeHost),
		WriteHost:      writeHost,
		Port:           env.GetString("DB_PORT", "5432"),
		DBName:         env.MustGetString("DB_NAME"),
		Username:       env.MustGetString("DB_USER"),
		Password:       env.MustGetString("DB_PASSWORD"),
		MaxConnections: env.GetInt("DB_MAX_POOL_CONNECTIONS", 25),
	})
}

func newRedisClient() *redis.RedisClient {
	redisHosts := env.MustGetString("REDIS_HOSTS")
	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTL := env.GetDuration("REDIS_DEFAULT_TTL", 2*time.Minute)

	return redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL, env.GetString("REDIS_KEY_PREFIX", "feedbackflow"))
}

// newKafkaClient devolve nil quando KAFKA_BROKERS não está definido: a API
// funciona sem change feed, só sem atualização em tempo real entre instâncias.
func newKafkaClient(logger *slog.Logger) (*kafka.KafkaClient, error) {
	brokers := env.GetString("KAFKA_BROKERS", "")
	if brokers == "" {
		logger.Warn("KAFKA_BROKERS not set, change feed disabled")
		return nil, nil
	}

	// Cada instância precisa receber todos os eventos: o group id é por host.
	hostname, _ := os.Hostname()
	groupID := env.GetString("KAFKA_CONSUMER_GROUP_ID", "feedbackflow-api-"+hostname)
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(brokers, groupID, batchSize, logger)
}

func changesTopic() string {
	return env.GetString("KAFKA_CHANGES_TOPIC", "feedbackflow.changes")
}

func newChangePublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient, m *metrics.Metrics) *events.ChangePublisher {
	if kafkaClient == nil {
		return nil
	}
	return events.NewChangePublisher(logger, kafkaClient, changesTopic(), func(entity string) {
		m.ChangeEventsTotal.WithLabelValues("published", entity).Inc()
	})
}

func publicBaseURL() string {
	return env.GetString("PUBLIC_BASE_URL", "http://localhost:8888")
}

func newUserRepository(readWriteClient *postgres.ReadWriteClient) *repositories.UserRepository {
	return repositories.NewUserRepository(readWriteClient)
}

func newAuditService(logger *slog.Logger, readWriteClient *postgres.ReadWriteClient, m *metrics.Metrics) *audit.AuditService {
	return audit.NewAuditService(logger, repositories.NewAuditRepository(readWriteClient), m)
}

func newRemotes(
	logger *slog.Logger,
	readWriteClient *postgres.ReadWriteClient,
	userRepository *repositories.UserRepository,
	redisClient *redis.RedisClient,
	publisher *events.ChangePublisher,
	auditService *audit.AuditService,
	m *metrics.Metrics,
) workspace.Remotes {
	opts := []repositories.CachedListOption{
		repositories.WithListCache(redisClient),
		repositories.WithAuditor(auditService),
		repositories.WithCacheObserver(m.ObserveCacheLookup),
	}
	if publisher != nil {
		opts = append(opts, repositories.WithChangeNotifier(publisher))
	}

	return workspace.Remotes{
		Groups: repositories.NewCachedListRepository[entities.Group, domain.GroupDraft, domain.GroupPatch](
			logger, domain.KindGroup, repositories.NewGroupRepository(readWriteClient), opts...),
		Locations: repositories.NewCachedListRepository[entities.Location, domain.LocationDraft, domain.LocationPatch](
			logger, domain.KindLocation, repositories.NewLocationRepository(readWriteClient), opts...),
		Users: repositories.NewCachedListRepository[entities.User, domain.UserDraft, domain.UserPatch](
			logger, domain.KindUser, userRepository, opts...),
	}
}

func newRegistry(logger *slog.Logger, remotes workspace.Remotes, m *metrics.Metrics) *workspace.Registry {
	return workspace.NewRegistry(logger, remotes, func(kind domain.EntityKind, op optimistic.Operation, outcome optimistic.Outcome) {
		m.ObserveMutation(string(kind), string(op), string(outcome))
	})
}

func newFeedbackRepository(readWriteClient *postgres.ReadWriteClient) *repositories.FeedbackRepository {
	return repositories.NewFeedbackRepository(readWriteClient)
}

func newFeedbackService(
	logger *slog.Logger,
	feedbackRepository *repositories.FeedbackRepository,
	redisClient *redis.RedisClient,
	auditService *audit.AuditService,
	m *metrics.Metrics,
) *feedback.FeedbackService {
	return feedback.NewFeedbackService(
		logger,
		feedbackRepository,
		redisClient,
		m,
		auditService,
		env.GetInt("FEEDBACK_RATE_LIMIT", feedback.DefaultSubmissionLimit),
		env.GetDuration("FEEDBACK_RATE_WINDOW", feedback.DefaultSubmissionWindow),
	)
}

func newSurveyService(logger *slog.Logger, readWriteClient *postgres.ReadWriteClient, auditService *audit.AuditService) *survey.SurveyService {
	return survey.NewSurveyService(logger, repositories.NewSurveyRepository(readWriteClient), auditService)
}

func newSignatureService(
	logger *slog.Logger,
	readWriteClient *postgres.ReadWriteClient,
	userRepository *repositories.UserRepository,
	auditService *audit.AuditService,
) *signature.SignatureService {
	return signature.NewSignatureService(logger, repositories.NewSignatureRepository(readWriteClient), userRepository, auditService, publicBaseURL())
}

func newServer(
	logger *slog.Logger,
	registry *workspace.Registry,
	feedbackService *feedback.FeedbackService,
	surveyService *survey.SurveyService,
	signatureService *signature.SignatureService,
	auditService *audit.AuditService,
	m *metrics.Metrics,
	promRegistry *prometheus.Registry,
	readWriteClient *postgres.ReadWriteClient,
	redisClient *redis.RedisClient,
) (*httpadapter.Server, error) {
	trustedProxies, err := httpadapter.ParseTrustedProxies(env.GetString("TRUSTED_PROXIES", ""))
	if err != nil {
		return nil, err
	}

	cfg := httpadapter.Config{
		Port:           env.GetInt("SERVER_PORT", 8888),
		PublicBaseURL:  publicBaseURL(),
		TrustedProxies: trustedProxies,
	}
	services := httpadapter.Services{
		Feedback:   feedbackService,
		Surveys:    surveyService,
		Signatures: signatureService,
		Audit:      auditService,
	}

	return httpadapter.NewServer(logger, cfg, registry, services, m, promRegistry, map[string]httpadapter.HealthCheck{
		"postgres": readWriteClient.Ping,
		"redis":    redisClient.HealthCheck,
	}), nil
}

func newChangeFeedConsumer(logger *slog.Logger, registry *workspace.Registry, m *metrics.Metrics) *consumers.ChangeFeedConsumer {
	return consumers.NewChangeFeedConsumer(logger, registry, func(entity string) {
		m.ChangeEventsTotal.WithLabelValues("consumed", entity).Inc()
	})
}

// registerInfraHooks fecha os clients depois que servidor e consumer pararam.
func registerInfraHooks(lc fx.Lifecycle, logger *slog.Logger, readWriteClient *postgres.ReadWriteClient, redisClient *redis.RedisClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			readWriteClient.Close()
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close redis client", "error", err)
			}
			return nil
		},
	})
}

func registerConsumerHooks(
	lc fx.Lifecycle,
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	consumer *consumers.ChangeFeedConsumer,
	registry *workspace.Registry,
) {
	if kafkaClient == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := consumer.Start(ctx, kafkaClient, changesTopic()); err != nil {
					logger.Error("Change feed consumer stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			registry.CloseAll()
			return kafkaClient.Close()
		},
	})
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *httpadapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}
			log.Println("Server exited gracefully")
			return nil
		},
	})
}
