package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bidding-service/internal/adapters/broadcaster"
	"bidding-service/internal/adapters/db"
	"bidding-service/internal/adapters/dispatch"
	"bidding-service/internal/adapters/kafka"
	"bidding-service/internal/adapters/memory"
	"bidding-service/internal/adapters/redis"
	"bidding-service/internal/adapters/rest"
	"bidding-service/internal/adapters/scheduler"
	"bidding-service/internal/adapters/ws"
	"bidding-service/internal/app"
	"bidding-service/internal/config"
	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/outbound"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Bidding Service...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var repos outbound.Repositories
	switch cfg.Database.Driver {
	case config.DriverMemory:
		repos = memory.NewRepositoryFactory(memory.NewStore()).GetAllRepositories()
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
	default:
		dbConn, err := db.NewConnection(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbConn.Close()
		log.Info().Msg("Database connection established")

		if cfg.Database.Migrations {
			if err := dbConn.Migrate(log.Logger); err != nil {
				log.Fatal().Err(err).Msg("Failed to migrate database")
			}
		}
		repos = db.NewRepositoryFactory(dbConn).GetAllRepositories()
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Repositories initialized")

	// Create Redis client
	redisClient := redis.NewClient(cfg)
	if err := redis.PingRedis(redisClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis connection established")

	locker := redis.NewLocker(redis.LockerParams{
		RedisClient: redisClient,
		TTL:         cfg.Redis.LockTTL,
		Logger:      log.Logger,
	})
	if cfg.Redis.Sequencer {
		repos.Sequencer = redis.NewSequencer(redisClient, 0)
		log.Info().Msg("Document numbering served by Redis")
	}

	if err := bootstrapAdmin(ctx, repos.Members, cfg.Lifecycle.BootstrapAdminID); err != nil {
		log.Fatal().Err(err).Msg("Failed to register bootstrap administrator")
	}

	// Notification delivery
	redisBroadcaster := broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})
	log.Info().Msg("Redis broadcaster initialized")

	var publisher outbound.IntentPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled() {
		producer = kafka.NewProducer(kafka.ProducerParams{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Logger:  log.Logger,
		})
		publisher = producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")
	}

	dispatcher := dispatch.NewDispatcher(dispatch.DispatcherParams{
		MemberRepo:        repos.Members,
		InvitationRepo:    repos.Invitations,
		ParticipationRepo: repos.Participations,
		Broadcaster:       redisBroadcaster,
		Publisher:         publisher,
		Logger:            log.Logger,
	})
	notifier := app.NewNotifier(app.NotifierParams{
		Dispatcher:  dispatcher,
		MaxWorkers:  cfg.Lifecycle.NotifyWorkers,
		MaxCapacity: cfg.Lifecycle.NotifyCapacity,
		Logger:      log.Logger,
	})

	closingScheduler := scheduler.NewClosingScheduler(scheduler.ClosingSchedulerParams{
		RedisClient: redisClient,
		Interval:    cfg.Lifecycle.SchedulerInterval,
		Logger:      log.Logger,
	})

	// Create business services
	rankPolicy := policy.New(policy.DefaultRules(), cfg.Policy)

	biddingService := app.NewBiddingService(app.BiddingServiceParams{
		BiddingRepo: repos.Biddings,
		Sequencer:   repos.Sequencer,
		Scheduler:   closingScheduler,
		Locker:      locker,
		Policy:      rankPolicy,
		Notifier:    notifier,
		Logger:      log.Logger,
	})
	invitationService := app.NewInvitationService(app.InvitationServiceParams{
		BiddingRepo:    repos.Biddings,
		InvitationRepo: repos.Invitations,
		MemberRepo:     repos.Members,
		Locker:         locker,
		Policy:         rankPolicy,
		Notifier:       notifier,
		Logger:         log.Logger,
	})
	participationService := app.NewParticipationService(app.ParticipationServiceParams{
		BiddingRepo:       repos.Biddings,
		InvitationRepo:    repos.Invitations,
		ParticipationRepo: repos.Participations,
		Locker:            locker,
		Policy:            rankPolicy,
		Notifier:          notifier,
		Logger:            log.Logger,
	})
	awardService := app.NewAwardService(app.AwardServiceParams{
		BiddingRepo:       repos.Biddings,
		ParticipationRepo: repos.Participations,
		EvaluationRepo:    repos.Evaluations,
		Locker:            locker,
		Policy:            rankPolicy,
		Notifier:          notifier,
		Logger:            log.Logger,
	})
	contractService := app.NewContractService(app.ContractServiceParams{
		BiddingRepo:       repos.Biddings,
		ParticipationRepo: repos.Participations,
		ContractRepo:      repos.Contracts,
		Sequencer:         repos.Sequencer,
		Locker:            locker,
		Policy:            rankPolicy,
		Notifier:          notifier,
		Logger:            log.Logger,
	})
	orderService := app.NewOrderService(app.OrderServiceParams{
		BiddingRepo:  repos.Biddings,
		ContractRepo: repos.Contracts,
		OrderRepo:    repos.Orders,
		Sequencer:    repos.Sequencer,
		Locker:       locker,
		Policy:       rankPolicy,
		Notifier:     notifier,
		Logger:       log.Logger,
	})

	log.Info().Msg("Business services initialized")

	// Start closing scheduler
	closingScheduler.Start(biddingService)
	log.Info().Msg("Closing scheduler started")

	api := rest.NewAPI(rest.APIParams{
		BiddingService:       biddingService,
		InvitationService:    invitationService,
		ParticipationService: participationService,
		AwardService:         awardService,
		ContractService:      contractService,
		OrderService:         orderService,
		MemberRepo:           repos.Members,
		Logger:               log.Logger,
	})

	server := ws.NewServer(ws.ServerParams{
		Config:               cfg,
		MemberRepo:           repos.Members,
		BiddingService:       biddingService,
		ParticipationService: participationService,
		Broadcaster:          redisBroadcaster,
		API:                  api.Routes(),
		Logger:               log.Logger,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start server")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping server")
	}

	closingScheduler.Stop()
	log.Info().Msg("Closing scheduler stopped")

	// Drain queued notifications before the transports go away
	notifier.Stop()

	if err := redisBroadcaster.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing broadcaster")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Kafka producer")
		}
	}

	log.Info().Msg("Graceful shutdown completed")
}

// bootstrapAdmin registers the configured administrator when it is missing
func bootstrapAdmin(ctx context.Context, members outbound.MemberRepository, rawID string) error {
	if rawID == "" {
		return nil
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return err
	}

	if _, err := members.GetByID(ctx, id); err == nil {
		return nil
	} else if !shared.IsKind(err, shared.KindNotFound) {
		return err
	}

	admin := &shared.Member{
		ID:        id,
		Name:      "administrator",
		Kind:      shared.ActorInternal,
		Rank:      shared.RankDirector,
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := members.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("member_id", id.String()).Msg("Bootstrap administrator registered")
	return nil
}

func initLogging(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Console format for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}
