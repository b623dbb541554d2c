package di

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskboard/application/serviceimpl"
	"taskboard/domain/ports"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/infrastructure/messaging"
	natspkg "taskboard/infrastructure/nats"
	"taskboard/infrastructure/postgres"
	redispkg "taskboard/infrastructure/redis"
	"taskboard/infrastructure/websocket"
	"taskboard/interfaces/api/handlers"
	"taskboard/pkg/config"
	"taskboard/pkg/logger"
	"taskboard/pkg/scheduler"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redispkg.Client // board cache (optional)
	NATSClient     *natspkg.Client  // cross-instance event fan-out (optional)
	NATSSubscriber *natspkg.Subscriber
	LocalBus       *messaging.LocalEventBus // used when NATS is off or unreachable
	EventScheduler scheduler.EventScheduler

	// Repositories
	TaskRepository      repositories.TaskRepository
	UserRepository      repositories.UserRepository
	EffortLogRepository repositories.EffortLogRepository

	// Messaging Ports
	EventPublisher  ports.TaskEventPublisherPort
	EventSubscriber ports.TaskEventSubscriberPort
	BoardCache      ports.BoardCachePort

	// Services
	TaskService      services.TaskService
	TimeGateService  services.TimeGateService
	HeartbeatService *serviceimpl.HeartbeatService

	// WebSocket & Broadcasting
	WSManager        *websocket.WebSocketManager
	EventBroadcaster *websocket.EventBroadcaster
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	c.initMessagingPorts()

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initEventBroadcaster(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Info("Configuration loaded")
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	// Database
	dbConfig := postgres.DatabaseConfig{
		Host:            c.Config.Database.Host,
		Port:            c.Config.Database.Port,
		User:            c.Config.Database.User,
		Password:        c.Config.Database.Password,
		DBName:          c.Config.Database.DBName,
		SSLMode:         c.Config.Database.SSLMode,
		MaxOpenConns:    c.Config.Database.MaxOpenConns,
		MaxIdleConns:    c.Config.Database.MaxIdleConns,
		ConnMaxLifetime: c.Config.Database.ConnMaxLifetime,
	}

	db, err := postgres.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Info("Database connected", "host", c.Config.Database.Host, "db", c.Config.Database.DBName)

	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database migrated")

	// Redis (optional - graceful degradation)
	if c.Config.Redis.Enabled {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis client initialization failed (board cache disabled)", "error", err)
		} else {
			c.RedisClient = redisClient
			logger.Info("Redis client initialized", "url", c.Config.Redis.URL)
		}
	}

	// NATS (optional - falls back to the in-process bus)
	if c.Config.NATS.Enabled {
		natsClient, err := natspkg.NewClient(natspkg.ClientConfig{
			URL:  c.Config.NATS.URL,
			Name: c.Config.App.Name,
		})
		if err != nil {
			logger.Warn("NATS client initialization failed (single-instance fan-out)", "error", err)
		} else {
			c.NATSClient = natsClient
			logger.Info("NATS client initialized", "url", c.Config.NATS.URL)
		}
	}

	c.WSManager = websocket.NewManager(c.Config.Board.WSSendBuffer)
	c.WSManager.Start()

	return nil
}

// initMessagingPorts NATS when connected, otherwise the local bus
func (c *Container) initMessagingPorts() {
	if c.RedisClient != nil {
		c.BoardCache = redispkg.NewBoardCache(c.RedisClient)
	}

	if c.NATSClient != nil {
		c.EventPublisher = messaging.NewNATSTaskEventPublisher(natspkg.NewPublisher(c.NATSClient))

		c.NATSSubscriber = natspkg.NewSubscriber(c.NATSClient.Conn())
		c.EventSubscriber = messaging.NewNATSTaskEventSubscriber(c.NATSSubscriber)

		logger.Info("Messaging ports initialized (NATS)")
		return
	}

	c.LocalBus = messaging.NewLocalEventBus()
	c.EventPublisher = c.LocalBus.Publisher()
	c.EventSubscriber = c.LocalBus.Subscriber()
	logger.Info("Messaging ports initialized (in-process bus)")
}

func (c *Container) initRepositories() error {
	c.TaskRepository = postgres.NewTaskRepository(c.DB)
	c.UserRepository = postgres.NewUserRepository(c.DB)
	c.EffortLogRepository = postgres.NewEffortLogRepository(c.DB)
	logger.Info("Repositories initialized")
	return nil
}

func (c *Container) initServices() error {
	c.TaskService = serviceimpl.NewTaskService(
		c.TaskRepository,
		c.UserRepository,
		c.EventPublisher,
		c.BoardCache,
		c.Config.Board.CacheTTL,
	)
	c.TimeGateService = serviceimpl.NewTimeGateService(c.TaskService, c.TaskRepository, c.EffortLogRepository)
	logger.Info("Services initialized")
	return nil
}

func (c *Container) initEventBroadcaster() error {
	c.EventBroadcaster = websocket.NewEventBroadcaster(c.EventSubscriber, c.WSManager)
	if err := c.EventBroadcaster.Start(); err != nil {
		return err
	}
	logger.Info("Event broadcaster started (Messaging → WebSocket)")
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()
	c.HeartbeatService = serviceimpl.NewHeartbeatService(c.Config.Board.HeartbeatCron, c.WSManager, c.EventScheduler)

	if err := c.HeartbeatService.RegisterHeartbeatJob(); err != nil {
		return err
	}

	c.EventScheduler.Start()
	logger.Info("Event scheduler started", "heartbeat_cron", c.Config.Board.HeartbeatCron)
	return nil
}

// HealthProbes dependency checks for /health
func (c *Container) HealthProbes() []handlers.HealthProbe {
	probes := []handlers.HealthProbe{
		{
			Name:     "database",
			Required: true,
			Check: func(ctx context.Context) (any, error) {
				sqlDB, err := c.DB.DB()
				if err != nil {
					return nil, err
				}
				return nil, sqlDB.PingContext(ctx)
			},
		},
		{
			Name: "nats",
			Check: func(ctx context.Context) (any, error) {
				if c.NATSClient == nil {
					return "in-process bus", nil
				}
				status := c.NATSClient.Status()
				if !status.Connected {
					return status, errors.New("nats disconnected")
				}
				return status, nil
			},
		},
		{
			Name: "redis",
			Check: func(ctx context.Context) (any, error) {
				if c.RedisClient == nil {
					return "disabled", nil
				}
				return nil, c.RedisClient.Ping(ctx)
			},
		},
		{
			Name: "observers",
			Check: func(ctx context.Context) (any, error) {
				return map[string]any{
					"clients":     c.WSManager.GetTotalClients(),
					"broadcaster": c.EventBroadcaster != nil && c.EventBroadcaster.IsRunning(),
				}, nil
			},
		},
		{
			Name: "scheduler",
			Check: func(ctx context.Context) (any, error) {
				if c.EventScheduler == nil || !c.EventScheduler.IsRunning() {
					return nil, errors.New("scheduler not running")
				}
				return c.EventScheduler.ListJobs(), nil
			},
		},
	}
	return probes
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	// Stop scheduler
	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
		logger.Info("Event scheduler stopped")
	}

	// Stop event broadcaster (unsubscribes)
	if c.EventBroadcaster != nil {
		c.EventBroadcaster.Stop()
		logger.Info("Event broadcaster stopped")
	}

	// Close observer connections
	if c.WSManager != nil {
		c.WSManager.Stop()
		logger.Info("WebSocket hub stopped")
	}

	// Stop NATS subscriber
	if c.NATSSubscriber != nil {
		c.NATSSubscriber.Stop()
		logger.Info("NATS subscriber stopped")
	}

	// Close NATS connection
	if c.NATSClient != nil {
		if err := c.NATSClient.Close(); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		} else {
			logger.Info("NATS connection closed")
		}
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	// Close database connection
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database connection", "error", err)
			} else {
				logger.Info("Database connection closed")
			}
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		TaskService:     c.TaskService,
		TimeGateService: c.TimeGateService,
		ServiceName:     c.Config.App.Name,
		HealthProbes:    c.HealthProbes(),
	}
}
