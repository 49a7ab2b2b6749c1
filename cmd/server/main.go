package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/kyberos/mission-control/config"
	"github.com/kyberos/mission-control/internal/repositories/calendarevent"
	"github.com/kyberos/mission-control/internal/repositories/content"
	"github.com/kyberos/mission-control/internal/repositories/memory"
	"github.com/kyberos/mission-control/internal/repositories/metric"
	"github.com/kyberos/mission-control/internal/repositories/project"
	"github.com/kyberos/mission-control/internal/repositories/task"
	"github.com/kyberos/mission-control/internal/repositories/teammember"
	"github.com/kyberos/mission-control/pkg/database"
	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/kafka"
	"github.com/kyberos/mission-control/pkg/localstore"
	"github.com/kyberos/mission-control/pkg/middleware"
	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/routes/calendar"
	contentroutes "github.com/kyberos/mission-control/pkg/routes/content"
	"github.com/kyberos/mission-control/pkg/routes/health"
	"github.com/kyberos/mission-control/pkg/routes/login"
	"github.com/kyberos/mission-control/pkg/routes/memories"
	"github.com/kyberos/mission-control/pkg/routes/metrics"
	"github.com/kyberos/mission-control/pkg/routes/projects"
	"github.com/kyberos/mission-control/pkg/routes/syncjobs"
	"github.com/kyberos/mission-control/pkg/routes/tasks"
	"github.com/kyberos/mission-control/pkg/routes/team"
	"github.com/kyberos/mission-control/pkg/seed"
	"github.com/kyberos/mission-control/pkg/startup"
	"github.com/kyberos/mission-control/pkg/sync/cronsync"
	"github.com/kyberos/mission-control/pkg/sync/memorysync"
	"github.com/kyberos/mission-control/pkg/tracing"
	"github.com/kyberos/mission-control/pkg/tracing/exporters"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initTracing(ctx, cfg, logger)

	dbDep := &databaseDependency{cfg: cfg, logger: logger}
	kafkaDep := &kafkaDependency{cfg: cfg, logger: logger}

	boot := startup.New(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(dbDep)
	boot.AddDependency(kafkaDep)

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("startup failed")
		os.Exit(1)
	}
	defer func() {
		if err := boot.Stop(context.Background()); err != nil {
			logger.WithError(err).Error("shutdown cleanup failed")
		}
	}()

	db := dbDep.instance

	taskRepo := task.NewRepository(db, logger)
	contentRepo := content.NewRepository(db, logger)
	calendarRepo := calendarevent.NewRepository(db, logger)
	memoryRepo := memory.NewRepository(db, logger)
	teamRepo := teammember.NewRepository(db, logger)
	metricRepo := metric.NewRepository(db, logger)
	projectRepo := project.NewRepository(db, logger)

	local := localstore.New(cfg.DataDir, logger)
	accessor := resolve.NewAccessor(resolve.Stores{
		Tasks:    taskRepo,
		Content:  contentRepo,
		Calendar: calendarRepo,
		Memories: memoryRepo,
		Team:     teamRepo,
		Metrics:  metricRepo,
		Projects: projectRepo,
	}, local, logger, resolve.DefaultFallbackPolicy)

	memSync := memorysync.New(cfg.MemoryDir, memoryRepo, logger)
	cronSync := cronsync.New(cfg.CrontabPath, calendarRepo, logger)
	emitter := events.NewEmitter(kafkaDep.producer, logger)

	if err := registerDependencies(taskRepo, contentRepo, calendarRepo, memoryRepo, teamRepo, accessor, memSync, cronSync, emitter); err != nil {
		logger.WithError(err).Error("failed to register dependencies")
		os.Exit(1)
	}

	if cfg.SeedOnStart {
		seeder := seed.New(taskRepo, contentRepo, calendarRepo, memoryRepo, teamRepo, memSync, cronSync, logger)
		if err := seeder.Run(ctx); err != nil {
			logger.WithError(err).Error("seeding failed")
		}
	}

	e := newServer(cfg, logger, db)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server stopped")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func initTracing(ctx context.Context, cfg config.Config, logger ectologger.Logger) {
	var exporter sdktrace.SpanExporter = &exporters.ConsoleExporter{}
	if cfg.OTLPEndpoint != "" {
		otlp, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
		})
		if err != nil {
			logger.WithError(err).Error("failed to create OTLP exporter, traces stay local")
		} else {
			exporter = otlp
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))
}

func registerDependencies(
	taskRepo *task.Repository,
	contentRepo *content.Repository,
	calendarRepo *calendarevent.Repository,
	memoryRepo *memory.Repository,
	teamRepo *teammember.Repository,
	accessor *resolve.Accessor,
	memSync *memorysync.Synchronizer,
	cronSync *cronsync.Synchronizer,
	emitter *events.Emitter,
) error {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}

	if err := ectoinject.RegisterInstance[*task.Repository](container, taskRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*content.Repository](container, contentRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*calendarevent.Repository](container, calendarRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*memory.Repository](container, memoryRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*teammember.Repository](container, teamRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*resolve.Accessor](container, accessor); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*memorysync.Synchronizer](container, memSync); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*cronsync.Synchronizer](container, cronSync); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*events.Emitter](container, emitter); err != nil {
		return err
	}

	return nil
}

func newServer(cfg config.Config, logger ectologger.Logger, db *database.DatabaseInstance) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowCredentials: true,
	}))

	if cfg.DashboardPassword != "" {
		e.Use(middleware.Authentication(logger, cfg.DashboardPassword))
	} else {
		logger.Warn("MISSION_CONTROL_PASSWORD is not set, api is unauthenticated")
	}

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	checker := health.NewChecker(db.DB, cfg.Version)
	checker.RegisterRoutes(e)
	checker.SetReady(true)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	login.Register(api.Group("/login"), cfg.DashboardPassword)
	tasks.Register(api.Group("/tasks"))
	contentroutes.Register(api.Group("/content"))
	calendar.Register(api.Group("/calendar"))
	memories.Register(api.Group("/memories"))
	team.Register(api.Group("/team"))
	metrics.Register(api.Group("/metrics"))
	projects.Register(api.Group("/projects"))
	syncjobs.Register(api.Group("/sync"))

	return e
}

// databaseDependency connects to the primary store and applies migrations
type databaseDependency struct {
	cfg      config.Config
	logger   ectologger.Logger
	instance *database.DatabaseInstance
}

func (d *databaseDependency) GetName() string {
	return "database"
}

func (d *databaseDependency) DependsOn() []string {
	return nil
}

func (d *databaseDependency) Start(ctx context.Context) error {
	instance, err := database.Connect(ctx, database.ConnectionConfig{
		Driver:          d.cfg.DatabaseDriver,
		Host:            d.cfg.DatabaseHost,
		Port:            d.cfg.DatabasePort,
		UserName:        d.cfg.DatabaseUserName,
		Password:        d.cfg.DatabasePassword,
		Name:            d.cfg.DatabaseName,
		SSLMode:         d.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.cfg.DatabaseConnMaxLifetime,
	}, d.logger)
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(instance.DB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrations := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
	})
	if err := migrations.Migrate(d.cfg.DatabaseName, driver); err != nil {
		return err
	}

	d.instance = instance
	return nil
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.instance == nil {
		return nil
	}
	return d.instance.Close()
}

// kafkaDependency builds the event producer when eventing is enabled
type kafkaDependency struct {
	cfg      config.Config
	logger   ectologger.Logger
	producer *kafka.Producer
}

func (d *kafkaDependency) GetName() string {
	return "kafka"
}

func (d *kafkaDependency) DependsOn() []string {
	return nil
}

func (d *kafkaDependency) Start(ctx context.Context) error {
	if !d.cfg.KafkaEnabled {
		d.logger.Info("kafka eventing disabled")
		return nil
	}

	d.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      d.cfg.KafkaBrokers,
		Topic:        d.cfg.KafkaOutputTopic,
		BatchSize:    d.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(d.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: d.cfg.KafkaRequiredAcks,
		Compression:  d.cfg.KafkaCompression,
	}, d.logger)
	return nil
}

func (d *kafkaDependency) Stop(ctx context.Context) error {
	if d.producer == nil {
		return nil
	}
	return d.producer.Close()
}
