// Package main реализует точку входа сервиса заметок texter.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	kivik "github.com/go-kivik/kivik/v4"
	"go.uber.org/zap"

	"texter/internal/texter/adapters/couchdb"
	"texter/internal/texter/adapters/grpc"
	httpServer "texter/internal/texter/adapters/http"
	"texter/internal/texter/adapters/mail"
	"texter/internal/texter/adapters/postgres"
	"texter/internal/texter/adapters/services"
	"texter/internal/texter/adapters/session"
	"texter/internal/texter/app"
	"texter/internal/texter/config"
	"texter/internal/texter/db"
	"texter/internal/texter/ports/repositories"
	"texter/internal/texter/resilience"
	"texter/pkg/db/redis"
	"texter/pkg/logger"
	"texter/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "TEXTER_LOGGER_MODE"
	EnvLoggerLevel = "TEXTER_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitRedis            = "failed to create Redis client"
	ErrInitCouchDB          = "failed to connect to CouchDB"
	ErrInitMailer           = "failed to create mailer"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrStartGRPC            = "failed to start gRPC server"
	ErrShutdown             = "shutdown finished with errors"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "texter service started"
	LogServiceShutdownDone = "texter service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing Redis connection"
	LogClosingCouchDB      = "closing CouchDB client"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingGRPC        = "stopping gRPC server"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		database, err := db.New(ctx, &cfg.Postgres)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}
		defer func() {
			log.Info(ctx, LogClosingDB)
			database.Close(ctx)
		}()

		redisClient, err := redis.NewClient(ctx, cfg.Redis.ClientConfig())
		if err != nil {
			log.Error(ctx, ErrInitRedis, zap.Error(err))
			exitCode = 1
			return
		}
		defer func() {
			if err := redisClient.Close(ctx); err != nil {
				log.Warn(ctx, LogClosingRedis, zap.Error(err))
			}
		}()

		log.Info(ctx, LogInitRepo)
		repoFactory := postgres.NewRepositoryFactory(database.Pool())
		userRepo := repoFactory.UserRepository()

		probes := map[string]grpc.Probe{
			"postgres": database.Ping,
			"redis":    redisClient.Ping,
		}

		noteRepo, couchClient, err := noteRepository(ctx, cfg, repoFactory)
		if err != nil {
			log.Error(ctx, ErrInitCouchDB, zap.Error(err))
			exitCode = 1
			return
		}
		if couchClient != nil {
			defer func() {
				if err := couchClient.Close(); err != nil {
					log.Warn(ctx, LogClosingCouchDB, zap.Error(err))
				}
			}()
			probes["couchdb"] = func(ctx context.Context) error {
				ok, err := couchClient.Ping(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("couchdb is not reachable")
				}
				return nil
			}
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(cfg.Auth)
		sessionStore := session.NewRedisStore(redisClient.RawClient(), cfg.Redis.KeyPrefix)

		mailer, err := mail.NewSMTPMailer(cfg.Mail, resilience.NewServiceResilience("smtp", cfg.Resilience.Settings()))
		if err != nil {
			log.Error(ctx, ErrInitMailer, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitUseCases)
		authUseCase := app.NewAuthUseCase(
			userRepo,
			serviceFactory.PasswordService(),
			serviceFactory.TokenService(),
			sessionStore,
			mailer,
			app.AuthOptions{
				ResetCodeTTL:  cfg.Auth.ResetCodeTTL,
				ResetCodeSize: cfg.Auth.ResetCodeSize,
			},
		)
		noteUseCase := app.NewNoteUseCase(noteRepo, sessionStore, app.NoteOptions{
			PageSize:     cfg.Notes.PageSize,
			StrictDelete: cfg.Notes.StrictDelete,
		})

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := httpServer.NewApp(&cfg.HTTP)
		httpServer.SetupRouter(fiberApp, log, httpServer.SecurityFromConfig(&cfg.HTTP), authUseCase, noteUseCase)

		grpcServer := grpc.New(&cfg.GRPC, probes)
		if err := grpcServer.Start(ctx); err != nil {
			log.Error(ctx, ErrStartGRPC, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		err = shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return fiberApp.ShutdownWithContext(ctx)
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingGRPC)
				grpcServer.Stop(ctx)
				return nil
			},
		)
		if err != nil {
			log.Warn(ctx, ErrShutdown, zap.Error(err))
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// noteRepository выбирает хранилище заметок по конфигурации.
func noteRepository(
	ctx context.Context,
	cfg *config.Config,
	factory *postgres.RepositoryFactory,
) (repositories.NoteRepository, *kivik.Client, error) {
	if cfg.Notes.Backend != config.BackendCouchDB {
		return factory.NoteRepository(), nil, nil
	}

	dsn, err := cfg.CouchDB.GetDSN()
	if err != nil {
		return nil, nil, err
	}

	client, err := couchdb.Connect(ctx, dsn, cfg.CouchDB.Database)
	if err != nil {
		return nil, nil, err
	}

	return couchdb.NewNoteRepository(client, cfg.CouchDB.Database), client, nil
}
