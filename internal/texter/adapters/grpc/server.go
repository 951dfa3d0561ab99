// Package grpc предоставляет gRPC сервер проверки здоровья сервиса texter.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"texter/internal/texter/config"
	"texter/pkg/logger"
)

// Константы для логирования.
const (
	LogServerStarting = "Starting gRPC server"
	LogServerStarted  = "gRPC server started"
	LogServerStopping = "Stopping gRPC server"
	LogServerStopped  = "gRPC server stopped"
	LogProbeFailed    = "dependency probe failed"
	ErrServerStart    = "failed to start gRPC server"

	defaultProbeInterval = 10 * time.Second
)

// Probe проверяет доступность одной зависимости.
type Probe func(ctx context.Context) error

// Server представляет gRPC сервер со службой health.
type Server struct {
	cfg    *config.GRPCConfig
	server *grpc.Server
	health *health.Server
	probes map[string]Probe

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создает gRPC сервер. Каждый probe публикуется как отдельная служба health,
// общий статус "" обслуживается только если все probe успешны.
func New(cfg *config.GRPCConfig, probes map[string]Probe) *Server {
	s := &Server{
		cfg:    cfg,
		server: grpc.NewServer(),
		health: health.NewServer(),
		probes: probes,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	if cfg.Reflection {
		reflection.Register(s.server)
	}
	return s
}

// Health возвращает реализацию службы health.
func (s *Server) Health() *health.Server {
	return s.health
}

// CheckNow выполняет все probe и обновляет статусы служб.
func (s *Server) CheckNow(ctx context.Context) {
	log := logger.Log(ctx)

	overall := healthpb.HealthCheckResponse_SERVING
	for name, probe := range s.probes {
		status := healthpb.HealthCheckResponse_SERVING
		if err := probe(ctx); err != nil {
			log.Warn(ctx, LogProbeFailed, zap.String("dependency", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
		}
		s.health.SetServingStatus(name, status)
	}
	s.health.SetServingStatus("", overall)
}

// Start запускает gRPC сервер и периодическую проверку зависимостей.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)
	address := s.cfg.GetAddress()

	log.Info(ctx, LogServerStarting, zap.String("address", address))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error(ctx, ErrServerStart, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrServerStart, err)
	}

	s.CheckNow(ctx)

	probeCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.probeLoop(probeCtx)
	}()

	go func() {
		if err := s.server.Serve(listener); err != nil {
			log.Error(ctx, ErrServerStart, zap.Error(err))
		}
	}()

	log.Info(ctx, LogServerStarted, zap.String("address", listener.Addr().String()))
	return nil
}

func (s *Server) probeLoop(ctx context.Context) {
	interval := time.Duration(s.cfg.ProbeInterval) * time.Second
	if interval <= 0 {
		interval = defaultProbeInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckNow(ctx)
		}
	}
}

// Stop переводит службы в NOT_SERVING и останавливает сервер.
func (s *Server) Stop(ctx context.Context) {
	log := logger.Log(ctx)

	log.Info(ctx, LogServerStopping)
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.health.Shutdown()
	s.server.GracefulStop()
	log.Info(ctx, LogServerStopped)
}
