package config

import (
	"fmt"
)

// GRPCConfig конфигурация gRPC сервера проверки здоровья.
type GRPCConfig struct {
	Host          string `yaml:"host" env:"TEXTER_GRPC_HOST" env-default:"0.0.0.0"`
	Port          int    `yaml:"port" env:"TEXTER_GRPC_PORT" env-default:"50051"`
	Reflection    bool   `yaml:"reflection" env:"TEXTER_GRPC_REFLECTION" env-default:"true"`
	ProbeInterval int    `yaml:"probe_interval" env:"TEXTER_GRPC_PROBE_INTERVAL" env-default:"10"`
}

// GetAddress возвращает адрес для gRPC сервера.
func (g *GRPCConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}
