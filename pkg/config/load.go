// Package config предоставляет функциональность для загрузки конфигурации из переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"texter/pkg/logger"
)

// EnvFileVariable - переменная окружения с путем к dotenv-файлу.
const EnvFileVariable = "TEXTER_ENV_FILE"

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgFailedLoadConfiguration = "failed to load configuration"
	msgEnvFileSkipped          = "env file not found, using process environment"

	errFailedLoadEnvFile       = "failed to load env file"
	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// DefaultEnvFile возвращает путь к dotenv-файлу по умолчанию.
func DefaultEnvFile() string {
	return filepath.Join("deploy", ".env")
}

// Load загружает конфигурацию типа T: сначала необязательный dotenv-файл,
// затем переменные окружения по тегам cleanenv.
// Значения, уже заданные в окружении процесса, не перезаписываются файлом.
func Load[T any](ctx context.Context, serviceName string) (*T, error) {
	log := logger.Log(ctx)

	envPath := os.Getenv(EnvFileVariable)
	if envPath == "" {
		envPath = DefaultEnvFile()
	}

	log.Info(ctx, msgLoadingConfiguration,
		zap.String(attrService, serviceName),
		zap.String(attrPath, envPath))

	if err := godotenv.Load(envPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Error(ctx, msgFailedLoadConfiguration,
				zap.String(attrService, serviceName),
				zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errFailedLoadEnvFile, err)
		}
		log.Debug(ctx, msgEnvFileSkipped, zap.String(attrPath, envPath))
	}

	var cfg T
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, msgFailedLoadConfiguration,
			zap.String(attrService, serviceName),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded,
		zap.String(attrService, serviceName))

	return &cfg, nil
}
