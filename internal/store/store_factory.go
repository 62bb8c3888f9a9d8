package store

import (
	"go.uber.org/zap"
	"notify_hub/internal/config"
	"notify_hub/internal/db"
	"notify_hub/internal/repository"
	"notify_hub/internal/store/memory"
	"notify_hub/internal/store/mysql"
	"notify_hub/internal/store/sqlite"
)

func NewStore(cfg *config.Config, logger *zap.Logger) (repository.NotificationRepository, error) {
	switch {
	case cfg.MySQLDSN != "":
		sqlDB, err := mysql.Open(cfg.MySQLDSN)
		if err != nil {
			logger.Error("mysql open failed", zap.Error(err))
			return nil, err
		}
		if err := sqlDB.Ping(); err != nil {
			logger.Error("mysql ping failed", zap.Error(err))
			return nil, err
		}
		return mysql.New(db.New(sqlDB), logger), nil
	case cfg.SQLitePath != "":
		s, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("sqlite open failed", zap.String("path", cfg.SQLitePath), zap.Error(err))
			return nil, err
		}
		return s, nil
	default:
		logger.Info("no database configured, using in-memory store")
		return memory.New(logger), nil
	}
}
