package memory

import (
	"sync"

	"go.uber.org/zap"
	"notify_hub/internal/model"
)

type Store struct {
	mu      sync.Mutex
	records map[string]model.Notification
	byKey   map[string]string
	log     *zap.Logger
}

func New(logger *zap.Logger) *Store {
	return &Store{
		records: make(map[string]model.Notification),
		byKey:   make(map[string]string),
		log:     logger,
	}
}
