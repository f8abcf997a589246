package backend

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type publisherDialer func(ctx context.Context, cfg Config, logger *log.Logger) (amqp.Publisher, error)

func dialPublisher(ctx context.Context, cfg Config, logger *log.Logger) (amqp.Publisher, error) {
	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	dial   publisherDialer
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial:   dialPublisher,
	}
}

// CreateBackend opens the configured slot. A broker that cannot be reached
// is logged and skipped; the store works without notifications.
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slot, err := f.createSlot(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{Slot: slot, Cleanup: slot.Close}

	if cfg.AMQPURL != "" {
		pub, err := f.dial(ctx, cfg, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without notifications",
				log.FieldError, err.Error())
		} else {
			result.Publisher = pub
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"routing_key", cfg.AMQPRoutingKey)
		}
	}

	return result, nil
}

func (f *DefaultFactory) createSlot(cfg Config) (storage.Slot, error) {
	switch cfg.Type {
	case MemoryBackend:
		f.logger.Info("Initialized memory backend; state will not survive a restart")
		return storage.NewMemorySlot(), nil

	case FileBackend:
		slot, err := storage.NewFileSlot(cfg.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file backend: %w", err)
		}
		f.logger.Info("Initialized file backend", "data_directory", slot.Dir())
		return slot, nil

	case SQLiteBackend:
		slot, err := storage.NewSQLiteSlot(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", slot.Path())
		return slot, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
