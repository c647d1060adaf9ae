package backend

import (
	"context"
	"fmt"

	"saldo/internal/config"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/notify"
	"saldo/internal/storage"
	"saldo/internal/storage/file"
	"saldo/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		kv  storage.KV
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		kv, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case FileBackend:
		kv, err = file.New(config.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized file backend", "data_directory", config.DataDirectory)
	case MemoryBackend:
		kv = memory.NewFromFiles(config.DataDirectory)
		f.logger.InfoContext(ctx, "Initialized memory backend", "seed_directory", config.DataDirectory)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	return &BackendResult{
		KV:        kv,
		Publisher: f.createPublisher(ctx, config),
		Cleanup:   kv.Close,
	}, nil
}

// createPublisher connects the change feed. A broker that cannot be reached
// disables the feed instead of failing start-up.
func (f *DefaultFactory) createPublisher(ctx context.Context, config Config) notify.Publisher {
	if config.AMQPURL == "" {
		return notify.Nop{}
	}
	client, err := notify.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change feed", log.FieldError, err)
		return notify.Nop{}
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// OpenLedger builds the configured backend and loads the ledger from it.
// Closing the returned store releases the backend.
func OpenLedger(ctx context.Context, appConfig *config.Config, logger *log.Logger) (*ledger.Store, error) {
	cfg, err := FromAppConfig(appConfig)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	res, err := NewFactory(logger).CreateBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	return ledger.Open(ctx, res.KV,
		ledger.WithPublisher(res.Publisher),
		ledger.WithLogger(logger),
	), nil
}
