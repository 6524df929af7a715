package backend

import (
	"context"
	"fmt"

	"expenses/internal/amqp"
	"expenses/internal/events"
	"expenses/internal/kafka"
	"expenses/internal/ledger"
	"expenses/internal/log"
	"expenses/internal/storage"
	"expenses/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the configured ledger and seeds it when asked to.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case PostgresBackend:
		result, err = f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.SeedSampleData {
		if err := f.seed(ctx, result.Ledger); err != nil {
			if result.Cleanup != nil {
				result.Cleanup()
			}
			return nil, err
		}
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", log.FieldBackend, config.Type.String(), "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Ledger:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := postgres.NewRepository(ctx, config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}

	f.logger.Info("Initialized Postgres backend", log.FieldBackend, config.Type.String())

	return &BackendResult{
		Ledger:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	store := ledger.NewStore()

	f.logger.Info("Initialized memory backend", log.FieldBackend, MemoryBackend.String())

	return &BackendResult{
		Ledger:  store,
		Cleanup: store.Close,
	}, nil
}

// seed loads the sample fixture, but only into an empty ledger so restarts
// of a persistent backend do not duplicate it.
func (f *DefaultFactory) seed(ctx context.Context, l ledger.Ledger) error {
	existing, err := l.List(ctx, ledger.Filter{})
	if err != nil {
		return fmt.Errorf("check ledger before seeding: %w", err)
	}
	if len(existing) > 0 {
		f.logger.Info("Ledger not empty, skipping sample data", log.FieldCount, len(existing))
		return nil
	}

	seeded, err := ledger.Seed(ctx, l, ledger.SampleExpenses())
	if err != nil {
		return fmt.Errorf("seed sample data: %w", err)
	}
	f.logger.Info("Seeded sample data", log.FieldOperation, log.OpSeed, log.FieldCount, len(seeded))
	return nil
}

// CreatePublisher connects to the configured bus. An unreachable AMQP
// broker is not fatal: the ledger keeps working without events.
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) (events.Publisher, error) {
	switch config.Events {
	case "", NoEvents:
		return events.Nop{}, nil

	case AMQPEvents:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
			return events.Nop{}, nil
		}
		f.logger.InfoContext(ctx, "Initialized AMQP client",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return client, nil

	case KafkaEvents:
		// kafka.Writer connects lazily; errors surface on first publish
		p := kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic)
		f.logger.InfoContext(ctx, "Initialized Kafka publisher",
			"brokers", config.KafkaBrokers,
			"topic", config.KafkaTopic)
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported events backend: %s", config.Events)
	}
}
