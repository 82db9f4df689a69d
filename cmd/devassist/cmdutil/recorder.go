package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/papercomputeco/devassist/pkg/config"
	"github.com/papercomputeco/devassist/pkg/eventstream"
	"github.com/papercomputeco/devassist/pkg/eventstream/kafka"
	"github.com/papercomputeco/devassist/pkg/eventstream/nop"
	"github.com/papercomputeco/devassist/pkg/storage"
	"github.com/papercomputeco/devassist/pkg/storage/inmemory"
	"github.com/papercomputeco/devassist/pkg/storage/postgres"
	"github.com/papercomputeco/devassist/pkg/storage/sqlite"
	"github.com/papercomputeco/devassist/pkg/utils"
	"github.com/papercomputeco/devassist/pkg/worker"
)

// DefaultSQLiteFile is the transcript database used when storage.sqlite_path is unset.
const DefaultSQLiteFile = "transcripts.db"

// NewStorageDriver opens the configured transcript store.
func (e *Env) NewStorageDriver(ctx context.Context) (storage.Driver, error) {
	switch e.Config.Storage.Driver {
	case config.StorageSQLite:
		path := e.Config.Storage.SQLitePath
		if path == "" {
			dir, err := e.Dir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, DefaultSQLiteFile)
		}

		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		e.Logger.Info("using SQLite storage", "path", path)
		return driver, nil

	case config.StoragePostgres:
		if e.Config.Storage.PostgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for the postgres driver")
		}

		driver, err := postgres.NewDriver(ctx, e.Config.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		e.Logger.Info("using PostgreSQL storage")
		return driver, nil

	case config.StorageInMemory, "":
		e.Logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", e.Config.Storage.Driver)
	}
}

// NewPublisher creates the configured turn event publisher.
func (e *Env) NewPublisher() (eventstream.Publisher, error) {
	switch e.Config.EventStream.Provider {
	case config.EventStreamKafka:
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: e.Config.EventStream.BrokerList(),
			Topic:   e.Config.EventStream.Topic,
		}, e.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		e.Logger.Info("publishing turn events to kafka",
			"brokers", e.Config.EventStream.Brokers,
			"topic", e.Config.EventStream.Topic,
		)
		return pub, nil

	case config.EventStreamNop, "":
		return nop.NewPublisher(e.Logger), nil

	default:
		return nil, fmt.Errorf("unknown event stream provider %q", e.Config.EventStream.Provider)
	}
}

// Source identifies this client on published turn events.
func (e *Env) Source() eventstream.EventSource {
	source := eventstream.EventSource{
		Client:  utils.UserAgent(),
		Backend: e.Config.Client.BaseURL,
	}
	if e.LoggedIn() {
		source.Username = e.State.Username
	}
	return source
}

// Recorder is the pipeline finished turns flow through.
type Recorder struct {
	*worker.Pool

	driver    storage.Driver
	publisher eventstream.Publisher
}

// NewRecorder wires storage, publisher and worker pool together.
func (e *Env) NewRecorder(ctx context.Context) (*Recorder, error) {
	driver, err := e.NewStorageDriver(ctx)
	if err != nil {
		return nil, err
	}

	publisher, err := e.NewPublisher()
	if err != nil {
		driver.Close()
		return nil, err
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver:     driver,
		Publisher:  publisher,
		NumWorkers: e.Config.Worker.NumWorkers,
		QueueSize:  e.Config.Worker.QueueSize,
		Logger:     e.Logger,
	})
	if err != nil {
		publisher.Close()
		driver.Close()
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	return &Recorder{Pool: pool, driver: driver, publisher: publisher}, nil
}

// Close drains pending turns, then closes the publisher and the store.
func (r *Recorder) Close() error {
	r.Pool.Close()
	return errors.Join(r.publisher.Close(), r.driver.Close())
}
