package config

const (
	defaultBaseURL       = "http://localhost:8000"
	defaultClientTimeout = "5m"

	defaultHistoryWindow = 6

	defaultStorageDriver = StorageInMemory

	defaultEventStreamProvider = EventStreamNop
	defaultEventStreamTopic    = "devassist.turns"

	defaultNumWorkers = 3
	defaultQueueSize  = 256

	defaultDevServerListen = ":8000"
	defaultFailTrigger     = "#fail"

	defaultAPIListen = ":8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			BaseURL: defaultBaseURL,
			Timeout: defaultClientTimeout,
		},
		Chat: ChatConfig{
			HistoryWindow: defaultHistoryWindow,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Worker: WorkerConfig{
			NumWorkers: defaultNumWorkers,
			QueueSize:  defaultQueueSize,
		},
		DevServer: DevServerConfig{
			Listen:      defaultDevServerListen,
			FailTrigger: defaultFailTrigger,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
