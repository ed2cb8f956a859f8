package app

import (
	"context"

	"github.com/RezaEskandarii/fxworker/internal/queue"
	"github.com/RezaEskandarii/fxworker/internal/rates"
	"github.com/RezaEskandarii/fxworker/internal/store"
	"github.com/RezaEskandarii/fxworker/types/config"
	"github.com/rs/zerolog"
)

// QueueDialer opens one queue connection bound to tube.
type QueueDialer func(addr, tube string, logger zerolog.Logger) (queue.Queue, error)

// StoreOpener opens one store connection for the configured driver.
type StoreOpener func(ctx context.Context, cfg *config.FxWorkerConfig) (store.RateStore, error)

// ContainerOption configures Container creation. Used for testing and customization.
type ContainerOption func(*Container)

// WithQueueDialer replaces the beanstalkd dialer. Useful for testing.
func WithQueueDialer(dial QueueDialer) ContainerOption {
	return func(c *Container) {
		c.dialQueue = dial
	}
}

// WithStoreOpener replaces the driver based store opener. Useful for testing.
func WithStoreOpener(open StoreOpener) ContainerOption {
	return func(c *Container) {
		c.openStore = open
	}
}

// WithProvider makes every worker use p instead of scraping the converter.
func WithProvider(p rates.Provider) ContainerOption {
	return func(c *Container) {
		c.newProvider = func(config.ConverterConfig) rates.Provider { return p }
	}
}
