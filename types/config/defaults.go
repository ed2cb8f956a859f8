package config

import (
	"time"

	"github.com/RezaEskandarii/fxworker/constants"
)

const (
	DefaultMode             = ModeDebug
	DefaultQueueHost        = "localhost"
	DefaultQueuePort        = 11300
	DefaultTube             = "fxrates"
	DefaultConverterHost    = "www.xe.com"
	DefaultConverterPath    = "/currencyconverter/convert/"
	DefaultConverterTimeout = 4 * time.Second
	DefaultStorageDriver    = Postgres
	DefaultWorkerCount      = 10
	DefaultFirstWorkerID    = 1000
)

// MaxConverterTimeout leaves room inside the job TTR for the rate save and
// the requeue after a fetch that used its whole timeout.
const MaxConverterTimeout = constants.JobTTR / 2
