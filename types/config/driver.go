package config

import "fmt"

type StorageDriver int

const (
	Postgres StorageDriver = iota + 1
	Redis
)

// String converts the StorageDriver enum to a human-readable string.
func (d StorageDriver) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case Redis:
		return "redis"
	}
	return "unknown"
}

// ParseStorageDriver maps the YAML name of a driver to its enum value.
func ParseStorageDriver(name string) (StorageDriver, error) {
	switch name {
	case "postgres", "":
		return Postgres, nil
	case "redis":
		return Redis, nil
	}
	return 0, fmt.Errorf("unsupported storage driver %q", name)
}

// Mode controls log verbosity.
type Mode string

const (
	ModeDebug      Mode = "debug"
	ModeProduction Mode = "production"
	ModeSilent     Mode = "silent"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeDebug, ModeProduction, ModeSilent:
		return true
	}
	return false
}
