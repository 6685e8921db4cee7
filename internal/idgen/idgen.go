// Package idgen produces claim identifiers. The scheme is chosen by
// configuration; every scheme yields opaque unique strings.
package idgen

import (
	"errors"
	"fmt"
)

// Schemes.
const (
	SchemeSnowflake = "snowflake"
	SchemeUUID      = "uuid"
	SchemeULID      = "ulid"
	SchemeKSUID     = "ksuid"
	SchemeNanoID    = "nanoid"
	SchemeCUID2     = "cuid2"
)

// ErrInvalidID is wrapped by every Validate failure.
var ErrInvalidID = errors.New("invalid id")

// Generator creates and validates identifiers.
type Generator interface {
	Generate() (string, error)
	Validate(id string) error
	Scheme() string
}

// Config selects a scheme and tunes it.
type Config struct {
	Scheme string `mapstructure:"id_scheme"`

	MachineID int64 `mapstructure:"machine_id"`
	Epoch     int64 `mapstructure:"epoch"` // unix ms

	NanoIDSize     int    `mapstructure:"nanoid_size"`
	NanoIDAlphabet string `mapstructure:"nanoid_alphabet"`

	CUID2Length int `mapstructure:"cuid2_length"`
}

// New builds the generator for cfg.Scheme, defaulting to snowflake.
func New(cfg Config) (Generator, error) {
	switch cfg.Scheme {
	case "", SchemeSnowflake:
		epoch := cfg.Epoch
		if epoch == 0 {
			epoch = DefaultEpoch
		}
		return NewSnowflake(cfg.MachineID, epoch)
	case SchemeUUID:
		return UUID{}, nil
	case SchemeULID:
		return NewULID(), nil
	case SchemeKSUID:
		return KSUID{}, nil
	case SchemeNanoID:
		size, alphabet := cfg.NanoIDSize, cfg.NanoIDAlphabet
		if size == 0 {
			size = DefaultNanoIDSize
		}
		if alphabet == "" {
			alphabet = DefaultNanoIDAlphabet
		}
		return NewNanoID(size, alphabet)
	case SchemeCUID2:
		length := cfg.CUID2Length
		if length == 0 {
			length = DefaultCUID2Length
		}
		return NewCUID2(length)
	default:
		return nil, fmt.Errorf("unknown id scheme %q", cfg.Scheme)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidID, fmt.Sprintf(format, args...))
}
