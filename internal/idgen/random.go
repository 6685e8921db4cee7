package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nrednav/cuid2"
	"github.com/oklog/ulid/v2"
	"github.com/segmentio/ksuid"
)

const (
	DefaultNanoIDSize     = 21
	DefaultNanoIDAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultCUID2Length    = 24
)

// UUID generates random v4 UUIDs.
type UUID struct{}

func (UUID) Scheme() string { return SchemeUUID }

func (UUID) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (UUID) Validate(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return invalid("%v", err)
	}
	if parsed.Version() != 4 {
		return invalid("expected UUID v4, got v%d", parsed.Version())
	}
	return nil
}

// ULID generates lexicographically sortable ids. Ids from one generator
// are strictly increasing, even within a millisecond.
type ULID struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULID() *ULID {
	return &ULID{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (*ULID) Scheme() string { return SchemeULID }

func (g *ULID) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

func (*ULID) Validate(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// KSUID generates K-sortable ids with one-second resolution.
type KSUID struct{}

func (KSUID) Scheme() string { return SchemeKSUID }

func (KSUID) Generate() (string, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate KSUID: %w", err)
	}
	return id.String(), nil
}

func (KSUID) Validate(id string) error {
	if _, err := ksuid.Parse(id); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// NanoID generates fixed-length ids over a configurable alphabet.
type NanoID struct {
	size     int
	alphabet string
}

// NewNanoID accepts sizes 1..256 and alphabets of at least 2 characters.
func NewNanoID(size int, alphabet string) (*NanoID, error) {
	if size < 1 || size > 256 {
		return nil, fmt.Errorf("nanoid size must be between 1 and 256, got %d", size)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("nanoid alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	return &NanoID{size: size, alphabet: alphabet}, nil
}

func (*NanoID) Scheme() string { return SchemeNanoID }

func (g *NanoID) Generate() (string, error) {
	id, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate NanoID: %w", err)
	}
	return id, nil
}

func (g *NanoID) Validate(id string) error {
	if len(id) != g.size {
		return invalid("expected length %d, got %d", g.size, len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune(g.alphabet, c) {
			return invalid("character %q not in alphabet", c)
		}
	}
	return nil
}

// CUID2 generates collision-resistant ids.
type CUID2 struct {
	length   int
	generate func() string
}

// NewCUID2 accepts lengths 2..32.
func NewCUID2(length int) (*CUID2, error) {
	if length < 2 || length > 32 {
		return nil, fmt.Errorf("cuid2 length must be between 2 and 32, got %d", length)
	}
	gen, err := cuid2.Init(cuid2.WithLength(length))
	if err != nil {
		return nil, fmt.Errorf("failed to init CUID2 generator: %w", err)
	}
	return &CUID2{length: length, generate: gen}, nil
}

func (*CUID2) Scheme() string { return SchemeCUID2 }

func (g *CUID2) Generate() (string, error) {
	return g.generate(), nil
}

func (g *CUID2) Validate(id string) error {
	if len(id) != g.length {
		return invalid("expected length %d, got %d", g.length, len(id))
	}
	if !cuid2.IsCuid(id) {
		return invalid("not a CUID2")
	}
	return nil
}
