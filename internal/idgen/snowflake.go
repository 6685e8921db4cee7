package idgen

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	timestampBits = 41
	machineIDBits = 10
	sequenceBits  = 12

	maxMachineID = (1 << machineIDBits) - 1
	maxSequence  = (1 << sequenceBits) - 1

	machineIDShift = sequenceBits
	timestampShift = sequenceBits + machineIDBits

	// DefaultEpoch is 2024-01-01T00:00:00Z in unix ms.
	DefaultEpoch int64 = 1704067200000
)

// Snowflake generates time-ordered 64-bit ids rendered in decimal.
type Snowflake struct {
	mu        sync.Mutex
	epoch     int64
	machineID int64
	sequence  int64
	lastTime  int64
	now       func() time.Time
}

// NewSnowflake validates machineID against the 10-bit range.
func NewSnowflake(machineID, epoch int64) (*Snowflake, error) {
	if machineID < 0 || machineID > maxMachineID {
		return nil, fmt.Errorf("machine_id must be between 0 and %d, got %d", maxMachineID, machineID)
	}
	return &Snowflake{
		epoch:     epoch,
		machineID: machineID,
		now:       time.Now,
	}, nil
}

func (g *Snowflake) Scheme() string { return SchemeSnowflake }

func (g *Snowflake) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UnixMilli()
	if now < g.epoch {
		return "", fmt.Errorf("current time is before custom epoch")
	}
	// A clock step backwards reuses the last timestamp rather than failing.
	if now < g.lastTime {
		now = g.lastTime
	}

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			for now <= g.lastTime {
				time.Sleep(100 * time.Microsecond)
				now = g.now().UnixMilli()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTime = now

	id := ((now - g.epoch) << timestampShift) | (g.machineID << machineIDShift) | g.sequence
	return strconv.FormatInt(id, 10), nil
}

func (g *Snowflake) Validate(id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return invalid("not a decimal integer")
	}
	if n < 0 {
		return invalid("negative snowflake")
	}
	if ts := (n >> timestampShift) + g.epoch; ts > g.now().UnixMilli() {
		return invalid("timestamp is in the future")
	}
	return nil
}

// Time returns the creation time encoded in id.
func (g *Snowflake) Time(id string) (time.Time, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}, invalid("not a decimal integer")
	}
	return time.UnixMilli((n >> timestampShift) + g.epoch), nil
}
