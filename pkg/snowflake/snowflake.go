// Copyright (c) 2026 InternPulse. All rights reserved.

// Package snowflake generates time-ordered 64-bit primary keys.
//
// # Why Snowflake IDs?
//
// Every persisted entity on the platform uses one of these as its primary key.
// Because the leading bits are a millisecond timestamp, the IDs are
// time-sortable, which keeps PostgreSQL BTREE indexes append-friendly the same
// way UUIDv7 would — but they fit in a BIGINT column and are cheap to compare.
//
// # Layout
//
// 63                      22        17        12             0
// | 41-bit timestamp (ms) | 5-bit DC | 5-bit worker | 12-bit sequence |
//
// The generator is an injected instance, not ambient package state: the
// process creates exactly one per (datacenter, worker) pair at startup and
// hands it to every service that mints entities.
package snowflake

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Epoch is the custom epoch (2020-01-01T00:00:00Z) in Unix milliseconds.
// All timestamp bits are measured relative to this point, which gives the
// 41-bit field roughly 69 years of headroom.
const Epoch int64 = 1577836800000

const (
	workerBits     = 5
	datacenterBits = 5
	sequenceBits   = 12

	// MaxWorkerID is the largest worker identifier (31).
	MaxWorkerID = -1 ^ (-1 << workerBits)
	// MaxDatacenterID is the largest datacenter identifier (31).
	MaxDatacenterID = -1 ^ (-1 << datacenterBits)

	maxSequence = -1 ^ (-1 << sequenceBits)

	workerShift     = sequenceBits
	datacenterShift = sequenceBits + workerBits
	timestampShift  = sequenceBits + workerBits + datacenterBits
)

// ErrClockMovedBack is returned when the wall clock runs behind the last
// observed timestamp. Minting IDs against a rewound clock could duplicate
// previously issued values, so the generator refuses instead.
var ErrClockMovedBack = errors.New("snowflake: clock moved backwards")

// Generator mints unique, monotonically increasing IDs for a single
// (datacenter, worker) pair.
//
// # Concurrency
//
// Safe for concurrent use. The sequence counter and last-timestamp are
// guarded by a mutex because many request goroutines mint IDs at once.
//
// # Restart Caveat
//
// Last-timestamp/sequence state is process-local and not persisted. If the
// host clock moves backwards across a restart, ordering (and in the worst
// case uniqueness) across the restart boundary is not guaranteed.
type Generator struct {
	mu            sync.Mutex
	workerID      int64
	datacenterID  int64
	lastTimestamp int64
	sequence      int64

	// now is swappable for tests; defaults to wall-clock milliseconds.
	now func() int64
}

// New constructs a [Generator], validating that both identifiers fit their
// 5-bit fields. Identifier assignment is an operational concern: the
// algorithm cannot detect two processes sharing the same pair.
func New(datacenterID, workerID int64) (*Generator, error) {
	if workerID < 0 || workerID > MaxWorkerID {
		return nil, fmt.Errorf("snowflake: worker id %d out of range [0,%d]", workerID, MaxWorkerID)
	}
	if datacenterID < 0 || datacenterID > MaxDatacenterID {
		return nil, fmt.Errorf("snowflake: datacenter id %d out of range [0,%d]", datacenterID, MaxDatacenterID)
	}

	return &Generator{
		workerID:      workerID,
		datacenterID:  datacenterID,
		lastTimestamp: -1,
		now:           nowMillis,
	}, nil
}

// NextID returns the next unique ID.
//
// Within one millisecond the 12-bit sequence provides strictly increasing
// values; when it overflows, the generator spins until the next millisecond
// boundary rather than wrapping. The spin is bounded below one millisecond
// by construction.
func (generator *Generator) NextID() (int64, error) {
	generator.mu.Lock()
	defer generator.mu.Unlock()

	timestamp := generator.now()

	if timestamp < generator.lastTimestamp {
		return 0, fmt.Errorf("%w: refusing to mint for %dms",
			ErrClockMovedBack, generator.lastTimestamp-timestamp)
	}

	if timestamp == generator.lastTimestamp {
		generator.sequence = (generator.sequence + 1) & maxSequence
		if generator.sequence == 0 {
			// Sequence exhausted for this millisecond: wait out the boundary.
			timestamp = generator.waitNextMillis(timestamp)
		}
	} else {
		generator.sequence = 0
	}

	generator.lastTimestamp = timestamp

	id := (timestamp-Epoch)<<timestampShift |
		generator.datacenterID<<datacenterShift |
		generator.workerID<<workerShift |
		generator.sequence

	return id, nil
}

// MustNextID is a convenience for wiring code where an ID failure is fatal.
// Services should prefer [Generator.NextID] and propagate the error.
func (generator *Generator) MustNextID() int64 {
	id, err := generator.NextID()
	if err != nil {
		panic(err)
	}
	return id
}

// waitNextMillis spins until the clock advances past the given millisecond.
func (generator *Generator) waitNextMillis(current int64) int64 {
	timestamp := generator.now()
	for timestamp <= current {
		timestamp = generator.now()
	}
	return timestamp
}

// Timestamp extracts the mint time encoded in an ID.
func Timestamp(id int64) time.Time {
	ms := (id >> timestampShift) + Epoch
	return time.UnixMilli(ms)
}

// DatacenterID extracts the datacenter identifier encoded in an ID.
func DatacenterID(id int64) int64 {
	return (id >> datacenterShift) & MaxDatacenterID
}

// WorkerID extracts the worker identifier encoded in an ID.
func WorkerID(id int64) int64 {
	return (id >> workerShift) & MaxWorkerID
}

// Sequence extracts the per-millisecond sequence counter encoded in an ID.
func Sequence(id int64) int64 {
	return id & maxSequence
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
