// Copyright (c) 2026 InternPulse. All rights reserved.

package snowflake

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestNew_Bounds verifies that out-of-range identifiers are rejected.
*/
func TestNew_Bounds(t *testing.T) {
	tests := []struct {
		name         string
		datacenterID int64
		workerID     int64
		wantErr      bool
	}{
		{"valid_minimum", 0, 0, false},
		{"valid_maximum", MaxDatacenterID, MaxWorkerID, false},
		{"worker_too_large", 0, MaxWorkerID + 1, true},
		{"datacenter_too_large", MaxDatacenterID + 1, 0, true},
		{"negative_worker", 0, -1, true},
		{"negative_datacenter", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator, err := New(tt.datacenterID, tt.workerID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, generator)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, generator)
			}
		})
	}
}

/*
TestNextID_Unique mints IDs concurrently from many goroutines and asserts
that every value is distinct.
*/
func TestNextID_Unique(t *testing.T) {
	const (
		goroutines   = 16
		perGoroutine = 2000
	)

	generator, err := New(1, 1)
	require.NoError(t, err)

	ids := make(chan int64, goroutines*perGoroutine)
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id, err := generator.NextID()
				if err != nil {
					t.Error(err)
					return
				}
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, goroutines*perGoroutine)
	for id := range ids {
		_, duplicate := seen[id]
		require.False(t, duplicate, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

/*
TestNextID_Monotonic verifies that sequentially minted IDs are strictly
increasing on a single generator.
*/
func TestNextID_Monotonic(t *testing.T) {
	generator, err := New(0, 3)
	require.NoError(t, err)

	previous, err := generator.NextID()
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		id, err := generator.NextID()
		require.NoError(t, err)
		require.Greater(t, id, previous)
		previous = id
	}
}

/*
TestNextID_ClockMovedBack simulates a rewound wall clock and expects the
generator to refuse rather than risk duplicates.
*/
func TestNextID_ClockMovedBack(t *testing.T) {
	generator, err := New(2, 2)
	require.NoError(t, err)

	current := Epoch + 5000
	generator.now = func() int64 { return current }

	_, err = generator.NextID()
	require.NoError(t, err)

	// Rewind the clock by one second.
	current -= 1000

	_, err = generator.NextID()
	require.ErrorIs(t, err, ErrClockMovedBack)
}

/*
TestNextID_SequenceOverflow drives the sequence counter past its 12-bit
width within a frozen millisecond and verifies the generator blocks until
the clock advances instead of wrapping.
*/
func TestNextID_SequenceOverflow(t *testing.T) {
	generator, err := New(0, 0)
	require.NoError(t, err)

	frozen := Epoch + 1000
	calls := 0
	generator.now = func() int64 {
		calls++
		// Advance the clock only after the generator starts spinning.
		if calls > maxSequence+2 {
			return frozen + 1
		}
		return frozen
	}

	seen := make(map[int64]struct{})
	for i := 0; i <= maxSequence+1; i++ {
		id, err := generator.NextID()
		require.NoError(t, err)
		_, duplicate := seen[id]
		require.False(t, duplicate)
		seen[id] = struct{}{}
	}

	// The overflowing mint must land in the next millisecond.
	last, err := generator.NextID()
	require.NoError(t, err)
	assert.Equal(t, frozen+1-Epoch, last>>timestampShift)
}

/*
TestFieldExtraction checks that the packed components round-trip.
*/
func TestFieldExtraction(t *testing.T) {
	generator, err := New(7, 13)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	id, err := generator.NextID()
	require.NoError(t, err)

	assert.Equal(t, int64(7), DatacenterID(id))
	assert.Equal(t, int64(13), WorkerID(id))
	assert.GreaterOrEqual(t, Sequence(id), int64(0))
	assert.True(t, Timestamp(id).After(before))
	assert.True(t, Timestamp(id).Before(time.Now().Add(time.Second)))
}
