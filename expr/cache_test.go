// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSync(t *testing.T, p *CachingDataProvider, addr uint64, size uint32) []byte {
	t.Helper()
	var got []byte
	called := false
	p.GetMemoryAsync(addr, size, func(err error, data []byte) {
		require.NoError(t, err)
		called = true
		got = data
	})
	require.True(t, called)
	return got
}

func TestCachingDataProviderHit(t *testing.T) {
	inner := newMockProvider()
	inner.setMemory(0x1000, le32(42))

	p, err := NewCachingDataProvider(inner, 16)
	require.NoError(t, err)

	assert.Equal(t, le32(42), readSync(t, p, 0x1000, 4))
	assert.Equal(t, 1, inner.memReads)

	// Repeat read is served from cache.
	assert.Equal(t, le32(42), readSync(t, p, 0x1000, 4))
	assert.Equal(t, 1, inner.memReads)

	// Different size is a different cache entry.
	assert.Equal(t, le32(42)[:2], readSync(t, p, 0x1000, 2))
	assert.Equal(t, 2, inner.memReads)
}

func TestCachingDataProviderErrorNotCached(t *testing.T) {
	inner := newMockProvider()
	p, err := NewCachingDataProvider(inner, 16)
	require.NoError(t, err)

	fail := func() {
		called := false
		p.GetMemoryAsync(0x9000, 4, func(err error, data []byte) {
			called = true
			require.Error(t, err)
		})
		require.True(t, called)
	}
	fail()
	fail()
	// Both attempts hit the underlying provider.
	assert.Equal(t, 2, inner.memReads)
}

func TestCachingDataProviderWritePurges(t *testing.T) {
	inner := newMockProvider()
	inner.setMemory(0x1000, le32(1))

	p, err := NewCachingDataProvider(inner, 16)
	require.NoError(t, err)

	assert.Equal(t, le32(1), readSync(t, p, 0x1000, 4))

	called := false
	p.WriteMemory(0x1000, le32(2), func(err error) {
		called = true
		require.NoError(t, err)
	})
	require.True(t, called)

	// The stale cached block is gone; the read sees the new bytes.
	assert.Equal(t, le32(2), readSync(t, p, 0x1000, 4))
	assert.Equal(t, 2, inner.memReads)
}

func TestCachingDataProviderDelegates(t *testing.T) {
	inner := newMockProvider()
	inner.registers[3] = 0x77
	p, err := NewCachingDataProvider(inner, 4)
	require.NoError(t, err)

	// Non-memory operations pass straight through.
	v, ok := p.GetRegister(3)
	require.True(t, ok)
	assert.Equal(t, uint64(0x77), v)
	assert.Same(t, inner.GetArch(), p.GetArch())
}
