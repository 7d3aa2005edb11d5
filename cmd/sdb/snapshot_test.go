// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sdb-project/sdb/expr"
	"github.com/sdb-project/sdb/symbol"
)

const sampleSnapshot = `
arch: amd64
registers:
  ip: 0x1000
memory:
  - address: 0x2000
    data: "0a000000"
  - address: 0x3000
    data: "0100000002000000"
types:
  - name: Point
    kind: struct
    size: 8
    members:
      - {name: x, type: int32, offset: 0}
      - {name: y, type: int32, offset: 4}
globals:
  - {name: counter, type: int32, address: 0x2000}
  - {name: origin, type: Point, address: 0x3000}
  - {name: "ns::nested", type: int32, address: 0x2000}
`

func loadSample(t *testing.T) *snapshot {
	t.Helper()
	var file snapshotFile
	require.NoError(t, yaml.Unmarshal([]byte(sampleSnapshot), &file))
	snap, err := buildSnapshot(&file)
	require.NoError(t, err)
	return snap
}

// evalText evaluates an expression against the snapshot and returns the
// flattened output text. The snapshot provider is fully synchronous.
func evalText(t *testing.T, snap *snapshot, input string) string {
	t.Helper()
	ctx := expr.NewSymbolEvalContext(snap.process, nil, snap.context, snap.provider)
	var got string
	called := false
	expr.EvalAndFormat(input, ctx, expr.DefaultFormatOptions(), func(out *expr.OutputBuffer) {
		called = true
		got = out.Text()
	})
	require.True(t, called)
	return got
}

func TestSnapshotEval(t *testing.T) {
	snap := loadSample(t)
	assert.Equal(t, "10", evalText(t, snap, "counter"))
	assert.Equal(t, "{x = 1, y = 2}", evalText(t, snap, "origin"))
	assert.Equal(t, "2", evalText(t, snap, "origin.y"))
	assert.Equal(t, "10", evalText(t, snap, "ns::nested"))
	assert.Equal(t, "10", evalText(t, snap, "::counter"))
	assert.Equal(t, `<No symbol "missing" found in the current context.>`,
		evalText(t, snap, "missing"))
}

func TestSnapshotAddressOfGlobal(t *testing.T) {
	snap := loadSample(t)
	assert.Equal(t, "(int32*) 0x2000", evalText(t, snap, "&counter"))
	assert.Equal(t, "10", evalText(t, snap, "*(&counter)"))
}

func TestParseRegisterName(t *testing.T) {
	for _, name := range []string{"ip", "pc"} {
		id, err := parseRegisterName(name)
		require.NoError(t, err)
		assert.Equal(t, symbol.RegIP, id)
	}
	id, err := parseRegisterName("6")
	require.NoError(t, err)
	assert.EqualValues(t, 6, id)

	_, err = parseRegisterName("rsp")
	require.Error(t, err)
	_, err = parseRegisterName("-3")
	require.Error(t, err)
}

func TestTypeTableParse(t *testing.T) {
	types := newTypeTable()

	p, err := types.parse("char*")
	require.NoError(t, err)
	assert.Equal(t, "char*", p.String())

	a, err := types.parse("int32[4]")
	require.NoError(t, err)
	assert.Equal(t, "int32[4]", a.String())
	assert.Equal(t, int64(16), a.Size())

	r, err := types.parse("int64&")
	require.NoError(t, err)
	assert.Equal(t, "int64&", r.String())

	_, err = types.parse("mystery")
	require.Error(t, err)
	_, err = types.parse("int32[x]")
	require.Error(t, err)
}

func TestBuildSnapshotErrors(t *testing.T) {
	_, err := buildSnapshot(&snapshotFile{Arch: "mips"})
	require.Error(t, err)

	_, err = buildSnapshot(&snapshotFile{
		Registers: map[string]int64{"bogus": 1},
	})
	require.Error(t, err)

	_, err = buildSnapshot(&snapshotFile{
		Memory: []memoryRegion{{Address: 0x100, Data: "zz"}},
	})
	require.Error(t, err)

	_, err = buildSnapshot(&snapshotFile{
		Globals: []globalDef{{Name: "g", Type: "nosuch", Address: 1}},
	})
	require.Error(t, err)
}

func TestSnapshotProviderShortRead(t *testing.T) {
	p := &snapshotProvider{regions: []region{{address: 0x100, data: []byte{1, 2, 3, 4}}}}

	var got []byte
	p.GetMemoryAsync(0x102, 8, func(err error, data []byte) {
		require.NoError(t, err)
		got = data
	})
	// Reads stop at the end of the region rather than failing.
	assert.Equal(t, []byte{3, 4}, got)

	p.GetMemoryAsync(0x200, 4, func(err error, data []byte) {
		require.Error(t, err)
	})
}
