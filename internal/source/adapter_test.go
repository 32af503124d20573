package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds_StableOrder(t *testing.T) {
	assert.Equal(t, []Kind{KindVector, KindCallGraph, KindDependency}, Kinds())
	assert.Equal(t, 0, KindVector.Index())
	assert.Equal(t, 1, KindCallGraph.Index())
	assert.Equal(t, 2, KindDependency.Index())
	assert.Equal(t, -1, Kind("bogus").Index())
}

func TestUnitID_Less(t *testing.T) {
	tests := []struct {
		name string
		a, b UnitID
		want bool
	}{
		{"path wins", UnitID{"a.c", "zz"}, UnitID{"b.c", "aa"}, true},
		{"symbol breaks tie", UnitID{"a.c", "f"}, UnitID{"a.c", "g"}, true},
		{"equal", UnitID{"a.c", "f"}, UnitID{"a.c", "f"}, false},
		{"reverse", UnitID{"b.c", ""}, UnitID{"a.c", ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Less(tt.b))
		})
	}
}

func TestUnitID_StringRoundTrip(t *testing.T) {
	full := UnitID{Path: "src/parser.c", Symbol: "parse_header"}
	assert.Equal(t, "src/parser.c#parse_header", full.String())
	assert.Equal(t, full, ParseUnitID(full.String()))

	fileOnly := UnitID{Path: "include/buf.h"}
	assert.Equal(t, "include/buf.h", fileOnly.String())
	assert.Equal(t, fileOnly, ParseUnitID(fileOnly.String()))
}

func TestUnitID_DistinguishesFileAndSymbol(t *testing.T) {
	// Same function name in two files is two distinct units.
	a := UnitID{Path: "src/a.c", Symbol: "helper"}
	b := UnitID{Path: "src/b.c", Symbol: "helper"}
	assert.NotEqual(t, a, b)

	// A file unit and a symbol unit in that file are distinct too.
	assert.NotEqual(t, UnitID{Path: "src/a.c"}, a)
}
