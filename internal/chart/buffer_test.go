package chart

import (
	"encoding/json"
	"testing"
)

func newTestBuffer(t *testing.T, capacity int) *Buffer {
	t.Helper()
	b, err := NewBuffer(capacity,
		SeriesDef{Key: "SP_Lo", Label: "SP-D"},
		SeriesDef{Key: "TT001", Label: "TT001"},
	)
	if err != nil {
		t.Fatalf("NewBuffer() failed: %v", err)
	}
	return b
}

func TestNewBufferRejectsBadInput(t *testing.T) {
	if _, err := NewBuffer(0, SeriesDef{Key: "a"}); err == nil {
		t.Error("zero capacity should be rejected")
	}
	if _, err := NewBuffer(3, SeriesDef{Key: "a"}, SeriesDef{Key: "a"}); err == nil {
		t.Error("duplicate keys should be rejected")
	}
}

func TestBufferAppendNeverExceedsCapacity(t *testing.T) {
	b := newTestBuffer(t, DefaultCapacity)

	for i := 0; i < 100; i++ {
		b.Append("TT001", int64(i), float64(i))
		if n := b.Len("TT001"); n > DefaultCapacity {
			t.Fatalf("after %d appends Len = %d, exceeds %d", i+1, n, DefaultCapacity)
		}
	}
	if n := b.Len("TT001"); n != DefaultCapacity {
		t.Errorf("Len = %d, want %d", n, DefaultCapacity)
	}
}

func TestBufferEvictsOldestFirst(t *testing.T) {
	b := newTestBuffer(t, 3)

	for i := 1; i <= 3; i++ {
		b.Append("TT001", int64(i), float64(i*10))
	}
	b.Append("TT001", 4, 40)

	got := b.Snapshot()[1].Data
	want := []Sample{{2, 20}, {3, 30}, {4, 40}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Data[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	b.Append("TT001", 5, 50)
	got = b.Snapshot()[1].Data
	if got[0].Stamp != 3 || got[2].Stamp != 5 {
		t.Errorf("second eviction: got %+v", got)
	}
}

func TestBufferUnregisteredKeyIsIgnored(t *testing.T) {
	b := newTestBuffer(t, 3)
	b.Append("TT001", 1, 1)

	before := b.Snapshot()
	b.Append("PLC_TT", 2, 2)
	after := b.Snapshot()

	if b.Has("PLC_TT") {
		t.Error("PLC_TT should not be registered")
	}
	for i := range before {
		if len(before[i].Data) != len(after[i].Data) {
			t.Errorf("series %s changed: %d -> %d samples", before[i].Key, len(before[i].Data), len(after[i].Data))
		}
	}
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	b := newTestBuffer(t, 3)
	b.Append("SP_Lo", 1, 25)

	snap := b.Snapshot()
	snap[0].Data[0].Value = 999
	b.Append("SP_Lo", 2, 26)

	if v := b.Snapshot()[0].Data[0].Value; v != 25 {
		t.Errorf("buffer mutated through snapshot: %v", v)
	}
	if len(snap[0].Data) != 1 {
		t.Errorf("snapshot grew with buffer: %d", len(snap[0].Data))
	}
}

func TestBufferSnapshotOrder(t *testing.T) {
	b := newTestBuffer(t, 3)
	snap := b.Snapshot()
	if snap[0].Key != "SP_Lo" || snap[1].Key != "TT001" {
		t.Errorf("order = %s,%s", snap[0].Key, snap[1].Key)
	}
}

func TestSampleJSON(t *testing.T) {
	data, err := json.Marshal(Series{Key: "SP", Label: "SP", Data: []Sample{{1700000000000, 30.5}}})
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		ID   string       `json:"id"`
		Data [][2]float64 `json:"data"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ID != "SP" || decoded.Data[0][0] != 1700000000000 || decoded.Data[0][1] != 30.5 {
		t.Errorf("decoded = %+v from %s", decoded, data)
	}
}
