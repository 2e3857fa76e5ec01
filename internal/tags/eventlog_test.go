package tags

import "testing"

func TestEventLogBounded(t *testing.T) {
	l := NewEventLog(3)
	for i := 0; i < 5; i++ {
		l.Add("SP", "x", "")
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	all := l.After(0)
	if all[0].ID != 3 || all[2].ID != 5 {
		t.Errorf("retained IDs = %d..%d, want 3..5", all[0].ID, all[2].ID)
	}
	if got := l.After(4); len(got) != 1 || got[0].ID != 5 {
		t.Errorf("After(4) = %+v", got)
	}
}

func TestEventLogHandler(t *testing.T) {
	l := NewEventLog(10)
	d, err := NewDispatcher(nil, &Binding{
		Name:      "STATE_log",
		DataKey:   "STATE",
		FromArray: map[int]string{0: "OFF", 3: "BREAK"},
		Exec:      l.Handler(),
		LogTarget: "CONTROL LOOP",
		LogColor:  map[int]string{3: "red"},
	})
	if err != nil {
		t.Fatal(err)
	}

	d.Apply(map[string]any{"STATE": 3.0})
	d.Apply(map[string]any{"STATE": 0.0})

	got := l.After(0)
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Target != "CONTROL LOOP" || got[0].Text != "BREAK" || got[0].Color != "red" {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[1].Text != "OFF" || got[1].Color != "" {
		t.Errorf("second entry = %+v", got[1])
	}
}
