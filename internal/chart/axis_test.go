package chart

import (
	"testing"
	"time"
)

func stamp(t *testing.T, s string) int64 {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return ts.UnixMilli()
}

func TestAxisLabel(t *testing.T) {
	dates := NewDates("02.01.2006", time.UTC)

	tests := []struct {
		name string
		data []Series
		want string
	}{
		{
			name: "no series",
			want: Placeholder,
		},
		{
			name: "empty series",
			data: []Series{{Key: "TT001"}, {Key: "SP"}},
			want: Placeholder,
		},
		{
			name: "same day",
			data: []Series{{Key: "TT001", Data: []Sample{
				{stamp(t, "2023-05-14 08:00:00"), 1},
				{stamp(t, "2023-05-14 23:59:59"), 2},
			}}},
			want: "14.05.2023",
		},
		{
			name: "single sample",
			data: []Series{{Key: "TT001", Data: []Sample{{stamp(t, "2023-05-14 08:00:00"), 1}}}},
			want: "14.05.2023",
		},
		{
			name: "across midnight",
			data: []Series{{Key: "TT001", Data: []Sample{
				{stamp(t, "2023-05-14 23:59:50"), 1},
				{stamp(t, "2023-05-15 00:00:10"), 2},
			}}},
			want: "14.05.2023 - 15.05.2023",
		},
		{
			name: "span across series",
			data: []Series{
				{Key: "SP", Data: []Sample{{stamp(t, "2023-05-15 10:00:00"), 1}}},
				{Key: "TT001", Data: []Sample{{stamp(t, "2023-05-13 10:00:00"), 1}}},
			},
			want: "13.05.2023 - 15.05.2023",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AxisLabel(tt.data, dates); got != tt.want {
				t.Errorf("AxisLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDatesUsesLocation(t *testing.T) {
	// 2023-05-14 22:30 UTC is already 2023-05-15 in Moscow (UTC+3).
	msk := time.FixedZone("MSK", 3*3600)
	ts := stamp(t, "2023-05-14 22:30:00")

	if got := NewDates("2006-01-02", msk).Date(ts); got != "2023-05-15" {
		t.Errorf("Date() = %q, want 2023-05-15", got)
	}
	if NewDates("2006-01-02", msk).SameDate(ts, stamp(t, "2023-05-14 20:00:00")) {
		t.Error("20:00 UTC and 22:30 UTC are different days in MSK")
	}
}
