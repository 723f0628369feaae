package domain

import (
	"testing"
	"time"
)

// Wednesday 2026-08-12, mid-afternoon.
var wednesday = time.Date(2026, time.August, 12, 15, 30, 0, 0, time.UTC)

func TestWindow_ThisWeek(t *testing.T) {
	w := RangeThisWeek.Window(wednesday)

	wantStart := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC) // Monday
	wantEnd := time.Date(2026, time.August, 16, 23, 59, 59, 0, time.UTC) // Sunday
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v", w.End, wantEnd)
	}
}

func TestWindow_ThisWeek_OnMonday(t *testing.T) {
	monday := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	w := RangeThisWeek.Window(monday)
	if !w.Start.Equal(monday) {
		t.Fatalf("start = %v, want %v", w.Start, monday)
	}
}

func TestWindow_ThisWeek_OnSunday(t *testing.T) {
	// A Sunday still belongs to the week that started the preceding Monday.
	sunday := time.Date(2026, time.August, 16, 12, 0, 0, 0, time.UTC)
	w := RangeThisWeek.Window(sunday)
	wantStart := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", w.Start, wantStart)
	}
}

func TestWindow_LastWeek(t *testing.T) {
	w := RangeLastWeek.Window(wednesday)

	wantStart := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.August, 9, 23, 59, 59, 0, time.UTC)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", w.Start, w.End, wantStart, wantEnd)
	}
}

func TestWindow_ThisMonth(t *testing.T) {
	w := RangeThisMonth.Window(wednesday)

	wantStart := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", w.Start, w.End, wantStart, wantEnd)
	}
}

func TestWindow_LastMonth(t *testing.T) {
	w := RangeLastMonth.Window(wednesday)

	wantStart := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.July, 31, 23, 59, 59, 0, time.UTC)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", w.Start, w.End, wantStart, wantEnd)
	}
}

func TestWindow_LastMonth_AcrossYear(t *testing.T) {
	january := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	w := RangeLastMonth.Window(january)

	wantStart := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", w.Start, w.End, wantStart, wantEnd)
	}
}

func TestWindow_AllTime_Unbounded(t *testing.T) {
	w := RangeAllTime.Window(wednesday)
	if w.Bounded() {
		t.Fatalf("expected unbounded window, got [%v, %v]", w.Start, w.End)
	}
}

func TestTicketFilter_Normalize(t *testing.T) {
	f := TicketFilter{}.Normalize()
	if f.DateRange != RangeThisWeek {
		t.Fatalf("default date range = %s", f.DateRange)
	}
	if f.Status != StatusOpen {
		t.Fatalf("default status = %s", f.Status)
	}
	if f.Page != 1 {
		t.Fatalf("default page = %d", f.Page)
	}
}

func TestTicketFilter_Offset(t *testing.T) {
	f := TicketFilter{Page: 3}
	if got := f.Offset(); got != 2*PageSize {
		t.Fatalf("offset = %d, want %d", got, 2*PageSize)
	}
}
