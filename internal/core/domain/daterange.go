package domain

import "time"

const endOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second

// DateWindow is an inclusive [Start, End] pair bounding created_on.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Bounded reports whether the window constrains the search at all.
func (w DateWindow) Bounded() bool { return !w.Start.IsZero() }

// Window resolves the range tag relative to now, in now's location.
// Weeks run Monday 00:00:00 through Sunday 23:59:59; months run from the
// first calendar day through the last. RangeAllTime yields an unbounded
// window.
func (r DateRange) Window(now time.Time) DateWindow {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch r {
	case RangeThisWeek:
		return weekWindow(mondayOf(today))
	case RangeLastWeek:
		return weekWindow(mondayOf(today).AddDate(0, 0, -7))
	case RangeThisMonth:
		return monthWindow(time.Date(y, m, 1, 0, 0, 0, 0, loc))
	case RangeLastMonth:
		return monthWindow(time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0))
	default:
		return DateWindow{}
	}
}

// mondayOf returns the Monday of the week containing day.
// time.Weekday counts Sunday as 0, so shift it to a Monday-based index.
func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func weekWindow(monday time.Time) DateWindow {
	return DateWindow{Start: monday, End: monday.AddDate(0, 0, 6).Add(endOfDay)}
}

func monthWindow(first time.Time) DateWindow {
	return DateWindow{Start: first, End: first.AddDate(0, 1, -1).Add(endOfDay)}
}
