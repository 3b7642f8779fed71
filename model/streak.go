package model

import (
	"fmt"
	"sort"
	"time"
)

// StreakResult holds the streaks derived from a progress log.
type StreakResult struct {
	Longest int
	Current int
}

// Streaks computes activity streaks from timestamps given in milliseconds
// since the epoch. Days are calendar days in loc; several timestamps on one
// day count once. Longest is the longest run of consecutive active days.
// Current is the run ending on the most recent active day, and is zero when
// that day is neither today nor yesterday relative to now.
func Streaks(timestamps []int64, now time.Time, loc *time.Location) StreakResult {
	days := activeDays(timestamps, loc)
	if len(days) == 0 {
		return StreakResult{}
	}

	res := StreakResult{Longest: 1}
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > res.Longest {
			res.Longest = run
		}
	}

	today := dayNumber(now, loc)
	last := len(days) - 1
	if days[last] != today && days[last] != today-1 {
		return res
	}
	res.Current = 1
	for i := last; i > 0 && days[i-1] == days[i]-1; i-- {
		res.Current++
	}
	return res
}

// activeDays returns the sorted, distinct day numbers of timestamps.
func activeDays(timestamps []int64, loc *time.Location) []int64 {
	if len(timestamps) == 0 {
		return nil
	}
	days := make([]int64, 0, len(timestamps))
	for _, ts := range timestamps {
		days = append(days, dayNumber(time.Unix(0, ts*int64(time.Millisecond)), loc))
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	uniq := days[:1]
	for _, d := range days[1:] {
		if d != uniq[len(uniq)-1] {
			uniq = append(uniq, d)
		}
	}
	return uniq
}

// dayNumber counts calendar days since the epoch for the local date of t.
// Midnight UTC of the same civil date keeps DST shifts out of the arithmetic.
func dayNumber(t time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// RefreshStreaks sorts the progress log and stores freshly computed streaks.
func (u *User) RefreshStreaks(now time.Time, loc *time.Location) {
	sort.Slice(u.ProgressTimestamps, func(i, j int) bool {
		return u.ProgressTimestamps[i] < u.ProgressTimestamps[j]
	})
	s := Streaks(u.ProgressTimestamps, now, loc)
	u.LongestStreak = s.Longest
	u.CurrentStreak = s.Current
}

// FormatStreak renders a streak for the profile page, which never shows less than one day.
func FormatStreak(n int) string {
	if n <= 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// Calendar maps each progress timestamp, in seconds, to one for the activity heat-map.
func Calendar(timestamps []int64) map[int64]int {
	data := make(map[int64]int, len(timestamps))
	for _, ts := range timestamps {
		data[ts/1000] = 1
	}
	return data
}
