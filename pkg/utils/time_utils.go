package utils

import "time"

// India Standard Time, used for display strings.
var istLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+30*60)
}()

const day = 24 * time.Hour

func NowUnixSeconds() int64 { return time.Now().Unix() }

// FromUnixSeconds returns zero time if t<=0 to let callers decide how to render.
func FromUnixSeconds(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).UTC()
}

func FormatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func FormatDisplayIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(istLoc).Format("02 Jan 2006")
}

// DaysUntil rounds the remaining time up to whole days. Negative once past.
func DaysUntil(end, now time.Time) int {
	diff := end.Sub(now)
	days := diff / day
	if diff%day > 0 {
		days++
	}
	return int(days)
}
