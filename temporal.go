package nuodb

import "time"

// This file converts between time.Time and the scaled integer encodings
// the wire protocol uses for the date/time/timestamp tag ranges (spec
// §4.C): a scale byte (power-of-ten subsecond denominator) followed by a
// signed integer counting scale units since an epoch that depends on the
// tag family. original_source's calendar.py folded this logic into ad hoc
// per-call arithmetic; here it is centralized so scale is never dropped on
// a round trip.

const secondsPerDay = 24 * 60 * 60

// scaleUnitsPerSecond returns 10^scale, the number of encoded units in one
// second for time/timestamp values (e.g. scale 3 -> milliseconds).
func scaleUnitsPerSecond(scale int8) int64 {
	n := int64(1)
	for i := int8(0); i < scale; i++ {
		n *= 10
	}
	return n
}

// dateToDays returns the number of days between the Unix epoch and t's
// UTC calendar date, truncating any time-of-day component.
func dateToDays(t time.Time) int64 {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Unix() / secondsPerDay
}

// daysToDate returns midnight UTC on the day `days` after the Unix epoch.
func daysToDate(days int64) time.Time {
	return time.Unix(days*secondsPerDay, 0).UTC()
}

// timeOfDayToScaledUnits returns the subsecond-scale unit count since
// midnight UTC for t's time-of-day component.
func timeOfDayToScaledUnits(t time.Time, scale int8) int64 {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	elapsed := u.Sub(midnight)
	unitsPerSec := scaleUnitsPerSecond(scale)
	return elapsed.Nanoseconds() * unitsPerSec / int64(time.Second)
}

// scaledUnitsToTimeOfDay reconstructs a time-of-day as an offset from the
// Unix epoch's date (callers care only about the wall-clock component).
func scaledUnitsToTimeOfDay(units int64, scale int8) time.Time {
	unitsPerSec := scaleUnitsPerSecond(scale)
	nanos := units * (int64(time.Second) / unitsPerSec)
	return time.Unix(0, nanos).UTC()
}

// timestampToScaledUnits returns the subsecond-scale unit count since the
// Unix epoch for t, in t's own location (callers normalize beforehand with
// t.In(loc) if a specific zone is required).
func timestampToScaledUnits(t time.Time, scale int8) int64 {
	unitsPerSec := scaleUnitsPerSecond(scale)
	sec := t.Unix()
	nsec := int64(t.Nanosecond())
	return sec*unitsPerSec + nsec*unitsPerSec/int64(time.Second)
}

// scaledUnitsToTimestamp reconstructs a timestamp in loc from its
// subsecond-scale unit count since the Unix epoch.
func scaledUnitsToTimestamp(units int64, scale int8, loc *time.Location) time.Time {
	unitsPerSec := scaleUnitsPerSecond(scale)
	sec := units / unitsPerSec
	rem := units % unitsPerSec
	if rem < 0 {
		rem += unitsPerSec
		sec--
	}
	nsec := rem * (int64(time.Second) / unitsPerSec)
	return time.Unix(sec, nsec).In(loc)
}
