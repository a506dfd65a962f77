package domain

import "time"

// TimestampedRecord is the base shape of every persisted entity. ID is assigned by the
// store and is never written as part of the document body.
type TimestampedRecord struct {
	ID        string    `bson:"-" json:"id"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" validate:"gtefield=CreatedAt"`
	Date      time.Time `bson:"date" json:"date"` // Logical "occurred-on" date, not an audit stamp
}

// Record gives generic code access to the embedded TimestampedRecord.
func (r *TimestampedRecord) Record() *TimestampedRecord {
	return r
}

// Recorder is implemented by every type embedding TimestampedRecord.
type Recorder interface {
	Record() *TimestampedRecord
}

// Entity constrains a pointer to T that carries a TimestampedRecord.
type Entity[T any] interface {
	*T
	Recorder
}

// DayBounds returns [00:00:00.000, 23:59:59.999] of t's calendar day in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// DayKey identifies a calendar day in t's location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
