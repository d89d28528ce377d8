package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeWindow is a contiguous open interval of a single day during which a
// provider is nominally bookable.
type TimeWindow struct {
	ID                    string `bson:"id" json:"id"`
	StartTime             string `bson:"startTime" json:"startTime"` // "HH:MM" wall clock, provider-local
	EndTime               string `bson:"endTime" json:"endTime"`     // "HH:MM"
	IsBooked              bool   `bson:"isBooked" json:"isBooked"`
	MaxConcurrentBookings int    `bson:"maxConcurrentBookings" json:"maxConcurrentBookings"`
	CurrentBookings       int    `bson:"currentBookings" json:"currentBookings"`
}

// DaySchedule holds one weekday's configuration.
type DaySchedule struct {
	IsAvailable bool         `bson:"isAvailable" json:"isAvailable"`
	TimeSlots   []TimeWindow `bson:"timeSlots" json:"timeSlots"`
}

// WeekSchedule is a fixed seven-entry week indexed by time.Weekday
// (Sunday = 0). A fixed array rules out missing or misspelled day keys;
// the JSON codec below keeps the named-day document shape on the wire.
type WeekSchedule [7]DaySchedule

var weekdayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// WeekdayName returns the lowercase wire name for a weekday.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[int(d)]
}

// Day returns the schedule for the given weekday.
func (w *WeekSchedule) Day(d time.Weekday) DaySchedule {
	return w[int(d)]
}

// SetDay replaces the schedule for the given weekday.
func (w *WeekSchedule) SetDay(d time.Weekday, ds DaySchedule) {
	w[int(d)] = ds
}

func (w WeekSchedule) MarshalJSON() ([]byte, error) {
	out := make(map[string]DaySchedule, 7)
	for i, ds := range w {
		out[weekdayNames[i]] = ds
	}
	return json.Marshal(out)
}

func (w *WeekSchedule) UnmarshalJSON(data []byte) error {
	var in map[string]DaySchedule
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	for name, ds := range in {
		idx := -1
		for i, known := range weekdayNames {
			if known == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown weekday %q", name)
		}
		w[idx] = ds
	}
	return nil
}

// Exception types.
const (
	ExceptionUnavailable    = "unavailable"
	ExceptionCustomHours    = "custom_hours"
	ExceptionSpecialPricing = "special_pricing"
)

// ExceptionEntry is a date-specific override that supersedes the weekly
// schedule for that calendar date only. At most one entry exists per
// (provider, date); inserting a second one replaces the first.
type ExceptionEntry struct {
	Date        string       `bson:"date" json:"date"` // "2006-01-02"
	Type        string       `bson:"type" json:"type"`
	Reason      string       `bson:"reason,omitempty" json:"reason,omitempty"`
	CustomHours []TimeWindow `bson:"customHours,omitempty" json:"customHours,omitempty"` // only for custom_hours
}

// WeeklySchedule is the provider-owned availability document: the recurring
// week plus its date exceptions and booking policy knobs.
type WeeklySchedule struct {
	ProviderID         string           `bson:"providerId" json:"providerId"`
	Days               WeekSchedule     `bson:"days" json:"days"`
	Exceptions         []ExceptionEntry `bson:"exceptions,omitempty" json:"exceptions,omitempty"`
	BufferTime         int              `bson:"bufferTime" json:"bufferTime"`                 // minutes between bookings
	MinNoticeTime      int              `bson:"minNoticeTime" json:"minNoticeTime"`           // hours
	MaxAdvanceBooking  int              `bson:"maxAdvanceBooking" json:"maxAdvanceBooking"`   // days
	AutoAcceptBookings bool             `bson:"autoAcceptBookings" json:"autoAcceptBookings"` // lifecycle-only, no slot effect
	UpdatedAt          time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// LegacySlot is the old simple per-day representation kept for
// backward-compatible API payloads.
type LegacySlot struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	IsActive bool   `json:"isActive"`
}

// LegacyDaySchedule maps lowercase weekday names to their legacy slots.
type LegacyDaySchedule map[string][]LegacySlot

// SlotCheckResult reports whether an arbitrary requested interval is free.
type SlotCheckResult struct {
	IsAvailable         bool `json:"isAvailable"`
	ConflictingBookings int  `json:"conflictingBookings"`
}
