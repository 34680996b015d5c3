package model

import "time"

const (
	SlotStartEveryHour = "every-hour"
	SlotStartCustom    = "custom"
	DefaultSlotStart   = "5"
)

// Shift is a same-day working interval in "HH:mm", interpreted against the
// business time zone. End may be "24:00".
type Shift struct {
	Start string `json:"start" bson:"start" validate:"required,clock"`
	End   string `json:"end" bson:"end" validate:"required,clock"`
}

type AvailablePeriod struct {
	WeekDay int     `json:"week_day" bson:"week_day" validate:"required,min=1,max=7"`
	Shifts  []Shift `json:"shifts" bson:"shifts" validate:"max=24,dive"`
}

// PeriodMoment is one end of an unavailable period. A nil Year makes the
// period recur every year.
type PeriodMoment struct {
	Year   *int `json:"year,omitempty" bson:"year,omitempty" validate:"omitempty,min=1970,max=9999"`
	Month  int  `json:"month" bson:"month" validate:"required,min=1,max=12"`
	Day    int  `json:"day" bson:"day" validate:"required,min=1,max=31"`
	Hour   int  `json:"hour" bson:"hour" validate:"min=0,max=23"`
	Minute int  `json:"minute" bson:"minute" validate:"min=0,max=59"`
}

type TimeSlotPeriod struct {
	StartAt PeriodMoment `json:"start_at" bson:"start_at"`
	EndAt   PeriodMoment `json:"end_at" bson:"end_at"`
}

func (p TimeSlotPeriod) IsRecurring() bool {
	return p.StartAt.Year == nil && p.EndAt.Year == nil
}

// IsMixed reports a dated start paired with a recurring end or the reverse.
func (p TimeSlotPeriod) IsMixed() bool {
	return (p.StartAt.Year == nil) != (p.EndAt.Year == nil)
}

// AppLink points a business at a registered provider. ExternalID names the
// resource at that provider, e.g. a calendar id.
type AppLink struct {
	AppID      string `json:"app_id" bson:"app_id" validate:"required,min=1,max=64"`
	ExternalID string `json:"external_id,omitempty" bson:"external_id" validate:"max=256"`
}

// BookingSettings durations are minutes.
type BookingSettings struct {
	ScheduleApp                *AppLink  `json:"schedule_app,omitempty" bson:"schedule_app,omitempty"`
	CalendarApps               []AppLink `json:"calendar_apps,omitempty" bson:"calendar_apps" validate:"max=10,dive"`
	SlotStart                  string    `json:"slot_start,omitempty" bson:"slot_start" validate:"omitempty,slot_start"`
	CustomSlots                []string  `json:"custom_slots,omitempty" bson:"custom_slots" validate:"max=288,dive,clock"`
	MinAvailableTimeBeforeSlot int       `json:"min_available_time_before_slot" bson:"min_available_time_before_slot" validate:"min=0,max=1440"`
	MinAvailableTimeAfterSlot  int       `json:"min_available_time_after_slot" bson:"min_available_time_after_slot" validate:"min=0,max=1440"`
	MinTimeBeforeFirstSlot     int       `json:"min_time_before_first_slot" bson:"min_time_before_first_slot" validate:"min=0,max=525600"`
	MaxDaysBeforeLastSlot      int       `json:"max_days_before_last_slot" bson:"max_days_before_last_slot" validate:"min=0,max=730"`
}

type Business struct {
	ID                 string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name               string            `json:"name" bson:"name" validate:"required,min=2,max=100"`
	AdminPhone         string            `json:"admin_phone" bson:"admin_phone" validate:"required,e164"`
	TimeZone           string            `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	AvailablePeriods   []AvailablePeriod `json:"available_periods" bson:"available_periods" validate:"max=7,dive"`
	UnavailablePeriods []TimeSlotPeriod  `json:"unavailable_periods,omitempty" bson:"unavailable_periods" validate:"max=500,dive"`
	Booking            BookingSettings   `json:"booking" bson:"booking"`
	CreatedAt          time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type BusinessUpdate struct {
	Name               string             `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	AdminPhone         string             `json:"admin_phone,omitempty" validate:"omitempty,e164"`
	TimeZone           string             `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	AvailablePeriods   *[]AvailablePeriod `json:"available_periods,omitempty"`
	UnavailablePeriods *[]TimeSlotPeriod  `json:"unavailable_periods,omitempty"`
	Booking            *BookingSettings   `json:"booking,omitempty"`
}
