package domain

import "time"

// FrequencyType is the recurrence pattern of a subscription plan.
type FrequencyType string

const (
	FrequencyDaily     FrequencyType = "daily"
	FrequencyAlternate FrequencyType = "alternate_days"
	FrequencyWeekly    FrequencyType = "weekly"
	FrequencyCustom    FrequencyType = "custom"
)

// Plan describes how often a subscription is due.
// IntervalDays is meaningful only for custom plans, Weekdays only for
// weekly plans.
type Plan struct {
	PlanID        int
	Name          string
	Frequency     FrequencyType
	IntervalDays  int
	Weekdays      WeekdaySet
	MinDeliveries int
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// PauseInterval is a vacation hold. Start and End are inclusive calendar
// days; a nil End leaves the hold open-ended.
type PauseInterval struct {
	Start time.Time
	End   *time.Time
}

// Covers reports whether the given calendar day falls inside the hold.
func (p PauseInterval) Covers(d time.Time) bool {
	day := DateOf(d)
	if day.Before(DateOf(p.Start)) {
		return false
	}
	if p.End != nil && day.After(DateOf(*p.End)) {
		return false
	}
	return true
}

// Subscription is a customer's recurring delivery arrangement.
type Subscription struct {
	SubscriptionID int
	UserID         int
	AddressID      int
	Plan           Plan
	StartDate      time.Time
	Status         SubscriptionStatus
	CancelledAt    *time.Time
	Pauses         []PauseInterval
}
