package dto

import "time"

type OccurrenceResponse struct {
	OccurrenceID   int64     `json:"occurrence_id"`
	SubscriptionID int       `json:"subscription_id"`
	Date           string    `json:"date"`
	Status         string    `json:"status"`
	ZoneID         int       `json:"zone_id"`
	WindowStart    *string   `json:"window_start,omitempty"`
	WindowEnd      *string   `json:"window_end,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ListOccurrencesResponse struct {
	Occurrences []OccurrenceResponse `json:"occurrences"`
}
