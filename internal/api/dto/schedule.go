package dto

type ExtendScheduleRequest struct {
	SubscriptionID int    `json:"subscription_id"`
	HorizonDate    string `json:"horizon_date"`
}

type RunScheduleRequest struct {
	HorizonDate string `json:"horizon_date"`
}

type DateFailureResponse struct {
	Date  string `json:"date"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

type RunReportResponse struct {
	SubscriptionID  int                   `json:"subscription_id"`
	Created         int                   `json:"created"`
	SkippedExisting int                   `json:"skipped_existing"`
	SkippedPaused   int                   `json:"skipped_paused"`
	SkippedCalendar int                   `json:"skipped_calendar"`
	Failures        []DateFailureResponse `json:"failures"`
	Error           string                `json:"error,omitempty"`
}

type RunScheduleResponse struct {
	Reports []RunReportResponse `json:"reports"`
}
