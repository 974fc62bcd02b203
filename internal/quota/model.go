package quota

import "time"

// Record is the persisted per-caller quota state, one row per caller.
//
// UsedToday is only meaningful relative to LastUsageDate: when the current
// UTC day differs, the effective used count is zero regardless of the stored
// value. The reset is lazy; there is no background job zeroing old rows.
type Record struct {
	CallerID      string    `json:"caller_id"`
	Email         string    `json:"email"`
	UsedToday     int       `json:"used_today"`
	TotalQuota    int       `json:"total_quota"`     // 0 means unset, use the configured default
	LastUsageDate string    `json:"last_usage_date"` // UTC day key, YYYY-MM-DD
	ResetAt       time.Time `json:"reset_at"`        // zero means unset
}

// View is the caller-facing quota snapshot. It is derived, never persisted.
type View struct {
	Used      int       `json:"used"`
	Total     int       `json:"total"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// Decision is the outcome of a consume attempt.
type Decision struct {
	Allowed bool `json:"allowed"`
	Quota   View `json:"quota"`
}
