package models

// Metric is a flat key/value record surfaced on the dashboard. Exactly one of
// ValueNum or ValueText is expected to be set.
type Metric struct {
	ID        string   `json:"id" db:"id"`
	Key       string   `json:"key" db:"key"`
	ValueNum  *float64 `json:"value_num,omitempty" db:"value_num"`
	ValueText *string  `json:"value_text,omitempty" db:"value_text"`
}
