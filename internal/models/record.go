package models

import "time"

// Record is one fetched CRM object. Properties with null values are dropped
// at decode time, so a missing key means the property is absent.
type Record struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Properties map[string]string `json:"properties"`
}

// Prop returns a named property and whether it is present
func (r *Record) Prop(name string) (string, bool) {
	v, ok := r.Properties[name]
	return v, ok
}
