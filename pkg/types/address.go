package types

import "strings"

// Address is the shipping snapshot stored on an order at conversion time.
// It is persisted as jsonb and never re-resolved against the buyer profile.
type Address struct {
	FullName   string  `json:"full_name" validate:"required"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	Region     *string `json:"region,omitempty"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required,len=2"`
	Phone      *string `json:"phone,omitempty"`
}

// IsZero reports whether no address fields were provided at all.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.FullName) == "" &&
		strings.TrimSpace(a.Line1) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.PostalCode) == "" &&
		strings.TrimSpace(a.Country) == ""
}
