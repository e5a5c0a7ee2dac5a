package models

// ContactInfo: buyer data from the purchase form. Stored normalized
// (trimmed name, lower-cased email, digit-only dni/phone).
type ContactInfo struct {
	FullName string `json:"full_name"`
	DNI      string `json:"dni"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}
