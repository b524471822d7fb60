package profile

import (
	"strings"
	"time"
)

// Record is a researched sender profile. Email is the globally unique key;
// every other descriptive field is optional and stays empty when no
// research backend yielded it.
type Record struct {
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	Company     string    `json:"company,omitempty"`
	Role        string    `json:"role,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	LinkedInURL string    `json:"linkedin_url,omitempty"`
	TwitterURL  string    `json:"twitter_url,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Source      string    `json:"source"`
}

// indexEntry is the compact per-identity summary kept in the index
// document. It allows existence checks and searches without reading
// every detail document.
type indexEntry struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`
}

// normalizeEmail lowercases and trims an address. Store keys are always
// normalized so lookups are insensitive to header casing.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
