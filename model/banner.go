package model

import "time"

type Banner struct {
	ID        string    `firestore:"-" json:"id"`
	Title     string    `firestore:"title" json:"title"`
	Subtitle  string    `firestore:"subtitle,omitempty" json:"subtitle,omitempty"`
	ImageURL  string    `firestore:"imageUrl" json:"imageUrl"`
	CtaLabel  string    `firestore:"ctaLabel,omitempty" json:"ctaLabel,omitempty"`
	CtaLink   string    `firestore:"ctaLink,omitempty" json:"ctaLink,omitempty"`
	IsActive  bool      `firestore:"isActive" json:"isActive"`
	SortOrder int       `firestore:"sortOrder" json:"sortOrder"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// BannerFields are the admin-editable fields of a banner.
type BannerFields struct {
	Title     string
	Subtitle  string
	ImageURL  string
	CtaLabel  string
	CtaLink   string
	IsActive  bool
	SortOrder int
}
