package models

import "time"

// Public site content: services offered, portfolio projects, blog posts.
// Slugs are the public lookup keys; Order drives display sorting.

type Service struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	ShortDesc     string    `json:"shortDesc,omitempty"`
	Details       string    `gorm:"type:text" json:"details,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	Deliverables  []string  `gorm:"serializer:json" json:"deliverables,omitempty"`
	PriceEstimate string    `json:"priceEstimate,omitempty"`
	Order         int       `gorm:"column:display_order;index;default:0" json:"order"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	ShortDesc   string    `json:"shortDesc,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ImageURLs   []string  `gorm:"serializer:json" json:"imageUrls,omitempty"`
	Tech        []string  `gorm:"serializer:json" json:"tech,omitempty"`
	Category    string    `json:"category,omitempty"`
	ClientName  string    `json:"clientName,omitempty"`
	WebsiteURL  string    `json:"websiteUrl,omitempty"`
	GithubURL   string    `json:"githubUrl,omitempty"`
	TimeTaken   string    `json:"timeTaken,omitempty"`
	CaseStudy   string    `gorm:"type:text" json:"caseStudy,omitempty"`
	Order       int       `gorm:"column:display_order;index;default:0" json:"order"`
	Published   bool      `gorm:"index" json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Blog struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Slug          string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Content       string     `gorm:"type:text" json:"content,omitempty"`
	Author        string     `json:"author,omitempty"`
	Tags          []string   `gorm:"serializer:json" json:"tags,omitempty"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Draft         bool       `gorm:"index" json:"draft"`
	PublishedAt   *time.Time `gorm:"index" json:"publishedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
