package models

import "time"

// SiteSettings is a singleton record holding the site-wide content the
// SPA renders: branding, hero copy, contact details, footer. Stored as
// one row; the handler auto-creates it with defaults on first read.
type SiteSettings struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	LogoURL        string      `json:"logoUrl,omitempty"`
	Theme          string      `gorm:"default:'neon'" json:"theme"`
	NavItems       []NavItem   `gorm:"serializer:json" json:"navItems,omitempty"`
	HeroHeadline   string      `json:"heroHeadline,omitempty"`
	HeroTypedWords []string    `gorm:"serializer:json" json:"heroTypedWords,omitempty"`
	HeroSubText    string      `json:"heroSubText,omitempty"`
	SocialLinks    SocialLinks `gorm:"embedded;embeddedPrefix:social_" json:"socialLinks"`
	WhatsappNumber string      `json:"whatsappNumber,omitempty"`
	PhoneNumber    string      `json:"phoneNumber,omitempty"`
	FooterBrief    string      `json:"footerBrief,omitempty"`
	FooterEmail    string      `json:"footerEmail,omitempty"`
	FooterLocation string      `json:"footerLocation,omitempty"`
	WorkingHours   string      `json:"workingHours,omitempty"`
	Stats          []SiteStat  `gorm:"serializer:json" json:"stats,omitempty"`
	AboutTitle     string      `json:"aboutTitle,omitempty"`
	AboutSubtitle  string      `json:"aboutSubtitle,omitempty"`
	AboutBody      string      `gorm:"type:text" json:"aboutBody,omitempty"`
	AboutImageURL  string      `json:"aboutImageUrl,omitempty"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Order int    `json:"order"`
}

type SocialLinks struct {
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

type SiteStat struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
	Suffix string `json:"suffix,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Order  int    `json:"order"`
}
