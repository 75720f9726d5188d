package models

import (
	"time"

	"gorm.io/datatypes"
)

// BlogStatus represents the publication state of a post.
type BlogStatus string

// BlogStatus constants define publication states.
const (
	// BlogStatusDraft keeps a post hidden from the public site.
	BlogStatusDraft BlogStatus = "draft"
	// BlogStatusPublished makes a post publicly visible.
	BlogStatusPublished BlogStatus = "published"
)

// ValidBlogStatus reports whether s is a known blog status.
func ValidBlogStatus(s BlogStatus) bool {
	return s == BlogStatusDraft || s == BlogStatusPublished
}

// MediaSize is the display size of a media item within a section.
type MediaSize string

// MediaSize constants define the supported display sizes.
const (
	MediaSizeSmall  MediaSize = "small"
	MediaSizeMedium MediaSize = "medium"
	MediaSizeLarge  MediaSize = "large"
	MediaSizeFull   MediaSize = "full"
)

// ValidMediaSize reports whether s is a known media size.
func ValidMediaSize(s MediaSize) bool {
	switch s {
	case MediaSizeSmall, MediaSizeMedium, MediaSizeLarge, MediaSizeFull:
		return true
	default:
		return false
	}
}

// MediaItem is a single image or video entry within a section.
type MediaItem struct {
	ID   string    `json:"id"`   // Item identifier.
	URL  string    `json:"url"`  // Media URL.
	Size MediaSize `json:"size"` // Display size.
}

// Section is one ordered content block of a blog post. Image and video
// lists are ordered independently.
type Section struct {
	ID          string      `json:"id"`          // Section identifier.
	Title       string      `json:"title"`       // Section title.
	Subtitle    string      `json:"subtitle"`    // Section subtitle.
	Description string      `json:"description"` // Section body text.
	Images      []MediaItem `json:"images"`      // Ordered image list.
	Videos      []MediaItem `json:"videos"`      // Ordered video list.
}

// Sections stores the ordered section list as a JSON column.
type Sections = datatypes.JSONSlice[Section]

// RecommendationIDs stores related post ids as a JSON column.
type RecommendationIDs = datatypes.JSONSlice[uint64]

// BlogPost stores one post with its denormalized section structure. Sections
// and media are kept as a single JSON document, not relational rows.
type BlogPost struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex"` // URL slug.
	Title       string `gorm:"type:text;not null"`                     // Post title.
	Subtitle    string `gorm:"type:text"`                              // Post subtitle.
	Description string `gorm:"type:text"`                              // Post summary.
	MainImage   string `gorm:"type:text"`                              // Cover image URL.

	Sections Sections `gorm:"not null;default:'[]'"` // Ordered content sections.

	Status BlogStatus `gorm:"type:varchar(32);not null;default:'draft'"` // Publication state.

	// Recommendations hold at most 3 other post ids and never the post's own.
	Recommendations RecommendationIDs `gorm:"not null;default:'[]'"` // Related post ids.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
