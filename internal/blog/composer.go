package blog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/waichatt/console/internal/models"
)

// MaxRecommendations caps the related-post list per post.
const MaxRecommendations = 3

// Composition errors returned by the section and recommendation operations.
var (
	// ErrSectionIndex indicates a section index outside the current list.
	ErrSectionIndex = errors.New("blog: section index out of range")
	// ErrMediaNotFound indicates the referenced media item does not exist.
	ErrMediaNotFound = errors.New("blog: media item not found")
	// ErrInvalidMediaSize indicates an unknown display size.
	ErrInvalidMediaSize = errors.New("blog: invalid media size")
	// ErrInvalidMediaKind indicates a media kind other than image/video.
	ErrInvalidMediaKind = errors.New("blog: invalid media kind")
	// ErrTooManyRecommendations indicates the 3-entry cap would be exceeded.
	ErrTooManyRecommendations = errors.New("blog: recommendation limit reached")
	// ErrSelfRecommendation indicates a post recommending itself.
	ErrSelfRecommendation = errors.New("blog: post cannot recommend itself")
)

// MediaKind selects one of a section's two independent media lists.
type MediaKind string

// MediaKind constants name the two lists.
const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// AppendSection adds a section to the end of the list, assigning an id when
// the caller did not.
func AppendSection(sections models.Sections, section models.Section) models.Sections {
	if strings.TrimSpace(section.ID) == "" {
		section.ID = uuid.NewString()
	}
	if section.Images == nil {
		section.Images = []models.MediaItem{}
	}
	if section.Videos == nil {
		section.Videos = []models.MediaItem{}
	}
	return append(sections, section)
}

// SectionUpdate carries optional scalar field changes for one section.
type SectionUpdate struct {
	Title       *string
	Subtitle    *string
	Description *string
}

// UpdateSection applies scalar field changes to the section at index.
func UpdateSection(sections models.Sections, index int, update SectionUpdate) (models.Sections, error) {
	if index < 0 || index >= len(sections) {
		return sections, ErrSectionIndex
	}
	if update.Title != nil {
		sections[index].Title = *update.Title
	}
	if update.Subtitle != nil {
		sections[index].Subtitle = *update.Subtitle
	}
	if update.Description != nil {
		sections[index].Description = *update.Description
	}
	return sections, nil
}

// RemoveSection deletes the section at index; the remaining sections keep
// their order, re-indexed implicitly.
func RemoveSection(sections models.Sections, index int) (models.Sections, error) {
	if index < 0 || index >= len(sections) {
		return sections, ErrSectionIndex
	}
	return append(sections[:index], sections[index+1:]...), nil
}

// AppendMedia adds a media item to the given list of the section at index.
func AppendMedia(sections models.Sections, index int, kind MediaKind, url string, size models.MediaSize) (models.Sections, error) {
	if index < 0 || index >= len(sections) {
		return sections, ErrSectionIndex
	}
	if !models.ValidMediaSize(size) {
		return sections, ErrInvalidMediaSize
	}

	item := models.MediaItem{ID: uuid.NewString(), URL: url, Size: size}
	switch kind {
	case MediaKindImage:
		sections[index].Images = append(sections[index].Images, item)
	case MediaKindVideo:
		sections[index].Videos = append(sections[index].Videos, item)
	default:
		return sections, ErrInvalidMediaKind
	}
	return sections, nil
}

// ResizeMedia changes the display size of the media item with the given id.
func ResizeMedia(sections models.Sections, index int, kind MediaKind, mediaID string, size models.MediaSize) (models.Sections, error) {
	if index < 0 || index >= len(sections) {
		return sections, ErrSectionIndex
	}
	if !models.ValidMediaSize(size) {
		return sections, ErrInvalidMediaSize
	}

	list, errList := mediaList(&sections[index], kind)
	if errList != nil {
		return sections, errList
	}
	for i := range *list {
		if (*list)[i].ID == mediaID {
			(*list)[i].Size = size
			return sections, nil
		}
	}
	return sections, ErrMediaNotFound
}

// RemoveMedia deletes the media item with the given id from the section's list.
func RemoveMedia(sections models.Sections, index int, kind MediaKind, mediaID string) (models.Sections, error) {
	if index < 0 || index >= len(sections) {
		return sections, ErrSectionIndex
	}

	list, errList := mediaList(&sections[index], kind)
	if errList != nil {
		return sections, errList
	}
	for i := range *list {
		if (*list)[i].ID == mediaID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return sections, nil
		}
	}
	return sections, ErrMediaNotFound
}

// mediaList resolves the addressed media list of a section.
func mediaList(section *models.Section, kind MediaKind) (*[]models.MediaItem, error) {
	switch kind {
	case MediaKindImage:
		return &section.Images, nil
	case MediaKindVideo:
		return &section.Videos, nil
	default:
		return nil, ErrInvalidMediaKind
	}
}

// AddRecommendation appends a related post id, enforcing the cap, the
// self-exclusion rule, and uniqueness.
func AddRecommendation(current models.RecommendationIDs, candidate, selfID uint64) (models.RecommendationIDs, error) {
	if candidate == selfID {
		return current, ErrSelfRecommendation
	}
	for _, id := range current {
		if id == candidate {
			return current, nil
		}
	}
	if len(current) >= MaxRecommendations {
		return current, ErrTooManyRecommendations
	}
	return append(current, candidate), nil
}

// NormalizeRecommendations sanitizes a persisted or submitted list: drops
// the post's own id and duplicates, truncates to the cap, keeps order.
func NormalizeRecommendations(ids models.RecommendationIDs, selfID uint64) models.RecommendationIDs {
	seen := make(map[uint64]struct{}, len(ids))
	out := make(models.RecommendationIDs, 0, MaxRecommendations)
	for _, id := range ids {
		if id == 0 || id == selfID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}
