package blog

import (
	"errors"
	"testing"

	"github.com/waichatt/console/internal/models"
)

func TestAppendSectionAssignsID(t *testing.T) {
	sections := AppendSection(models.Sections{}, models.Section{Title: "intro"})
	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(sections))
	}
	if sections[0].ID == "" {
		t.Fatal("section id not assigned")
	}
	if sections[0].Images == nil || sections[0].Videos == nil {
		t.Fatal("media lists not initialized")
	}
}

func TestAppendSectionKeepsCallerID(t *testing.T) {
	sections := AppendSection(models.Sections{}, models.Section{ID: "fixed-id"})
	if sections[0].ID != "fixed-id" {
		t.Fatalf("id = %q, want fixed-id", sections[0].ID)
	}
}

func TestUpdateSectionOutOfRange(t *testing.T) {
	title := "new"
	if _, errUpdate := UpdateSection(models.Sections{}, 0, SectionUpdate{Title: &title}); !errors.Is(errUpdate, ErrSectionIndex) {
		t.Fatalf("error = %v, want ErrSectionIndex", errUpdate)
	}
}

func TestRemoveSectionKeepsOrder(t *testing.T) {
	sections := models.Sections{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out, errRemove := RemoveSection(sections, 1)
	if errRemove != nil {
		t.Fatalf("RemoveSection: %v", errRemove)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Fatalf("sections = %+v, want [a c]", out)
	}
}

func TestAppendMediaValidatesSize(t *testing.T) {
	sections := models.Sections{{ID: "a"}}
	if _, errAppend := AppendMedia(sections, 0, MediaKindImage, "http://x/img.png", "huge"); !errors.Is(errAppend, ErrInvalidMediaSize) {
		t.Fatalf("error = %v, want ErrInvalidMediaSize", errAppend)
	}
}

func TestAppendMediaAddsToCorrectList(t *testing.T) {
	sections := models.Sections{{ID: "a"}}
	out, errAppend := AppendMedia(sections, 0, MediaKindVideo, "http://x/v.mp4", models.MediaSizeFull)
	if errAppend != nil {
		t.Fatalf("AppendMedia: %v", errAppend)
	}
	if len(out[0].Videos) != 1 || len(out[0].Images) != 0 {
		t.Fatalf("section media = %+v", out[0])
	}
	if out[0].Videos[0].ID == "" {
		t.Fatal("media id not assigned")
	}
}

func TestResizeMedia(t *testing.T) {
	sections := models.Sections{{ID: "a", Images: []models.MediaItem{{ID: "m1", Size: models.MediaSizeSmall}}}}
	out, errResize := ResizeMedia(sections, 0, MediaKindImage, "m1", models.MediaSizeLarge)
	if errResize != nil {
		t.Fatalf("ResizeMedia: %v", errResize)
	}
	if out[0].Images[0].Size != models.MediaSizeLarge {
		t.Fatalf("size = %q, want large", out[0].Images[0].Size)
	}
}

func TestResizeMediaNotFound(t *testing.T) {
	sections := models.Sections{{ID: "a"}}
	if _, errResize := ResizeMedia(sections, 0, MediaKindImage, "missing", models.MediaSizeSmall); !errors.Is(errResize, ErrMediaNotFound) {
		t.Fatalf("error = %v, want ErrMediaNotFound", errResize)
	}
}

func TestRemoveMedia(t *testing.T) {
	sections := models.Sections{{ID: "a", Videos: []models.MediaItem{{ID: "v1"}, {ID: "v2"}}}}
	out, errRemove := RemoveMedia(sections, 0, MediaKindVideo, "v1")
	if errRemove != nil {
		t.Fatalf("RemoveMedia: %v", errRemove)
	}
	if len(out[0].Videos) != 1 || out[0].Videos[0].ID != "v2" {
		t.Fatalf("videos = %+v, want only v2", out[0].Videos)
	}
}

func TestAddRecommendationRejectsSelf(t *testing.T) {
	if _, errAdd := AddRecommendation(models.RecommendationIDs{}, 7, 7); !errors.Is(errAdd, ErrSelfRecommendation) {
		t.Fatalf("error = %v, want ErrSelfRecommendation", errAdd)
	}
}

func TestAddRecommendationEnforcesCap(t *testing.T) {
	current := models.RecommendationIDs{1, 2, 3}
	if _, errAdd := AddRecommendation(current, 4, 9); !errors.Is(errAdd, ErrTooManyRecommendations) {
		t.Fatalf("error = %v, want ErrTooManyRecommendations", errAdd)
	}
}

func TestAddRecommendationDuplicateIsNoop(t *testing.T) {
	current := models.RecommendationIDs{1, 2}
	out, errAdd := AddRecommendation(current, 2, 9)
	if errAdd != nil {
		t.Fatalf("AddRecommendation: %v", errAdd)
	}
	if len(out) != 2 {
		t.Fatalf("recommendations = %v, want unchanged", out)
	}
}

func TestNormalizeRecommendations(t *testing.T) {
	out := NormalizeRecommendations(models.RecommendationIDs{5, 0, 5, 9, 1, 2, 3}, 9)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	// Self id 9 and zero dropped, duplicates collapsed, order preserved.
	if out[0] != 5 || out[1] != 1 || out[2] != 2 {
		t.Fatalf("recommendations = %v, want [5 1 2]", out)
	}
}
