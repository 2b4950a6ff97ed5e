package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snaplink/internal/geo"
	"snaplink/internal/models"
	"snaplink/internal/observability"
	"snaplink/internal/repositories"
)

const maxNearbyStories = 100

// StoryHandler manages location-based stories.
type StoryHandler struct {
	storyRepo   repositories.StoryRepository
	profileRepo repositories.ProfileRepository
	locator     geo.Locator
	radiusKm    float64
}

// NewStoryHandler builds a StoryHandler.
func NewStoryHandler(storyRepo repositories.StoryRepository, profileRepo repositories.ProfileRepository, locator geo.Locator, radiusKm float64) *StoryHandler {
	return &StoryHandler{storyRepo: storyRepo, profileRepo: profileRepo, locator: locator, radiusKm: radiusKm}
}

// CreateStory persists a geo-tagged story and indexes its location.
func (h *StoryHandler) CreateStory(c *gin.Context) {
	var req struct {
		MediaURL  string  `json:"media_url" binding:"required"`
		MediaType string  `json:"media_type" binding:"required"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MediaType != models.MediaImage && req.MediaType != models.MediaVideo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_type must be image or video"})
		return
	}

	story, err := h.storyRepo.CreateStory(c.Request.Context(), models.Story{
		UserID:    userIDFromContext(c),
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create story"})
		return
	}

	// Indexing is best-effort; the scan fallback still finds the story.
	_ = h.locator.IndexStory(c.Request.Context(), story)

	observability.IncStory()
	c.JSON(http.StatusCreated, gin.H{"story": story})
}

// NearbyStories returns stories within the radius of the given coordinates,
// joined with their authors' profiles.
func (h *StoryHandler) NearbyStories(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	radiusKm := h.radiusKm
	if raw := c.Query("radius_km"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			radiusKm = parsed
		}
	}

	stories, err := h.locator.NearbyStories(c.Request.Context(), lat, lon, radiusKm, maxNearbyStories)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stories"})
		return
	}

	authorIDs := make([]string, 0, len(stories))
	seen := map[string]struct{}{}
	for _, s := range stories {
		if _, ok := seen[s.UserID]; !ok {
			seen[s.UserID] = struct{}{}
			authorIDs = append(authorIDs, s.UserID)
		}
	}

	profiles, err := h.profileRepo.BulkProfiles(c.Request.Context(), authorIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load authors"})
		return
	}
	profileByID := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		profileByID[p.ID] = p
	}

	result := make([]models.StoryWithAuthor, 0, len(stories))
	for _, s := range stories {
		item := models.StoryWithAuthor{Story: s}
		if p, ok := profileByID[s.UserID]; ok {
			author := p
			item.Author = &author
		}
		result = append(result, item)
	}
	c.JSON(http.StatusOK, gin.H{"stories": result})
}
