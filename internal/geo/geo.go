// Package geo locates stories near a coordinate. Two strategies exist: a
// Redis GEO index answering the radius query directly, and a great-circle
// scan over a recent window when Redis is not configured.
package geo

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"snaplink/internal/models"
	"snaplink/internal/repositories"
)

const storyGeoKey = "stories:geo"

// Locator answers "which stories are within radiusKm of here".
type Locator interface {
	IndexStory(ctx context.Context, story models.Story) error
	NearbyStories(ctx context.Context, lat, lon, radiusKm float64, max int) ([]models.Story, error)
}

// RedisLocator keeps a Redis GEO set of story ids and resolves matches back
// through the story repository.
type RedisLocator struct {
	client  *redis.Client
	stories repositories.StoryRepository
	window  time.Duration
	logger  zerolog.Logger
}

// NewRedisLocator builds a Redis-backed locator.
func NewRedisLocator(client *redis.Client, stories repositories.StoryRepository, window time.Duration, logger zerolog.Logger) *RedisLocator {
	return &RedisLocator{client: client, stories: stories, window: window, logger: logger}
}

// IndexStory adds the story to the GEO set.
func (l *RedisLocator) IndexStory(ctx context.Context, story models.Story) error {
	return l.client.GeoAdd(ctx, storyGeoKey, &redis.GeoLocation{
		Name:      story.ID,
		Latitude:  story.Latitude,
		Longitude: story.Longitude,
	}).Err()
}

// NearbyStories queries the GEO set by radius, then filters matches to the
// recent window via the repository.
func (l *RedisLocator) NearbyStories(ctx context.Context, lat, lon, radiusKm float64, max int) ([]models.Story, error) {
	locations, err := l.client.GeoSearchLocation(ctx, storyGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Latitude:   lat,
			Longitude:  lon,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
	}).Result()
	if err != nil {
		return nil, err
	}

	matched := make(map[string]bool, len(locations))
	for _, loc := range locations {
		matched[loc.Name] = true
	}

	recent, err := l.stories.ListRecentStories(ctx, time.Now().Add(-l.window), 0)
	if err != nil {
		return nil, err
	}

	var out []models.Story
	for _, story := range recent {
		if matched[story.ID] {
			out = append(out, story)
			if max > 0 && len(out) >= max {
				break
			}
		}
	}
	return out, nil
}

// ScanLocator is the fallback: fetch the recent window and filter by
// great-circle distance. Result sets are small enough that the linear scan
// is fine.
type ScanLocator struct {
	stories repositories.StoryRepository
	window  time.Duration
}

// NewScanLocator builds the scan-based locator.
func NewScanLocator(stories repositories.StoryRepository, window time.Duration) *ScanLocator {
	return &ScanLocator{stories: stories, window: window}
}

// IndexStory is a no-op; the scan reads straight from the repository.
func (l *ScanLocator) IndexStory(ctx context.Context, story models.Story) error {
	return nil
}

// NearbyStories filters recent stories by haversine distance.
func (l *ScanLocator) NearbyStories(ctx context.Context, lat, lon, radiusKm float64, max int) ([]models.Story, error) {
	recent, err := l.stories.ListRecentStories(ctx, time.Now().Add(-l.window), 0)
	if err != nil {
		return nil, err
	}

	var out []models.Story
	for _, story := range recent {
		if DistanceKm(lat, lon, story.Latitude, story.Longitude) <= radiusKm {
			out = append(out, story)
			if max > 0 && len(out) >= max {
				break
			}
		}
	}
	return out, nil
}

const earthRadiusKm = 6371.0

// DistanceKm computes the great-circle distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
