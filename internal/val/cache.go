package val

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
)

// CachedFinder is a read-through redis cache in front of a Finder. Cache
// failures are logged and fall back to the wrapped finder; a broken cache
// must not take the report endpoint down with it.
type CachedFinder struct {
	inner Finder
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedFinder(inner Finder, rdb *redis.Client, ttl time.Duration) *CachedFinder {
	return &CachedFinder{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(key contentstore.CourseKey) string {
	return "val:videos:" + key.String()
}

func (f *CachedFinder) VideosForCourse(ctx context.Context, key contentstore.CourseKey) ([]Record, error) {
	if data, err := f.rdb.Get(ctx, cacheKey(key)).Bytes(); err == nil {
		var records []Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		log.Printf("val cache: bad payload for %s, refetching", key)
	} else if err != redis.Nil {
		log.Printf("val cache: get %s: %v", key, err)
	}

	records, err := f.inner.VideosForCourse(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}
	if err := f.rdb.Set(ctx, cacheKey(key), data, f.ttl).Err(); err != nil {
		log.Printf("val cache: set %s: %v", key, err)
	}
	return records, nil
}

// Invalidate drops the cached records for a course.
func (f *CachedFinder) Invalidate(ctx context.Context, key contentstore.CourseKey) error {
	if err := f.rdb.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("val cache invalidate %s: %w", key, err)
	}
	return nil
}
