package val

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
)

// Record is one video known to the video abstraction layer (VAL). The VAL
// only lists videos that completed pipeline encoding, so the records returned
// for a course are exactly its mobile-encoded set.
type Record struct {
	EdxVideoID string  `json:"edx_video_id"`
	ClientID   string  `json:"client_video_id,omitempty"`
	Duration   float64 `json:"duration"`
}

// Finder looks up encoded-video records for a course.
type Finder interface {
	VideosForCourse(ctx context.Context, key contentstore.CourseKey) ([]Record, error)
}

// Client talks to the VAL HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type videosResponse struct {
	Videos []Record `json:"videos"`
}

func (c *Client) videosURL(key contentstore.CourseKey) string {
	return fmt.Sprintf("%s/api/val/v0/videos/%s", c.baseURL, url.PathEscape(key.String()))
}

func (c *Client) VideosForCourse(ctx context.Context, key contentstore.CourseKey) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.videosURL(key), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("val request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Courses unknown to the VAL simply have no encoded videos.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("val returned status %d", resp.StatusCode)
	}

	var body videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("val decode: %w", err)
	}
	return body.Videos, nil
}
