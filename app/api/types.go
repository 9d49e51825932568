package api

import (
	"github.com/okatkov/rss-digest/app/digest"
	"github.com/okatkov/rss-digest/app/export"
	"github.com/okatkov/rss-digest/app/sources"
)

type Handler struct {
	collector   *digest.Collector
	serializer  *export.Serializer
	sourceCache *sources.Cache
}

// DigestRequest is the input of the single-feed endpoints. Limit is clamped
// to [1,5]; zero falls back to the configured default.
type DigestRequest struct {
	URL   string `json:"url" binding:"required"`
	Limit int    `json:"limit"`
}
