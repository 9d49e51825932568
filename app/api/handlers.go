package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/rss-digest/app/cfg"
	"github.com/okatkov/rss-digest/app/digest"
	"github.com/okatkov/rss-digest/app/export"
	"github.com/okatkov/rss-digest/app/feed"
	"github.com/okatkov/rss-digest/app/sources"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func NewHandler(collector *digest.Collector, serializer *export.Serializer, sourceCache *sources.Cache) *Handler {
	return &Handler{
		collector:   collector,
		serializer:  serializer,
		sourceCache: sourceCache,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":      time.Now().In(time.Local).Format(time.RFC3339),
		"sources":        h.sourceCache.GetConfigCount(),
		"extract_policy": cfg.Get().ExtractPolicy,
	})
}

// Digest runs the single-feed pipeline and returns the records along with
// any diagnostics collected on the way.
func (h *Handler) Digest(c *gin.Context) {
	var req DigestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid request body: url is required"})
		return
	}

	records, diagnostics := h.collector.Digest(c.Request.Context(), req.URL, h.limit(req.Limit))

	c.JSON(http.StatusOK, gin.H{
		"records":     records,
		"diagnostics": diagnostics,
		"total":       len(records),
	})
}

// DigestExport runs the single-feed pipeline and streams the result as a
// spreadsheet download.
func (h *Handler) DigestExport(c *gin.Context) {
	var req DigestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid request body: url is required"})
		return
	}

	records, diagnostics := h.collector.Digest(c.Request.Context(), req.URL, h.limit(req.Limit))
	h.writeWorkbook(c, records, diagnostics)
}

// BatchExport accepts an uploaded persona spreadsheet and streams the
// accumulated batch result as a download. A malformed upload is the one
// fault that aborts the run and propagates as a client error.
func (h *Handler) BatchExport(c *gin.Context) {
	file, _, err := c.Request.FormFile("personas")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing persona file upload field 'personas'"})
		return
	}
	defer file.Close()

	rows, err := export.ReadPersonaRows(file)
	if err != nil {
		slog.Error("Persona file parse failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid persona file: %v", err)})
		return
	}

	limit := cfg.Get().ArticleLimit
	if raw := c.PostForm("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = cfg.ClampArticleLimit(parsed)
		}
	}

	records, diagnostics := h.collector.ProcessPersonas(c.Request.Context(), rows, limit)
	h.writeWorkbook(c, records, diagnostics)
}

func (h *Handler) ListSources(c *gin.Context) {
	configs := h.sourceCache.GetConfigs()

	list := make([]gin.H, 0, len(configs))
	for _, source := range sortedConfigs(configs) {
		list = append(list, gin.H{
			"name":     source.Name,
			"image":    source.Image,
			"feed_url": source.FeedURL,
			"filters":  len(source.Filters),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": list,
		"total":   len(list),
	})
}

// SourcesExport runs the batch pipeline over every configured YAML source.
func (h *Handler) SourcesExport(c *gin.Context) {
	configs := h.sourceCache.GetConfigs()
	if len(configs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No sources configured"})
		return
	}

	batch := make([]digest.Source, 0, len(configs))
	for _, source := range sortedConfigs(configs) {
		batch = append(batch, digest.Source{
			Name:    source.Name,
			Image:   source.Image,
			FeedURL: source.FeedURL,
			Filters: source.Filters,
		})
	}

	records, diagnostics := h.collector.ProcessSources(c.Request.Context(), batch, cfg.Get().ArticleLimit)
	h.writeWorkbook(c, records, diagnostics)
}

func (h *Handler) writeWorkbook(c *gin.Context, records []feed.ArticleRecord, diagnostics []string) {
	buf, err := h.serializer.Run(records)
	if err != nil {
		slog.Error("Export serialization failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	c.Header("X-Record-Count", strconv.Itoa(len(records)))
	c.Header("X-Diagnostic-Count", strconv.Itoa(len(diagnostics)))

	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) limit(requested int) int {
	if requested == 0 {
		return cfg.Get().ArticleLimit
	}
	return cfg.ClampArticleLimit(requested)
}

// sortedConfigs flattens the cache map into name order so batch output is
// deterministic.
func sortedConfigs(configs map[string]*sources.Config) []*sources.Config {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]*sources.Config, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, configs[name])
	}
	return ordered
}
