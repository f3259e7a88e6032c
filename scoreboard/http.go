package scoreboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type submission struct {
	Name  string `json:"name" binding:"required"`
	Score int    `json:"score" binding:"min=0"`
	Lines int    `json:"lines" binding:"min=0"`
	Level int    `json:"level" binding:"required,min=1"`
}

// NewHTTPHandler serves the scores as JSON:
//
//	GET  /scores?limit=10  best entries
//	POST /scores           {"name", "score", "lines", "level"}, answers {"id", "rank"}
func NewHTTPHandler(store Store, logger *slog.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/scores", func(c *gin.Context) {
		limit := DefaultLimit
		if l := c.Query("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}
		entries, err := store.Top(c.Request.Context(), limit)
		if err != nil {
			logger.Error("failed to list scores", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scores"})
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		c.JSON(http.StatusOK, entries)
	})

	r.POST("/scores", func(c *gin.Context) {
		var s submission
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		e := Entry{Name: s.Name, Score: s.Score, Lines: s.Lines, Level: s.Level}.complete()
		rank, err := store.Add(c.Request.Context(), e)
		if err != nil {
			if errors.Is(err, ErrInvalidEntry) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error("failed to store score", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store score"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": e.ID, "rank": rank})
	})

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
