package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"bfcfeed/db"
	"bfcfeed/feeds"
	"bfcfeed/models"
)

type ServerConfig struct {

	// Origins allowed to call the API, the frontend deployment
	AllowOrigins string

	// The reader to use for reading contents
	Reader *db.Reader

	// The feed query service
	Feeds *feeds.Service
}

// Returns a fiber.App instance to be used as an HTTP server for the fan feed
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		// Diff
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	allowOrigins := config.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Cache-Control",
	}))

	// Cache stats responses, the feed itself is always served fresh
	app.Use(cache.New(cache.Config{
		Expiration: 5 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != "GET" {
				return true
			}
			return !strings.HasPrefix(c.Path(), "/api/stats")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			// Get URL with query string to use as cache key
			return c.Request().URI().String()
		},
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := config.Reader.Ping(); err != nil {
			log.WithError(err).Error("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).SendString("unavailable")
		}
		return c.SendString("ok")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/api/feed", func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(feeds.DefaultLimit)))
		if err != nil || limit < 1 || limit > feeds.MaxLimit {
			limit = feeds.DefaultLimit
		}

		platform := models.Platform(c.Query("platform", ""))
		if platform != "" && !platform.Valid() {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid platform")
		}

		log.WithFields(log.Fields{
			"page":     page,
			"limit":    limit,
			"platform": platform,
		}).Info("Get feed with parameters")

		feed, err := config.Feeds.GetFeed(page, limit, platform)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to query feed")
		}

		return c.JSON(feed)
	})

	app.Get("/api/stats/contents-per-time", func(c *fiber.Ctx) error {
		platform := models.Platform(c.Query("platform", ""))
		if platform != "" && !platform.Valid() {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid platform")
		}

		timeAgg := c.Query("time", "hour")
		if timeAgg != "hour" && timeAgg != "day" && timeAgg != "week" {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid time")
		}

		counts, err := config.Reader.GetContentCountPerTime(platform, timeAgg)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Error getting contents per time")
			return c.Status(fiber.StatusInternalServerError).SendString("Error getting contents per time")
		}

		log.WithFields(log.Fields{
			"platform": platform,
			"count":    len(counts),
		}).Info("Get contents per time")

		return c.Status(fiber.StatusOK).JSON(counts)
	})

	return app
}
