package backend

import (
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/suggestbox/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Options configure the HTTP surface.
type Options struct {
	MaxLimit     int
	DefaultLimit int
	MinPrefix    int
	MaxPrefix    int
	AllowOrigins string
}

// Server serves GET /suggest in the shape suggest.HTTPFetcher expects.
type Server struct {
	app       *fiber.App
	completer *Completer
	opts      Options
}

// NewServer wires routes and middleware.
func NewServer(completer *Completer, opts Options) *Server {
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 64
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxPrefix <= 0 {
		opts.MaxPrefix = 60
	}
	if opts.AllowOrigins == "" {
		opts.AllowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "suggestd",
	})

	// credentialed requests can't use a wildcard origin
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return opts.AllowOrigins == "*" || strings.Contains(","+opts.AllowOrigins+",", ","+origin+",")
		},
		AllowCredentials: true,
		AllowMethods:     "GET, OPTIONS",
		AllowHeaders:     "Origin, Accept",
	}))

	s := &Server{app: app, completer: completer, opts: opts}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/suggest", s.handleSuggest)
}

// App returns the fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	log.Infof("Serving suggestions on http://%s/suggest", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	stats := s.completer.Stats()
	return c.JSON(fiber.Map{"status": "ok", "words": stats["totalWords"]})
}

// handleSuggest answers one completion request. A "status" param forces the
// response code so clients can be tried against a failing backend.
func (s *Server) handleSuggest(c *fiber.Ctx) error {
	if forced := c.QueryInt("status", 0); forced >= 400 && forced <= 599 {
		log.Debugf("Forcing status %d", forced)
		return c.Status(forced).SendString("forced failure")
	}

	query := strings.TrimSpace(c.Query("q"))
	if len(query) < s.opts.MinPrefix || len(query) > s.opts.MaxPrefix {
		return c.JSON(suggest.EmptySet())
	}

	limit := c.QueryInt("limit", s.opts.DefaultLimit)
	if limit < 1 {
		limit = s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}

	start := time.Now()
	items := s.completer.Complete(query, limit)
	elapsed := time.Since(start)

	c.Set("X-Suggest-Time-Us", strconv.FormatInt(elapsed.Microseconds(), 10))
	log.Debugf("Took [ %v ] for '%s' (%d results)", elapsed, query, len(items))
	return c.JSON(SuggestionSet(items))
}
