package container

import (
	"context"
	"fmt"
	"time"

	"flipper-backend/internal/config"
	adminHandler "flipper-backend/internal/domains/admin/handler"
	adminService "flipper-backend/internal/domains/admin/service"
	"flipper-backend/internal/domains/client"
	"flipper-backend/internal/domains/contact"
	"flipper-backend/internal/domains/newsletter"
	"flipper-backend/internal/domains/project"
	infraCache "flipper-backend/internal/infrastructure/cache"
	"flipper-backend/internal/infrastructure/database"
	"flipper-backend/internal/resource"
	resourceHandler "flipper-backend/internal/resource/handler"
	"flipper-backend/internal/resource/repository"
	"flipper-backend/internal/shared/middleware"
	"flipper-backend/pkg/cache"
	"flipper-backend/pkg/jwt"

	"github.com/rs/zerolog/log"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application.
// Initialization order: config, infrastructure, store, managers, handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB // nil with the memory driver
	Cache      cache.Cache          // nil when REDIS_ADDR is empty
	Store      resource.Store
	JWTManager *jwt.Manager // nil when the admin gate is disabled

	// ========================================
	// MANAGER LAYER (BUSINESS LOGIC)
	// ========================================
	ProjectManager    *resource.Manager
	ClientManager     *resource.Manager
	ContactManager    *resource.Manager
	NewsletterManager *resource.Manager
	AdminService      *adminService.AdminService

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	ProjectHandler    *resourceHandler.Handler
	ClientHandler     *resourceHandler.Handler
	ContactHandler    *resourceHandler.Handler
	NewsletterHandler *resourceHandler.Handler
	AdminHandler      *adminHandler.AdminHandler
	LoginLimiter      *middleware.RateLimiter

	redis *infraCache.RedisCache
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer loads configuration from the environment and builds the graph
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return Build(cfg)
}

// Build wires every dependency from cfg.
// An unreachable database or Redis is logged; the container is still returned.
func Build(cfg *config.Config) (*Container, error) {
	log.Info().Str("component", "container").Msg("initializing DI container")

	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: STORE
	// ========================================
	if err := c.initStore(); err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	// ========================================
	// STEP 2: CACHE (optional)
	// ========================================
	c.initCache()

	// ========================================
	// STEP 3: MANAGERS
	// ========================================
	c.initManagers()

	// ========================================
	// STEP 4: ADMIN
	// ========================================
	var tokens adminService.TokenIssuer
	if cfg.AdminEnabled() {
		c.JWTManager = jwt.NewManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		c.LoginLimiter = middleware.NewRateLimiter(cfg.Admin.LoginRate, cfg.Admin.LoginBurst, 15*time.Minute)
		tokens = c.JWTManager
	} else {
		log.Warn().Str("component", "container").Msg("ADMIN_PASSWORD_HASH not set - write endpoints are unauthenticated")
	}
	c.AdminService = adminService.NewAdminService(cfg.Admin.PasswordHash, tokens, c.Managers())

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	c.initHandlers()

	log.Info().Str("component", "container").Msg("DI container initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStore() error {
	switch c.Config.Store.Driver {
	case config.DriverMemory:
		log.Warn().Str("component", "store").Msg("using in-memory store - data is lost on restart")
		c.Store = resource.NewMemoryStore()
		return nil

	case config.DriverPostgres:
		db := database.NewPostgresDB(c.Config.DBConfig())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := db.Connect(ctx); err != nil {
			// Startup continues; the health endpoint reports the disconnect
			log.Warn().Str("component", "database").Err(err).Msg("database unavailable at startup")
		}

		c.DB = db
		c.Store = repository.NewPostgresStore(db)
		return nil
	}

	return fmt.Errorf("unknown store driver %q", c.Config.Store.Driver)
}

func (c *Container) initCache() {
	if !c.Config.CacheEnabled() {
		log.Info().Str("component", "redis").Msg("REDIS_ADDR not set - list cache disabled")
		return
	}

	rc := infraCache.NewRedisCache(c.Config.Redis.Addr, c.Config.Redis.Password, c.Config.Redis.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Redis failure is not critical; every cache error falls through to the store
	if err := rc.Connect(ctx); err != nil {
		log.Warn().Str("component", "redis").Err(err).Msg("redis connection failed (non-critical)")
	}

	c.redis = rc
	c.Cache = rc
}

func (c *Container) initManagers() {
	opts := []resource.Option{resource.WithTimeout(c.Config.Store.Timeout)}
	if c.Cache != nil {
		opts = append(opts, resource.WithCache(c.Cache, c.Config.Redis.TTL))
	}

	c.ProjectManager = resource.NewManager(project.Schema(), c.Store, opts...)
	c.ClientManager = resource.NewManager(client.Schema(), c.Store, opts...)
	c.ContactManager = resource.NewManager(contact.Schema(), c.Store, opts...)
	c.NewsletterManager = resource.NewManager(newsletter.Schema(), c.Store, opts...)

	for _, m := range c.Managers() {
		ctx, cancel := context.WithTimeout(context.Background(), c.Config.Store.Timeout)
		if err := m.Ensure(ctx); err != nil {
			log.Warn().
				Str("component", "store").
				Str("collection", m.Schema().Collection).
				Err(err).
				Msg("collection not provisioned yet, will retry on first use")
		}
		cancel()
	}
}

func (c *Container) initHandlers() {
	c.ProjectHandler = resourceHandler.NewHandler(c.ProjectManager)
	c.ClientHandler = resourceHandler.NewHandler(c.ClientManager)
	c.ContactHandler = resourceHandler.NewHandler(c.ContactManager)
	c.NewsletterHandler = resourceHandler.NewHandler(c.NewsletterManager)
	c.AdminHandler = adminHandler.NewAdminHandler(c.AdminService)
}

// ========================================
// HELPER METHODS
// ========================================

// Managers returns the four resource managers in display order
func (c *Container) Managers() []*resource.Manager {
	return []*resource.Manager{c.ProjectManager, c.ClientManager, c.ContactManager, c.NewsletterManager}
}

// Cleanup releases connections on shutdown
func (c *Container) Cleanup() {
	log.Info().Str("component", "container").Msg("cleaning up container resources")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close Redis")
		} else {
			log.Info().Str("component", "redis").Msg("redis connections closed")
		}
	}
}
