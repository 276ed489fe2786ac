package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	mwecho "github.com/labstack/echo/v4/middleware"
	mwsvc "winsbygroup.com/tracker/internal/middleware"

	"winsbygroup.com/tracker/internal/auth"
	"winsbygroup.com/tracker/internal/config"
	"winsbygroup.com/tracker/internal/customer"
	"winsbygroup.com/tracker/internal/demodata"
	"winsbygroup.com/tracker/internal/project"
	"winsbygroup.com/tracker/internal/sqlite"
	"winsbygroup.com/tracker/internal/user"

	apihttp "winsbygroup.com/tracker/internal/http/api"
)

type Server struct {
	Echo *echo.Echo
	HTTP *http.Server
	DB   *sqlx.DB

	redis *redis.Client
}

// Close releases the database and, when used, the redis connection.
func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, s.DB.Close())
	return errors.Join(errs...)
}

// OpenDB opens the SQLite database at path with foreign keys enforced on
// every connection and applies pending migrations.
func OpenDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// WAL mode is only required once after creating the database, but
	// doesn't hurt to set it each time
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, err
	}

	// Cascade deletes depend on foreign key support
	var fkEnabled int
	if err := db.QueryRow(`PRAGMA foreign_keys;`).Scan(&fkEnabled); err != nil {
		db.Close()
		return nil, errors.New("SQLite foreign key support check failed: " + err.Error())
	}
	if fkEnabled != 1 {
		db.Close()
		return nil, errors.New("SQLite foreign keys not supported (requires SQLite 3.6.19+ compiled without SQLITE_OMIT_FOREIGN_KEY)")
	}

	if err := sqlite.RunMigrations(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Build(cfg *config.Config) (*Server, error) {
	//
	// Database
	//
	isNewDB := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		isNewDB = true
		log.Printf("Creating database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	} else {
		log.Printf("Opening database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	}
	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Load demo data if requested and database is new
	if cfg.DemoMode && isNewDB {
		if err := demodata.Load(context.Background(), db); err != nil {
			db.Close()
			return nil, errors.New("failed to load demo data: " + err.Error())
		}
		log.Printf("Demo data loaded (login %s / %s)", demodata.Email, demodata.Password)
	}

	srv := &Server{DB: db}

	//
	// Sessions
	//
	sessions, err := srv.sessionStore(cfg)
	if err != nil {
		srv.Close()
		return nil, err
	}

	//
	// Domain services
	//
	userSvc := user.NewService(db)
	authSvc := auth.NewService(userSvc)
	customerSvc := customer.NewService(db)
	projectSvc := project.NewService(db)

	//
	// Handlers
	//
	apiHandler := apihttp.NewHandler(
		authSvc,
		customerSvc,
		projectSvc,
		sessions,
		mwsvc.CookieConfig{Secure: cfg.CookieSecure, TTL: cfg.SessionTTL},
	)

	//
	// Echo
	//
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apihttp.ErrorHandler

	// Health endpoints
	e.GET("/livez", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/readyz", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "DB not ready")
		}
		if srv.redis != nil {
			if err := srv.redis.Ping(c.Request().Context()).Err(); err != nil {
				return c.String(http.StatusServiceUnavailable, "Session store not ready")
			}
		}
		return c.String(http.StatusOK, "Ready")
	})

	// Middleware
	e.Use(mwecho.Logger())
	e.Use(mwecho.Recover())
	e.Use(mwecho.CORSWithConfig(mwecho.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		// the browser client sends the session cookie, so "*" must echo the origin
		UnsafeWildcardOriginWithAllowCredentials: slices.Contains(cfg.CORSOrigins, "*"),
	}))
	e.Use(mwsvc.Version())

	// Seeding endpoint, demo deployments only
	if cfg.DemoMode {
		e.GET("/initdb", apihttp.InitDB(func(ctx context.Context) error {
			return demodata.Load(ctx, db)
		}))
	}

	// Tracker API
	apiGroup := e.Group("/api")
	apiGroup.Use(mwsvc.SessionAuth(sessions, userSvc))
	apihttp.RegisterRoutes(apiGroup, apiHandler)

	//
	// HTTP server
	//
	srv.Echo = e
	srv.HTTP = &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return srv, nil
}

func (s *Server) sessionStore(cfg *config.Config) (mwsvc.SessionStore, error) {
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		log.Print("Sessions kept in memory")
		return mwsvc.NewMemorySessionStore(cfg.SessionTTL), nil

	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		s.redis = client
		log.Printf("Sessions kept in redis at %s", cfg.RedisAddr)
		return mwsvc.NewRedisSessionStore(client, cfg.SessionTTL), nil

	default:
		return mwsvc.NewSQLSessionStore(s.DB, cfg.SessionTTL), nil
	}
}
