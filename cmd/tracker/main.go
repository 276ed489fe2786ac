package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/tracker/internal/backup"
	"winsbygroup.com/tracker/internal/config"
	"winsbygroup.com/tracker/internal/server"
	"winsbygroup.com/tracker/internal/version"
)

func main() {
	fmt.Println(version.Banner())

	//
	// Flags
	//
	configPath := flag.String("config", "config.yaml", "path to config file")
	routesFlag := flag.Bool("routes", false, "print routes and exit")
	demoFlag := flag.Bool("demo", false, "load sample data on new database and serve /initdb (for demos)")
	backupFlag := flag.Bool("backup", false, "write a database backup and exit")
	keepBackups := flag.Int("keep-backups", 10, "number of backups to keep when using -backup")
	flag.Parse()

	//
	// Load configuration
	//
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.DemoMode = *demoFlag

	//
	// Backup mode
	//
	if *backupFlag {
		if err := runBackup(cfg.DBPath, *keepBackups); err != nil {
			log.Fatalf("backup failed: %v", err)
		}
		return
	}

	//
	// Build server (Echo, DB, services, etc.)
	//
	srv, err := server.Build(cfg)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}
	defer srv.Close()

	//
	// Routes inspection mode
	//
	if *routesFlag {
		routes := srv.Echo.Routes()
		sort.Slice(routes, func(i, j int) bool {
			if routes[i].Path == routes[j].Path {
				return routes[i].Method < routes[j].Method
			}
			return routes[i].Path < routes[j].Path
		})

		for _, r := range routes {
			fmt.Printf("%-6s %s\n", r.Method, r.Path)
		}
		return
	}

	//
	// Normal server startup
	//
	log.Printf("Listening on %s", cfg.Addr)
	go func() {
		if err := srv.Echo.StartServer(srv.HTTP); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.Echo.Logger.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Echo.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}

func runBackup(dbPath string, keep int) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database '%s': %w", dbPath, err)
	}

	db, err := server.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := backup.NewService(db, dbPath)
	result, err := svc.Create(context.Background())
	if err != nil {
		return err
	}
	log.Printf("Wrote %s (%d rows, %d bytes)", result.Path, result.Rows, result.Size)

	removed, err := svc.Prune(keep)
	if err != nil {
		return err
	}
	for _, name := range removed {
		log.Printf("Removed old backup %s", name)
	}
	return nil
}
