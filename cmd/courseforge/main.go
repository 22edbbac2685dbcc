package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OpenCourseHub/CourseForge/internal/api"
	"github.com/OpenCourseHub/CourseForge/internal/config"
	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
	"github.com/OpenCourseHub/CourseForge/internal/db"
	"github.com/OpenCourseHub/CourseForge/internal/jobs"
	"github.com/OpenCourseHub/CourseForge/internal/scheduler"
	"github.com/OpenCourseHub/CourseForge/internal/val"
	"github.com/OpenCourseHub/CourseForge/internal/version"
)

func main() {
	ver := version.Load("version.json")
	log.Printf("CourseForge %s starting...", ver.Version)

	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, "migrations"); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	store := contentstore.NewPostgresStore(database.DB)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	var videos val.Finder = noopFinder{}
	if cfg.ValEnabled() {
		videos = val.NewCachedFinder(val.NewClient(cfg.ValURL, cfg.ValAPIKey), rdb, cfg.ValCacheTTL)
	} else {
		log.Printf("VAL_URL not set; videos report section will see no encoded videos")
	}

	jobQueue := jobs.NewQueue(cfg.RedisAddr)

	srv, err := api.NewServer(cfg, database, store, videos, jobQueue, ver.Version)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}

	jobQueue.Handle(jobs.TaskReportWarm, jobs.NewWarmReportHandler(store, videos, srv.Events()))
	if err := jobQueue.Start(); err != nil {
		log.Fatalf("job queue failed: %v", err)
	}

	sched := scheduler.New(store, jobQueue, cfg.WarmWindow)
	if err := sched.Start(cfg.WarmCronSpec); err != nil {
		log.Fatalf("scheduler failed: %v", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	sched.Stop()
	jobQueue.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
}

// noopFinder stands in for the VAL when it is not configured.
type noopFinder struct{}

func (noopFinder) VideosForCourse(ctx context.Context, key contentstore.CourseKey) ([]val.Record, error) {
	return nil, nil
}
