package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"mediastash/internal/api"
	"mediastash/internal/config"
	"mediastash/internal/database"
	"mediastash/internal/logging"
	"mediastash/internal/migrations"
	"mediastash/internal/repository/postgres"
	"mediastash/internal/service"
	"mediastash/internal/storage"
	"mediastash/internal/storage/local"
	"mediastash/internal/storage/s3"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New()
	logger.Println("配置加载完成，开始启动服务")

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		logger.Fatalf("连接数据库失败: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		logger.Fatalf("应用迁移失败: %v", err)
	}
	logger.Println("数据库迁移完成")

	var store storage.Storage
	switch cfg.StorageDriver {
	case "s3":
		store, err = s3.New(ctx, s3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			logger.Fatalf("初始化 S3 存储失败: %v", err)
		}
	default:
		store = local.New(cfg.StorageDir, cfg.PublicBaseURL)
	}
	logger.Printf("存储驱动: %s\n", cfg.StorageDriver)

	repo := postgres.NewFileRepository(db)
	fileService := service.NewFileService(repo, store, cfg.PublicBaseURL)
	statsService := service.NewStatsService(repo)

	router := api.NewRouter(cfg,
		api.NewFileHandler(fileService, cfg.RecentLimit),
		api.NewStatsHandler(statsService),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler:      router,
	}

	logger.Printf("服务监听端口 :%s\n", cfg.HTTPPort)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("监听失败: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("优雅关闭失败: %v", err)
	}

	logger.Println("服务已停止")
}
