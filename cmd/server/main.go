// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lumira-go/internal/config"
	"lumira-go/internal/handler"
	"lumira-go/internal/middleware"
	"lumira-go/internal/pipeline"
	"lumira-go/internal/repository"
	"lumira-go/internal/service"
	"lumira-go/pkg/database"
	"lumira-go/pkg/es"
	"lumira-go/pkg/gigachat"
	"lumira-go/pkg/kafka"
	"lumira-go/pkg/log"
	"lumira-go/pkg/ocr"
	"lumira-go/pkg/storage"
	"lumira-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库与外部客户端
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	dialogRepo := repository.NewDialogRepository(database.DB)
	testResultRepo := repository.NewTestResultRepository(database.DB)
	uploadRepo := repository.NewUploadRepository(database.DB)
	dialogLocker := repository.NewDialogLocker(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := gigachat.NewClient(cfg.GigaChat)
	ocrClient := ocr.NewClient(cfg.OCR)

	userService := service.NewUserService(userRepo, jwtManager)
	dialogService := service.NewDialogService(dialogRepo)
	progressService := service.NewProgressService(testResultRepo)
	chatService := service.NewChatService(dialogRepo, testResultRepo, dialogLocker, llmClient, progressService)
	searchService := service.NewSearchService(es.ESClient, cfg.Elasticsearch.IndexName)
	uploadService := service.NewUploadService(uploadRepo, ocrClient, cfg.MinIO.BucketName)

	// 6. 启动消息索引管道的后台消费者
	processor := pipeline.NewProcessor(cfg.Elasticsearch)
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService, dialogService, cfg.MiniApp)
	dialogHandler := handler.NewDialogHandler(dialogService)
	chatHandler := handler.NewChatHandler(chatService, dialogService, userService, jwtManager)
	ocrHandler := handler.NewOCRHandler(uploadService)
	searchHandler := handler.NewSearchHandler(searchService)
	progressHandler := handler.NewProgressHandler(progressService)
	adminHandler := handler.NewAdminHandler(progressService)

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", authHandler.RefreshToken)
			auth.POST("/miniapp", authHandler.MiniAppLogin)
		}

		users := apiV1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", userHandler.GetMe)
			}
		}

		authed := apiV1.Group("/")
		authed.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			dialogs := authed.Group("/dialogs")
			{
				dialogs.GET("", dialogHandler.List)
				dialogs.POST("", dialogHandler.Create)
				dialogs.GET("/:id/messages", dialogHandler.GetMessages)
				dialogs.PUT("/:id", dialogHandler.Rename)
				dialogs.DELETE("/:id", dialogHandler.Delete)
			}

			authed.POST("/chat", chatHandler.Chat)
			authed.GET("/chat/websocket-token", chatHandler.GetWebsocketToken)
			authed.POST("/ocr", ocrHandler.Recognize)
			authed.GET("/uploads", ocrHandler.ListUploads)
			authed.GET("/search", searchHandler.Search)
			authed.GET("/progress", progressHandler.Report)
		}

		admin := apiV1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager, userService), middleware.AdminAuthMiddleware())
		{
			admin.GET("/test-results", adminHandler.ListTestResults)
		}
	}

	// WebSocket 握手走路径 token，不经过 Authorization 头
	r.GET("/chat/:token", chatHandler.Handle)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
