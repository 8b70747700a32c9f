package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/handler"
	"github.com/TIANLI0/BlindSight/middleware"
	"github.com/TIANLI0/BlindSight/service"
	"github.com/TIANLI0/BlindSight/service/dnn"
	"github.com/TIANLI0/BlindSight/service/facerec"
	"github.com/TIANLI0/BlindSight/service/remote"
	"github.com/TIANLI0/BlindSight/service/sms"
	"github.com/TIANLI0/BlindSight/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting BlindSight server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	ctx := context.Background()

	// 目标检测
	detector, closeDetector := newDetector(ctx, cfg)
	defer closeDetector()

	// 检测结果缓存
	if cfg.Redis.Enabled {
		redisService := service.NewRedisService(&cfg.Redis)
		if err := redisService.Ping(ctx); err != nil {
			utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
		} else {
			utils.Logger.Info("redis connected successfully")
			detector = service.NewCachedDetector(detector, redisService)
		}
		defer redisService.Close()
	}

	roadAssist := service.NewRoadAssistService(detector, &cfg.Detection)

	// 人脸识别
	var faceService *service.FaceService
	if cfg.Face.Enabled {
		recognizer, err := facerec.NewRecognizer(&cfg.Face)
		if err != nil {
			utils.Logger.Warn("face recognition disabled", zap.Error(err))
		} else {
			defer recognizer.Close()
			faceService = service.NewFaceService(recognizer)
		}
	}

	// 纸币识别
	var currencyService *service.CurrencyService
	if cfg.Currency.Enabled {
		classifier, err := dnn.NewCurrencyClassifier(&cfg.Currency, cfg.Detection.MaxConcurrent)
		if err != nil {
			utils.Logger.Warn("currency classification disabled", zap.Error(err))
		} else {
			defer classifier.Close()
			currencyService = service.NewCurrencyService(classifier, cfg.Currency.Labels)
		}
	}

	// 求助短信
	var alertService *service.AlertService
	if cfg.SMS.Enabled {
		sender, err := sms.NewTwilioSender(&cfg.SMS)
		if err != nil {
			utils.Logger.Warn("sms alert disabled", zap.Error(err))
		} else {
			alertService = service.NewAlertService(sender)
		}
	}

	// 初始化Handler
	assistHandler := handler.NewAssistHandler(cfg, roadAssist, faceService, currencyService)
	alertHandler := handler.NewAlertHandler(alertService)
	streamHandler := handler.NewStreamHandler(cfg, roadAssist)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 创建路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "ok",
			"version":  Version,
			"face":     faceService != nil,
			"currency": currencyService != nil,
			"sms":      alertService != nil,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"build_id":   BuildID,
			"git_commit": GitCommit,
			"git_branch": GitBranch,
		})
	})

	// API路由，路径与移动端保持一致
	r.POST("/roadassist", assistHandler.RoadAssist)
	r.POST("/facerecognize", assistHandler.FaceRecognize)
	r.POST("/currency", assistHandler.Currency)
	r.POST("/smsalert", alertHandler.SMSAlert)
	r.GET("/ws/roadassist", streamHandler.RoadAssist)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}
}

// newDetector 按配置选择本地 DNN 或远程推理服务
func newDetector(ctx context.Context, cfg *config.Config) (service.DetectionProvider, func()) {
	switch cfg.Detection.Backend {
	case "remote":
		d := remote.NewDetector(&cfg.Detection)
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := d.CheckHealth(healthCtx); err != nil {
			utils.Logger.Warn("ML service not available", zap.Error(err))
		}
		return d, func() {}
	case "dnn":
		d, err := dnn.NewDetector(&cfg.Detection)
		if err != nil {
			utils.Logger.Fatal("failed to initialize detection network", zap.Error(err))
		}
		return d, func() { d.Close() }
	default:
		utils.Logger.Fatal("unknown detection backend", zap.String("backend", cfg.Detection.Backend))
		return nil, nil
	}
}
