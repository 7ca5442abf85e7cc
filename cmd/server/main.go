// Package main implements the backtesting REST service: bars come
// from ClickHouse, runs execute in-process, results return as JSON or
// Arrow IPC.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradegeek/services/arrowexport"
	"tradegeek/services/clickhouse"
	"tradegeek/services/engine"
	"tradegeek/services/monitoring"
	"tradegeek/strategies"
)

type serverConfig struct {
	HTTPPort int
	CH       clickhouse.Config
}

// BacktestService wires storage, engine and metrics behind the REST
// surface.
type BacktestService struct {
	store   *clickhouse.Client
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// BacktestRequest is the run submission payload. Broker settings
// default to the stock configuration when omitted.
type BacktestRequest struct {
	Symbols        []string           `json:"symbols" binding:"required"`
	StartTime      int64              `json:"start_time"`
	EndTime        int64              `json:"end_time"`
	Timeframe      string             `json:"timeframe"`
	Strategy       string             `json:"strategy" binding:"required"`
	Params         map[string]float64 `json:"params"`
	InitialCash    *float64           `json:"initial_cash"`
	CommissionRate *float64           `json:"commission_rate"`
	SlippagePct    *float64           `json:"slippage_pct"`
}

func (s *BacktestService) setupRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/backtest", s.handleBacktest)
		api.GET("/strategies", s.handleStrategies)
		api.GET("/health", s.handleHealth)
	}
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
}

func (s *BacktestService) handleBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := engine.DefaultRunConfig()
	if req.InitialCash != nil {
		cfg.InitialCash = decimal.NewFromFloat(*req.InitialCash)
	}
	if req.CommissionRate != nil {
		cfg.CommissionRate = decimal.NewFromFloat(*req.CommissionRate)
	}
	if req.SlippagePct != nil {
		cfg.SlippagePct = decimal.NewFromFloat(*req.SlippagePct)
	}
	tf, err := engine.ParseTimeframe(req.Timeframe)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.Timeframe = tf

	factory, err := strategies.Build(req.Strategy, strategies.Params(req.Params))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series := make(map[string][]engine.Bar, len(req.Symbols))
	for _, sym := range req.Symbols {
		bars, err := s.store.LoadBars(c.Request.Context(), sym, req.StartTime, req.EndTime)
		if err != nil {
			s.logger.Error("load bars failed", zap.String("symbol", sym), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		series[sym] = bars
	}

	start := time.Now()
	result, err := engine.RunOnce(cfg, series, factory, s.logger)
	s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RunsTotal.WithLabelValues("failed").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	s.metrics.RunsTotal.WithLabelValues("completed").Inc()
	s.metrics.TradesTotal.Add(float64(len(result.Trades)))

	s.logger.Info("backtest served",
		zap.String("run_id", result.RunID),
		zap.Strings("symbols", req.Symbols),
		zap.String("strategy", req.Strategy),
		zap.Duration("execution_time", time.Since(start)),
		zap.Int("trades", len(result.Trades)),
	)

	if c.Query("format") == "arrow" {
		data, err := arrowexport.EquityCurve(result.Equity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("X-Run-Id", result.RunID)
		c.Data(http.StatusOK, "application/vnd.apache.arrow.stream", data)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *BacktestService) handleStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": strategies.Names()})
}

func (s *BacktestService) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func main() {
	cfg := serverConfig{}
	flag.IntVar(&cfg.HTTPPort, "http-port", 8080, "HTTP listen port")
	flag.StringVar(&cfg.CH.Addr, "ch-addr", "localhost:9000", "ClickHouse native address")
	flag.StringVar(&cfg.CH.Database, "db", "backtest", "ClickHouse database")
	flag.StringVar(&cfg.CH.Username, "ch-user", "backtest", "ClickHouse user")
	flag.StringVar(&cfg.CH.Password, "ch-pass", "backtest123", "ClickHouse password")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	store, err := clickhouse.NewClient(cfg.CH)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer store.Close()

	service := &BacktestService{
		store:   store,
		metrics: monitoring.NewMetrics(),
		logger:  logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	service.setupRoutes(router)

	logger.Info("Starting backtest service", zap.Int("port", cfg.HTTPPort))
	go func() {
		if err := router.Run(fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")
}
