package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stockfolio/internal/config"
	"stockfolio/internal/httpx"
	"stockfolio/internal/marketdata"
	"stockfolio/internal/marketdata/client"
	"stockfolio/internal/marketdata/upstream"
	"stockfolio/internal/portfolio"
	"stockfolio/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.Market.UseSyntheticData && cfg.Market.APIKey == "" {
		log.Warn().Msg("use_synthetic_data=false but MARKET_API_KEY not set; upstream calls will fail auth")
	}

	mode := marketdata.NewMode(cfg.Market.UseSyntheticData)
	api := upstream.New(cfg.Market.APIKey,
		upstream.WithBaseURL(cfg.Market.BaseURL),
		upstream.WithTimeout(time.Duration(cfg.Market.RequestTimeoutSec)*time.Second),
		upstream.WithHTTPClient(httpx.New(time.Duration(cfg.Market.RequestTimeoutSec)*time.Second)),
	)
	market := client.New(api, mode,
		client.WithLogger(log.With().Str("component", "marketdata").Logger()),
		client.WithMinInterval(time.Duration(cfg.Market.MinRequestIntervalMS)*time.Millisecond),
		client.WithCacheTTL(time.Duration(cfg.Market.SearchCacheTTLSec)*time.Second),
		client.WithRetry(cfg.Market.MaxRetries, time.Duration(cfg.Market.RateLimitDelayMS)*time.Millisecond),
	)
	portfolios := portfolio.NewService(portfolio.NewStore(), market,
		log.With().Str("component", "portfolio").Logger())

	srv := server.New(server.Deps{
		Portfolios:     portfolios,
		Market:         market,
		Mode:           mode,
		Log:            log.Logger,
		RateLimitRPS:   5,
		RateLimitBurst: 15,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
