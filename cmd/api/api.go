package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"farmai/internal/audit"
	"farmai/internal/auth"
	"farmai/internal/authz"
	"farmai/internal/ratelimiter"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	engine        *authz.Engine
	audit         *audit.Emitter
	rateLimiter   ratelimiter.Limiter

	// Flipped when shutdown begins; new requests are refused while
	// in-flight ones drain.
	inShutdown atomic.Bool
}

type config struct {
	addr        string
	env         string
	auth        authConfig
	auditBuffer int
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret       string
	strictSecret bool
	exp          time.Duration
	iss          string
}

type basicConfig struct {
	user string
	pass string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.ReadinessMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(app.RateLimiterMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public login; everything below requires a bearer token.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", app.loginHandler)
			r.With(app.AuthTokenMiddleware).Get("/me", app.currentPrincipalHandler)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.With(app.RequirePermission(authz.PermAIAdvice)).Post("/agricultural-advice", app.agriculturalAdviceHandler)
			r.With(app.RequirePermission(authz.PermGreenhouse)).Post("/greenhouse-advice", app.greenhouseAdviceHandler)
			r.With(app.RequirePermission(authz.PermBusinessAssessment)).Post("/assess-business", app.assessBusinessHandler)
			r.With(app.RequirePermission(authz.PermMarketAnalysis)).Post("/market-analysis", app.marketAnalysisHandler)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.With(app.RequirePermission(authz.PermCarbonAnalytics)).Get("/carbon", app.carbonAnalyticsHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.With(app.RequirePermission(authz.PermVerifyFarmer)).Post("/verify-farmer", app.verifyFarmerHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Flush queued audit records on every exit path, including a failed
	// listen.
	defer app.audit.Close()

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Infow("signal caught", "signal", s.String())

		// Refuse new work, then give in-flight requests a bounded
		// window to finish.
		app.inShutdown.Store(true)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
