package main

import (
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"farmai/internal/audit"
	"farmai/internal/auth"
	"farmai/internal/authz"
	"farmai/internal/ratelimiter"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 200
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "1.0.0"

func main() {
	// .env is optional outside local development; real deployments set
	// the environment directly.
	_ = godotenv.Load()

	strictSecret := true
	if val, exists := os.LookupEnv("AUTH_STRICT_SECRET"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			strictSecret = parsedVal
		}
	}

	cfg := config{
		addr: os.Getenv("ADDR"),
		env:  os.Getenv("ENV"),
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:       os.Getenv("AUTH_TOKEN_SECRET"),
				strictSecret: strictSecret,
				exp:          time.Hour,
				iss:          "farmai",
			},
		},
		auditBuffer: 256,
		rateLimiter: LoadRateLimiterConfig(),
	}
	if cfg.addr == "" {
		cfg.addr = ":3000"
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// A guessable signing secret is worse than not starting at all.
	if cfg.auth.token.secret == "" {
		if cfg.auth.token.strictSecret {
			logger.Fatal("AUTH_TOKEN_SECRET is not set; refusing to start")
		}
		logger.Warn("AUTH_TOKEN_SECRET is not set, using an ephemeral development secret")
		cfg.auth.token.secret = fmt.Sprintf("dev-only-%d", time.Now().UnixNano())
	}

	// Role hierarchy and permission catalog, validated once here. A bad
	// table (unknown parent, cycle) aborts startup.
	policy, err := authz.NewPolicy(authz.DefaultConfig())
	if err != nil {
		logger.Fatal(err)
	}
	engine := authz.NewEngine(policy)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
		policy,
	)

	auditEmitter := audit.NewEmitter(audit.NewZapSink(logger), logger, cfg.auditBuffer)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		authenticator: jwtAuthenticator,
		engine:        engine,
		audit:         auditEmitter,
		rateLimiter:   rateLimiter,
	}

	// Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("audit_records_dropped", expvar.Func(func() any {
		return auditEmitter.Dropped()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
