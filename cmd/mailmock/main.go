package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SendEmailRequest mirrors the subset of the Resend /emails payload the
// gateway sends.
type SendEmailRequest struct {
	From    string   `json:"from" binding:"required"`
	To      []string `json:"to" binding:"required,min=1"`
	Subject string   `json:"subject" binding:"required"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to"`
}

type SendEmailResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the Resend error envelope.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

type StoredEmail struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	Subject    string    `json:"subject"`
	ReplyTo    string    `json:"reply_to,omitempty"`
	HTMLLength int       `json:"html_length"`
	CreatedAt  time.Time `json:"created_at"`
}

// MockMailer accepts emails like the Resend API and keeps them in memory.
type MockMailer struct {
	mu          sync.RWMutex
	apiKey      string
	failureRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	emails      []StoredEmail
	rng         *rand.Rand
}

func NewMockMailer(apiKey string, failureRate float64, minDelay, maxDelay time.Duration) *MockMailer {
	return &MockMailer{
		apiKey:      apiKey,
		failureRate: failureRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockMailer) authorized(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}
	return m.apiKey == "" || token == m.apiKey
}

func (m *MockMailer) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockMailer) shouldFail() bool {
	return m.rng.Float64() < m.failureRate
}

func (m *MockMailer) store(req *SendEmailRequest) StoredEmail {
	e := StoredEmail{
		ID:         uuid.NewString(),
		From:       req.From,
		To:         req.To,
		Subject:    req.Subject,
		ReplyTo:    req.ReplyTo,
		HTMLLength: len(req.HTML),
		CreatedAt:  time.Now().UTC(),
	}
	m.emails = append(m.emails, e)
	return e
}

type Handler struct {
	mailer *MockMailer
}

func NewHandler(mailer *MockMailer) *Handler {
	return &Handler{mailer: mailer}
}

// SendEmail handles POST /emails
func (h *Handler) SendEmail(c *gin.Context) {
	if !h.mailer.authorized(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			StatusCode: http.StatusUnauthorized,
			Name:       "missing_api_key",
			Message:    "Missing or invalid API key in the authorization header",
		})
		return
	}

	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			StatusCode: http.StatusUnprocessableEntity,
			Name:       "validation_error",
			Message:    err.Error(),
		})
		return
	}

	h.mailer.mu.Lock()
	defer h.mailer.mu.Unlock()

	time.Sleep(h.mailer.randomDelay())

	if h.mailer.shouldFail() {
		log.Warn().Str("subject", req.Subject).Strs("to", req.To).Msg("Simulated provider failure")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Name:       "internal_server_error",
			Message:    "An unexpected error occurred",
		})
		return
	}

	e := h.mailer.store(&req)
	log.Info().
		Str("id", e.ID).
		Strs("to", e.To).
		Str("subject", e.Subject).
		Int("html_length", e.HTMLLength).
		Msg("Email accepted")

	c.JSON(http.StatusOK, SendEmailResponse{ID: e.ID})
}

// ListEmails handles GET /emails
func (h *Handler) ListEmails(c *gin.Context) {
	h.mailer.mu.RLock()
	defer h.mailer.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"data":  h.mailer.emails,
		"count": len(h.mailer.emails),
	})
}

// GetEmail handles GET /emails/:id
func (h *Handler) GetEmail(c *gin.Context) {
	id := c.Param("id")

	h.mailer.mu.RLock()
	defer h.mailer.mu.RUnlock()

	for _, e := range h.mailer.emails {
		if e.ID == id {
			c.JSON(http.StatusOK, e)
			return
		}
	}
	c.JSON(http.StatusNotFound, ErrorResponse{
		StatusCode: http.StatusNotFound,
		Name:       "not_found",
		Message:    "Email not found",
	})
}

// UpdateConfig changes the simulated failure rate at runtime.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		FailureRate *float64 `json:"failure_rate"`
	}
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	h.mailer.mu.Lock()
	defer h.mailer.mu.Unlock()
	if config.FailureRate != nil && *config.FailureRate >= 0 && *config.FailureRate <= 1 {
		h.mailer.failureRate = *config.FailureRate
		log.Info().Float64("rate", *config.FailureRate).Msg("Updated failure rate")
	}

	c.JSON(http.StatusOK, gin.H{"failure_rate": h.mailer.failureRate})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	router.POST("/emails", handler.SendEmail)
	router.GET("/emails", handler.ListEmails)
	router.GET("/emails/:id", handler.GetEmail)
	router.PUT("/config", handler.UpdateConfig)
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	apiKey := getEnv("MOCK_API_KEY", "")
	failureRate := getEnvFloat("FAILURE_RATE", 0)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 300*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("failure_rate", failureRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Bool("api_key_required", apiKey != "").
		Msg("Starting mock email provider")

	router := SetupRouter(NewHandler(NewMockMailer(apiKey, failureRate, minDelay, maxDelay)))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
