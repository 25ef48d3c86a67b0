// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"ravent/agentic-api/db"
	"ravent/agentic-api/middleware"
	"ravent/agentic-api/service"
	"ravent/agentic-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Storage storage.Storage
	Files   *service.Files
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	st, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage, %w", err)
	}

	a.Storage = st
	a.Files = service.NewFiles(db, st)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{viper.GetString("host.frontend_origin")},
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = true
	router.MaxMultipartMemory = 5 << 20

	a.registerRoutes()

	return a, nil
}

// registerRoutes wires every endpoint onto the API's router. Split out
// from NewRouter so tests can mount the same routes on their own
// database and storage.
func (a *API) registerRoutes() {
	jwt := middleware.NewJWTMiddleware(a.DB)
	authLimit := middleware.NewRateLimiter(1, 5).Middleware()
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := a.Router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a bearer token
		main.HEAD("/validate", jwt, a.Validate)
	}

	accounts := main.Group("/accounts", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/accounts/register/		-> Registers a new user
		accounts.POST("/register/", authLimit, a.UserRegister)

		// POST /api/accounts/login/		-> Exchanges credentials for a token pair
		accounts.POST("/login/", authLimit, a.UserLogin)

		// POST /api/accounts/token/refresh/	-> Exchanges a refresh token for a new access token
		accounts.POST("/token/refresh/", a.TokenRefresh)

		// GET /api/accounts/profile/		-> Returns the authenticated user's profile
		accounts.GET("/profile/", jwt, cachePerUser(30), a.UserProfile)
	}

	agenticai := main.Group("/agenticai")
	{
		// GET /api/agenticai/files/		-> Lists the user's files, newest first
		agenticai.GET("/files/", jwt, a.FileList)

		// POST /api/agenticai/files/		-> Uploads a new file (multipart)
		agenticai.POST("/files/", jwt, middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// DELETE /api/agenticai/files/:id/	-> Deletes a file owned by the user
		agenticai.DELETE("/files/:id/", jwt, a.FileDelete)

		// POST /api/agenticai/chat/		-> Canned chat answer, placeholder for the RAG system
		agenticai.POST("/chat/", middleware.BodySizeLimiter(1<<20), a.Chat)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

// cachePerUser caches a response per authenticated user. Only safe on
// endpoints whose output can't change within the TTL, like the profile
// (users are immutable after registration).
func cachePerUser(sec int) gin.HandlerFunc {
	return cache.Cache(
		store,
		time.Second*time.Duration(sec),
		cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
			return true, cache.Strategy{
				CacheKey: c.FullPath() + ":" + c.GetString("userID"),
			}
		}),
	)
}
