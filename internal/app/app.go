package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ticketera/docs"
	"ticketera/internal/cache"
	"ticketera/internal/config"
	"ticketera/internal/db"
	"ticketera/internal/handlers"
	"ticketera/internal/middleware"
	"ticketera/internal/pdf"
	"ticketera/internal/repositories"
	"ticketera/internal/routes"
	"ticketera/internal/services"
	"ticketera/internal/storage"
	"ticketera/internal/utils"
)

// App holds the wired dependencies of the API server.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Redis   *redis.Client
	Router  *gin.Engine
	Janitor *services.Janitor
}

// Stores: shared KV store; Memory is set only when Redis is not configured.
type Stores struct {
	KV     cache.Store
	Memory *cache.Memory
	Redis  *redis.Client
}

func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.Redis.Addr == "" {
		log.Printf("[app] redis not configured, using in-memory store")
		mem := cache.NewMemory()
		return &Stores{KV: mem, Memory: mem}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Stores{KV: cache.NewRedis(client, cfg.Redis.Prefix), Redis: client}, nil
}

// Mailers picks the code transport and the buyer mailer from email.driver.
// The http relay only sends codes; review emails then go through SMTP when
// smtp_host is set, otherwise they are only logged.
func Mailers(cfg *config.Config) (services.CodeSender, services.OrderMailer) {
	e := cfg.Email
	smtp := func() services.EmailService {
		return services.NewEmailService(e.SMTPHost, e.SMTPPort, e.SMTPUser, e.SMTPPassword, e.FromEmail)
	}
	switch e.Driver {
	case config.MailDriverSMTP:
		m := smtp()
		return m, m
	case config.MailDriverHTTP:
		var orders services.OrderMailer = services.NewDryRunMailer()
		if e.SMTPHost != "" && e.FromEmail != "" {
			orders = smtp()
		}
		return utils.NewRelayClient(e.RelayURL, false), orders
	default:
		m := services.NewDryRunMailer()
		return m, m
	}
}

func jwtSecret(cfg *config.Config) string {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret
	}
	s, err := utils.RandomHex(32)
	if err != nil {
		log.Fatal("jwt secret: ", err)
	}
	log.Printf("[app] auth.jwt_secret is empty, using a random one: admin tokens will not survive a restart")
	return s
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === DB ===
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	// === Repos ===
	orderRepo := repositories.NewOrderRepository(conn)
	verificationRepo := repositories.NewEmailVerificationRepository(conn)
	attemptRepo := repositories.NewFailedAttemptRepository(conn)
	catalogRepo := repositories.NewCatalogRepository(conn)

	// === Services ===
	codeSender, orderMailer := Mailers(cfg)
	notifier, err := services.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		// notifications are optional
		log.Printf("[app] telegram disabled: %v", err)
		notifier = nil
	}
	var orderNotifier services.OrderNotifier
	if notifier != nil {
		orderNotifier = notifier
	}

	files := storage.NewLocalStorage(cfg.Files.RootDir, cfg.Files.PublicBaseURL)
	lim := cfg.Limits
	composer := services.NewPurchaseComposer(
		services.NewRateLimiter(stores.KV, lim.AttemptLimit, lim.AttemptWindow),
		services.NewDuplicateGuard(orderRepo),
		services.NewOTPService(verificationRepo, codeSender, lim.CodeTTL, lim.MaxCodeAttempts),
		services.NewAuditLogger(attemptRepo),
		files,
		orderRepo,
		orderNotifier,
	)
	catalogService := services.NewCatalogService(catalogRepo)
	checkoutService := services.NewCheckoutService(stores.KV, catalogService, composer, lim.CheckoutTTL)
	reviewService := services.NewReviewService(orderRepo, orderMailer)
	receiptService := services.NewReceiptService(orderRepo, catalogRepo, pdf.NewReceiptGenerator(cfg.Files.FontPath))
	authService := services.NewAuthService(jwtSecret(cfg), cfg.Auth.TokenTTL, cfg.Auth.Admins)

	var sweeper interface{ Sweep() int }
	if stores.Memory != nil {
		sweeper = stores.Memory
	}
	janitor := services.NewJanitor(verificationRepo, sweeper, lim.JanitorInterval)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.MaxMultipartMemory = lim.MaxVoucherBytes

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.Static("/vouchers", cfg.Files.RootDir)

	routes.SetupRoutes(router, routes.Handlers{
		Health:   handlers.NewHealthHandler(conn),
		Catalog:  handlers.NewCatalogHandler(catalogService),
		Checkout: handlers.NewCheckoutHandler(checkoutService, lim.MaxVoucherBytes),
		Orders:   handlers.NewOrderHandler(receiptService),
		Admin:    handlers.NewAdminHandler(authService, reviewService),
	}, authService)

	return &App{Config: cfg, DB: conn, Redis: stores.Redis, Router: router, Janitor: janitor}, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("Ошибка закрытия Redis: %v", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("Ошибка закрытия БД: %v", err)
	}
}

// Serve runs the HTTP server and the janitor until ctx is cancelled, then
// drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Janitor.Run(janitorCtx)
		close(done)
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Сервер запущен на %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down server...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("server shutdown: %w", err)
	}
	stopJanitor()
	<-done
	return serveErr
}

func Run() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка инициализации: ", err)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		log.Printf("Ошибка сервера: %v", err)
	}
}
