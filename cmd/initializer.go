package main

import (
	"context"
	"database/sql"
	"log"

	"notipayBack/internal/config"
	"notipayBack/internal/handlers"
	"notipayBack/internal/repositories"
	"notipayBack/internal/services"
	"notipayBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	cfg      config.Config
	db       *sql.DB

	tokenManager *utils.Manager

	userRepo   *repositories.UserRepository
	noticeRepo *repositories.PaymentNoticeRepository

	userHandler    *handlers.UserHandler
	noticeHandler  *handlers.PaymentNoticeHandler
	webhookHandler *handlers.XenditWebhookHandler
}

func initializeApp(db *sql.DB, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	noticeRepo := &repositories.PaymentNoticeRepository{DB: db}

	tokenManager, err := utils.NewManager(cfg.JWTSigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	xenditService, err := services.NewXenditService(services.XenditConfig{
		APIKey:             cfg.XenditAPIKey,
		BaseURL:            cfg.Xendit.BaseURL,
		SuccessRedirectURL: cfg.Xendit.SuccessRedirectURL,
		FailureRedirectURL: cfg.Xendit.FailureRedirectURL,
		PayerEmail:         cfg.Xendit.PayerEmail,
	})
	if err != nil {
		errorLog.Fatal(err)
	}

	// Push notifications are optional: without Firebase credentials the
	// service runs with notifications disabled.
	var fcmService *services.FCMService
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := services.NewFCMClient(context.Background(), cfg.FirebaseCredentials)
		if err != nil {
			errorLog.Printf("firebase messaging disabled: %v", err)
		} else {
			fcmService = &services.FCMService{Client: fcmClient, Users: userRepo}
		}
	}

	// Services
	userService := &services.UserService{UserRepo: userRepo, TokenManager: tokenManager}
	noticeService := &services.PaymentNoticeService{
		Notices:         noticeRepo,
		Gateway:         xenditService,
		Notifications:   fcmService,
		DefaultCurrency: cfg.Xendit.DefaultCurrency,
	}

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	noticeHandler := &handlers.PaymentNoticeHandler{Service: noticeService}
	webhookHandler := &handlers.XenditWebhookHandler{
		Service:       noticeService,
		CallbackToken: cfg.XenditCallbackToken,
	}

	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		cfg:            cfg,
		db:             db,
		tokenManager:   tokenManager,
		userRepo:       userRepo,
		noticeRepo:     noticeRepo,
		userHandler:    userHandler,
		noticeHandler:  noticeHandler,
		webhookHandler: webhookHandler,
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}
