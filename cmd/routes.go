package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"notipayBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleUser))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	// Auth
	mux.Post("/auth/register", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/auth/login", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/auth/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Get("/auth/members", adminAuthMiddleware.ThenFunc(app.userHandler.Members))

	// Payment notices. Literal paths before :id so pat matches them first.
	mux.Post("/payment-notices", adminAuthMiddleware.ThenFunc(app.noticeHandler.Create))
	mux.Get("/payment-notices/my", authMiddleware.ThenFunc(app.noticeHandler.MyNotices))
	mux.Get("/payment-notices/my/unpaid", authMiddleware.ThenFunc(app.noticeHandler.MyUnpaidNotices))
	mux.Get("/payment-notices/:id", authMiddleware.ThenFunc(app.noticeHandler.Get))
	mux.Post("/payment-notices/:id/pay", authMiddleware.ThenFunc(app.noticeHandler.Pay))
	mux.Post("/payment-notices/:id/mark_paid", adminAuthMiddleware.ThenFunc(app.noticeHandler.MarkPaid))

	// Push notification device token
	mux.Put("/user/fcm_token", authMiddleware.ThenFunc(app.userHandler.UpdateFCMToken))

	// Provider callbacks authenticate with x-callback-token, not JWT.
	mux.Post("/webhooks/xendit", standardMiddleware.ThenFunc(app.webhookHandler.HandleCallback))

	return mux
}
