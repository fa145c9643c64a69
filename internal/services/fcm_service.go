package services

import (
	"context"
	"errors"
	"log"
	"strings"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"notipayBack/internal/repositories"
)

// NewFCMClient builds a Firebase messaging client from a service-account
// credentials JSON blob.
func NewFCMClient(ctx context.Context, credentialsJSON string) (*messaging.Client, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, errors.New("FIREBASE_CREDENTIALS_JSON is empty")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, err
	}
	return app.Messaging(ctx)
}

// FCMService delivers best-effort push notifications to payers. Failures are
// logged and never propagated into the payment flow.
type FCMService struct {
	Client *messaging.Client
	Users  *repositories.UserRepository
}

func (s *FCMService) NotifyUser(ctx context.Context, userID uuid.UUID, title, body string) {
	if s == nil || s.Client == nil || s.Users == nil {
		return
	}

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("fcm: lookup user %s: %v", userID, err)
		return
	}
	if user.FCMToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	if _, err := s.Client.Send(ctx, msg); err != nil {
		log.Printf("fcm: send to user %s: %v", userID, err)
	}
}
