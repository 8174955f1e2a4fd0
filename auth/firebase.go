package auth

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

var (
	firebaseApp  *firebase.App
	firebaseAuth *fbauth.Client
	projectID    string
)

// InitFirebase wires the Firebase app from FIREBASE_CREDENTIALS_JSON and
// FIREBASE_PROJECT_ID. Called once from main; handlers that need Firebase
// fail with an explicit error if it was never initialized, which keeps tests
// free of credentials.
func InitFirebase(ctx context.Context) error {
	credsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
	if credsJSON == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_JSON must be set")
	}
	projectID = os.Getenv("FIREBASE_PROJECT_ID")
	if projectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID must be set")
	}

	opt := option.WithCredentialsJSON([]byte(credsJSON))
	config := &firebase.Config{ProjectID: projectID}

	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("getting firebase auth client: %w", err)
	}

	firebaseApp = app
	firebaseAuth = client
	return nil
}

// App exposes the initialized Firebase app (Firestore and friends hang off
// it). Nil until InitFirebase has run.
func App() *firebase.App {
	return firebaseApp
}

func verifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	if firebaseAuth == nil {
		return nil, fmt.Errorf("firebase auth not initialized")
	}
	token, err := firebaseAuth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if token.Audience != projectID {
		return nil, fmt.Errorf("invalid token audience")
	}
	return token, nil
}
