// README: Firebase Admin SDK initialisation: token verifier and file storage.
package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// IdentityToken holds the verified token data used by downstream middleware.
type IdentityToken struct {
	UID    string
	Claims map[string]interface{}
}

// TokenVerifier verifies a raw ID token string and returns identity data.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*IdentityToken, error)
}

// Firebase wraps the pieces of the Admin SDK this service uses: ID-token
// verification for request auth, and the default Cloud Storage bucket for
// package photos.
type Firebase struct {
	authClient *auth.Client
	bucket     *storage.BucketHandle
	bucketName string
}

// NewFirebase initialises the Admin SDK. If credentialsFile is non-empty it is
// used as the service-account JSON path; otherwise application-default
// credentials are used. bucketName may be empty when file storage is not
// configured, in which case Bucket() returns nil.
func NewFirebase(ctx context.Context, projectID, credentialsFile, bucketName string) (*Firebase, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID, StorageBucket: bucketName}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	fb := &Firebase{authClient: authClient, bucketName: bucketName}
	if bucketName != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase app.Storage: %w", err)
		}
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			return nil, fmt.Errorf("firebase default bucket: %w", err)
		}
		fb.bucket = bucket
	}
	return fb, nil
}

func (f *Firebase) VerifyIDToken(ctx context.Context, idToken string) (*IdentityToken, error) {
	token, err := f.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &IdentityToken{UID: token.UID, Claims: token.Claims}, nil
}

// Upload writes data to the bucket under the given object name and returns the
// object name as a stable file reference.
func (f *Firebase) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if f.bucket == nil {
		return "", fmt.Errorf("file storage is not configured")
	}
	w := f.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// PreviewURL returns a public media URL for a previously uploaded file ref.
func (f *Firebase) PreviewURL(ref string) string {
	if f.bucketName == "" || ref == "" {
		return ""
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", f.bucketName, ref)
}
