package store

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/gift-budget/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{name}/versions/{version}

type secretsStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretsStore(client *secretmanager.Client, projectID string) *secretsStore {
	return &secretsStore{
		client:    client,
		projectID: projectID,
	}
}

// versionName expands a bare secret id to its latest version; full resource
// names pass through, with /versions/latest appended when missing.
func (s *secretsStore) versionName(name string) string {
	if !strings.HasPrefix(name, "projects/") {
		name = fmt.Sprintf("projects/%s/secrets/%s", s.projectID, name)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	return name
}

func (s *secretsStore) AccessSecret(ctx context.Context, name string) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.versionName(name),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", errs.NewNotFoundError(fmt.Sprintf("secret %s not found", name))
		}
		return "", errs.NewExternalServiceError("secretmanager", "failed to access secret", false, err)
	}
	return strings.TrimSpace(string(res.Payload.Data)), nil
}
