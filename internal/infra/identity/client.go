package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"officine/internal/config"
	"officine/internal/domain"

	"github.com/go-resty/resty/v2"
)

// Client talks to the identity provider's admin API. Its operations are
// advisory collaborators: the primary store stays the source of truth and
// callers decide whether a provider failure is fatal.
type Client struct {
	http *resty.Client
}

func NewClient(cfg config.Config) (*Client, error) {
	if cfg.IDPBaseURL == "" {
		return nil, errors.New("IDP_BASE_URL is required")
	}
	client := resty.New().
		SetBaseURL(cfg.IDPBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.IDPAdminKey)
	return &Client{http: client}, nil
}

// Authenticate exchanges user credentials for the subject id the provider
// has bound them to. Any rejection surfaces as ErrUnauthenticated.
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	var out struct {
		SubjectID string `json:"subject_id"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/sessions/authenticate")
	if err != nil {
		return "", err
	}
	if resp.IsError() || out.SubjectID == "" {
		return "", domain.ErrUnauthenticated
	}
	return out.SubjectID, nil
}

// CreateAccount provisions a credential account and returns the subject id
// the provider bound it to. The provider handles the invitation email and
// initial password flow.
func (c *Client) CreateAccount(ctx context.Context, email, displayName string) (string, error) {
	var out struct {
		SubjectID string `json:"subject_id"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "display_name": displayName}).
		SetResult(&out).
		Post("/admin/accounts")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() == http.StatusConflict {
		return "", fmt.Errorf("%w: un compte existe déjà pour cet email", domain.ErrConflict)
	}
	if resp.IsError() || out.SubjectID == "" {
		return "", fmt.Errorf("identity provider create account: status %d", resp.StatusCode())
	}
	return out.SubjectID, nil
}

func (c *Client) DeleteAccount(ctx context.Context, subjectID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/admin/accounts/" + subjectID)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("identity provider delete account: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) ForceSignOut(ctx context.Context, subjectID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/admin/accounts/" + subjectID + "/sign-out")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("identity provider sign-out: status %d", resp.StatusCode())
	}
	return nil
}

var _ domain.IdentityProvider = (*Client)(nil)
