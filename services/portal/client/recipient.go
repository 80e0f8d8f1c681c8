// services/portal/client/recipient.go
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/example/payment-portal/internal/session"
	perrors "github.com/example/payment-portal/pkg/errors"
	m "github.com/example/payment-portal/pkg/metrics"
)

type recipientDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	LogoURL  string `json:"logo_url"`
}

// RecipientClient talks to the processor's recipient API, one base URL per
// environment ("prod", "demo", ...).
type RecipientClient struct {
	http     *resty.Client
	baseURLs map[string]string
}

func NewRecipientClient(baseURLs map[string]string, timeout time.Duration) *RecipientClient {
	hc := resty.New()
	hc.SetTimeout(timeout)
	hc.SetHeader("Accept", "application/json")

	urls := make(map[string]string, len(baseURLs))
	for env, u := range baseURLs {
		urls[env] = strings.TrimRight(u, "/")
	}
	return &RecipientClient{http: hc, baseURLs: urls}
}

// Recipient returns an empty recipient, not an error, when the portal is unknown.
func (c *RecipientClient) Recipient(ctx context.Context, portalCode, env string) (session.Recipient, error) {
	if portalCode == "" {
		m.IncLookup(env, "skipped")
		return session.Recipient{}, nil
	}
	base, ok := c.baseURLs[env]
	if !ok {
		m.IncLookup(env, "unknown_env")
		return session.Recipient{}, perrors.Wrap(perrors.CodeUnknownEnv, fmt.Sprintf("no recipient API for env %q", env), nil)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("code", portalCode).
		Get(base + "/recipients/{code}")
	if err != nil {
		m.IncLookup(env, "error")
		return session.Recipient{}, perrors.Wrap(perrors.CodeRecipientUnavailable, "lookup "+portalCode, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		m.IncLookup(env, "not_found")
		return session.Recipient{}, nil
	case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
		m.IncLookup(env, "error")
		return session.Recipient{}, perrors.Wrap(perrors.CodeRecipientUnavailable,
			fmt.Sprintf("lookup %s: status %d", portalCode, resp.StatusCode()), nil)
	}

	var dto recipientDTO
	if err := json.Unmarshal(resp.Body(), &dto); err != nil {
		m.IncLookup(env, "error")
		return session.Recipient{}, perrors.Wrap(perrors.CodeRecipientUnavailable, "decode "+portalCode, err)
	}
	m.IncLookup(env, "found")
	return session.Recipient(dto), nil
}
