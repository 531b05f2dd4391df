package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// FederatedIdentity is what an external provider vouches for.
type FederatedIdentity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier checks an ID token issued by an external provider.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedIdentity, error)
}

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint.
type GoogleVerifier struct {
	ClientID string
	Endpoint string
	Client   *http.Client
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID: clientID,
		Endpoint: googleTokenInfoURL,
		Client: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type tokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*FederatedIdentity, error) {
	endpoint := v.Endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}
	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo: %w", err)
	}
	if v.ClientID != "" && info.Aud != v.ClientID {
		return nil, errors.New("token audience mismatch")
	}
	if info.Email == "" || !strings.EqualFold(info.EmailVerified, "true") {
		return nil, errors.New("email not verified")
	}
	return &FederatedIdentity{Subject: info.Sub, Email: info.Email, Name: info.Name}, nil
}
