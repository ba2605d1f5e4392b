package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
)

// HTTPEmitter POSTs audit events as JSON to a collector endpoint. When a
// signing secret is set, each request carries an X-Audit-Signature header
// with the hex HMAC-SHA256 of the body so the receiver can verify origin.
type HTTPEmitter struct {
	client *http.Client
	url    string
	secret []byte
}

// NewHTTPEmitter returns a WebhookEmitter for the given endpoint. secret may
// be empty to disable signing.
func NewHTTPEmitter(url, secret string) *HTTPEmitter {
	e := &HTTPEmitter{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
	if secret != "" {
		e.secret = []byte(secret)
	}
	return e
}

// Emit implements ports.WebhookEmitter.
func (e *HTTPEmitter) Emit(ctx context.Context, event ports.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.secret != nil {
		mac := hmac.New(sha256.New, e.secret)
		mac.Write(body)
		req.Header.Set("X-Audit-Signature", hex.EncodeToString(mac.Sum(nil)))
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("audit webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var _ ports.WebhookEmitter = (*HTTPEmitter)(nil)
