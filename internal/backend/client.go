// Package backend is the client of the group's remote REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/africanut/holding-admin/internal/session"
)

const maxErrorBody = 64 * 1024

// Client issues authenticated JSON calls to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Holder
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient constructs a new client. holder supplies the bearer token and
// is cleared when the backend rejects it.
func NewClient(baseURL string, timeout time.Duration, holder *session.Holder, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		session: holder,
		logger:  logger,
		now:     time.Now,
	}
}

type call struct {
	op        string
	method    string
	path      string
	query     url.Values
	body      any
	out       any
	protected bool
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func (c *Client) do(ctx context.Context, in call) error {
	if in.protected && !c.session.Authenticated(c.now()) {
		return &Error{Kind: KindUnauthorized, Op: in.op, Message: msgSignIn}
	}

	var body io.Reader
	if in.body != nil {
		raw, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("backend: %s: encode: %w", in.op, err)
		}
		body = bytes.NewReader(raw)
	}
	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.session.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &Error{Kind: KindNetwork, Op: in.op, Message: msgNetwork, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return c.fail(ctx, in.op, token, resp)
	}
	if in.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(in.out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Op: in.op, Message: "unreadable backend response", Err: err}
	}
	return nil
}

// fail classifies an error response. A 401 clears the session only when it
// still holds the token the request carried.
func (c *Client) fail(ctx context.Context, op, sent string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Op: op}
	e.Message, e.Fields = decodeErrorBody(raw)
	if e.Message == "" {
		e.Message = msgGeneric
	}

	if e.Kind == KindUnauthorized {
		cleared, err := c.session.ClearIf(context.WithoutCancel(ctx), sent)
		if err != nil {
			c.logger.Warn("clear session after 401", slog.Any("error", err))
		}
		if cleared {
			c.logger.Info("backend session expired", slog.String("op", op))
		}
	}
	return e
}

// decodeErrorBody extracts the user-facing text of a failed response. The
// backend sends either {"error": "..."}, {"message": "..."} or a field map
// under "errors".
func decodeErrorBody(raw []byte) (string, map[string]string) {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", nil
	}
	var msg string
	if len(body.Error) > 0 {
		if err := json.Unmarshal(body.Error, &msg); err != nil {
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(body.Error, &nested) == nil {
				msg = nested.Message
			}
		}
	}
	if msg == "" {
		msg = body.Message
	}
	var fields map[string]string
	if len(body.Errors) > 0 {
		if err := json.Unmarshal(body.Errors, &fields); err != nil {
			fields = nil
		}
	}
	return msg, fields
}

// IsKind reports whether err is a backend Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
