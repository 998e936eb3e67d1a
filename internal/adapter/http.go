// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// hashHeader carries the hex HMAC-SHA256 of a request or response body.
const hashHeader = "HashSHA256"

const (
	defaultRetryInterval    = 200 * time.Millisecond
	defaultMaxRetryInterval = 5 * time.Second
)

type httpServerAdapter struct {
	client *utils.HTTPClient
	hasher *utils.Hasher

	maxRetries    int
	retryInterval time.Duration

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter builds the HTTP implementation of [ServerAdapter].
// When hashKey is set request bodies are signed and signed responses are
// verified.
func NewHTTPServerAdapter(cfg config.Adapter, hashKey string, logger *logger.Logger) (ServerAdapter, error) {
	return newHTTPServerAdapter(cfg, hashKey, logger)
}

func newHTTPServerAdapter(cfg config.Adapter, hashKey string, logger *logger.Logger) (*httpServerAdapter, error) {
	if strings.TrimSpace(cfg.HTTPAddress) == "" {
		return nil, errors.New("invalid adapter http address: empty address")
	}

	a := &httpServerAdapter{
		client:        utils.NewHTTPClient(cfg.HTTPAddress, cfg.RequestTimeout),
		maxRetries:    max(cfg.MaxRetries, 0),
		retryInterval: defaultRetryInterval,
		logger:        logger,
	}
	if hashKey != "" {
		a.hasher = utils.NewHasher(hashKey)
	}
	a.SetToken(cfg.Token)

	return a, nil
}

func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpServerAdapter) Register(ctx context.Context, user models.User) (models.Token, error) {
	return h.authenticate(ctx, "register", "/api/user/register", user)
}

func (h *httpServerAdapter) Login(ctx context.Context, user models.User) (models.Token, error) {
	return h.authenticate(ctx, "login", "/api/user/login", user)
}

func (h *httpServerAdapter) authenticate(ctx context.Context, op, path string, user models.User) (models.Token, error) {
	body, err := json.Marshal(models.User{Login: user.Login, Password: user.Password})
	if err != nil {
		return models.Token{}, fmt.Errorf("%s encode request: %w", op, err)
	}

	resp, err := h.do(ctx, op, func() *resty.Request {
		return h.signedRequest(ctx, body)
	}, resty.MethodPost, path)
	if err != nil {
		return models.Token{}, err
	}

	tokenString, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		var auth models.AuthResponse
		if jsonErr := json.Unmarshal(resp.Body(), &auth); jsonErr != nil || auth.Token == "" {
			return models.Token{}, fmt.Errorf("%s parse bearer token: %w", op, err)
		}
		tokenString = auth.Token
	}

	userID, err := parseUserIDFromJWT(tokenString)
	if err != nil {
		return models.Token{}, fmt.Errorf("%s parse user id: %w", op, err)
	}

	h.SetToken(tokenString)
	return models.Token{SignedString: tokenString, UserID: userID}, nil
}

func (h *httpServerAdapter) Push(ctx context.Context, appID string, req models.PushRequest) (models.PushResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("push encode request: %w", err)
	}

	resp, err := h.do(ctx, "push", func() *resty.Request {
		return h.authedRequest(h.signedRequest(ctx, body)).SetPathParam("app", appID)
	}, resty.MethodPost, "/sync/{app}/push")
	if err != nil {
		return models.PushResponse{}, err
	}

	var out models.PushResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.PushResponse{}, fmt.Errorf("decode push response: %w", err)
	}
	return out, nil
}

func (h *httpServerAdapter) Pull(ctx context.Context, appID string, version string) (models.PullResponse, error) {
	resp, err := h.do(ctx, "pull", func() *resty.Request {
		r := h.authedRequest(h.client.R().SetContext(ctx)).SetPathParam("app", appID)
		if version != "" {
			r.SetQueryParam("version", version)
		}
		return r
	}, resty.MethodGet, "/sync/{app}/pull")
	if err != nil {
		return models.PullResponse{}, err
	}

	var out models.PullResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.PullResponse{}, fmt.Errorf("decode pull response: %w", err)
	}
	return out, nil
}

func (h *httpServerAdapter) Meta(ctx context.Context, appID string) (models.MetaResponse, error) {
	resp, err := h.do(ctx, "meta", func() *resty.Request {
		return h.authedRequest(h.client.R().SetContext(ctx)).SetPathParam("app", appID)
	}, resty.MethodGet, "/sync/{app}/meta")
	if err != nil {
		return models.MetaResponse{}, err
	}

	var out models.MetaResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.MetaResponse{}, fmt.Errorf("decode meta response: %w", err)
	}
	return out, nil
}

func (h *httpServerAdapter) Purge(ctx context.Context, appID string) (models.PurgeResponse, error) {
	resp, err := h.do(ctx, "purge", func() *resty.Request {
		return h.authedRequest(h.client.R().SetContext(ctx)).SetPathParam("app", appID)
	}, resty.MethodDelete, "/sync/{app}")
	if err != nil {
		return models.PurgeResponse{}, err
	}

	var out models.PurgeResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.PurgeResponse{}, fmt.Errorf("decode purge response: %w", err)
	}
	return out, nil
}

func (h *httpServerAdapter) Version(ctx context.Context) (string, error) {
	resp, err := h.do(ctx, "version", func() *resty.Request {
		return h.client.R().SetContext(ctx)
	}, resty.MethodGet, "/api/version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.String()), nil
}

// do executes the request built by newRequest, retrying transport failures
// and 5xx answers. A fresh request is built for every attempt.
func (h *httpServerAdapter) do(ctx context.Context, op string, newRequest func() *resty.Request, method, path string) (*resty.Response, error) {
	attempt := 0
	operation := func() (*resty.Response, error) {
		attempt++
		resp, err := newRequest().Execute(method, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(fmt.Errorf("%s request: %w", op, ctx.Err()))
			}
			h.logger.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("request failed")
			return nil, fmt.Errorf("%s request: %w", op, err)
		}

		if err = mapHTTPError(resp); err != nil {
			if retryable(resp) {
				h.logger.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("server error")
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}

		if err = h.verify(resp); err != nil {
			return nil, backoff.Permanent(err)
		}
		return resp, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(h.newBackOff()),
		backoff.WithMaxTries(uint(h.maxRetries+1)),
	)
}

func (h *httpServerAdapter) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.retryInterval
	b.MaxInterval = defaultMaxRetryInterval
	return b
}

func (h *httpServerAdapter) signedRequest(ctx context.Context, body []byte) *resty.Request {
	r := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if h.hasher != nil {
		r.SetHeader(hashHeader, h.hasher.SumHex(body))
	}
	return r
}

func (h *httpServerAdapter) authedRequest(r *resty.Request) *resty.Request {
	if token := h.Token(); token != "" {
		r.SetHeader("Authorization", "Bearer "+token)
	}
	return r
}

// verify checks the response signature when both sides share a key. Unsigned
// responses are accepted.
func (h *httpServerAdapter) verify(resp *resty.Response) error {
	if h.hasher == nil {
		return nil
	}
	signature := resp.Header().Get(hashHeader)
	if signature == "" {
		return nil
	}
	if !h.hasher.Verify(resp.Body(), signature) {
		return ErrIntegrityCheckFailed
	}
	return nil
}

// parseUserIDFromJWT reads the subject without verifying the signature. The
// client has no signing key; the server validates the token on every call.
func parseUserIDFromJWT(tokenString string) (int64, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return 0, err
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}
