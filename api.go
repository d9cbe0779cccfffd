package webio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const timeout = 10 * time.Second

var (
	ErrUnauthorized     = errors.New("invalid login or password")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

const (
	actionCheckConnection    = "check_connection"
	actionGetInfo            = "get_info"
	actionGetStatus          = "get_status"
	actionStatusSubscription = "status_subscription"
	actionSetOutput          = "set_output"
	actionArmZone            = "arm_zone"
)

// APIClient is the HTTP transport of a WebIO device.
//
// Every action is a JSON POST to /api/<action> carrying the credentials.
type APIClient struct {
	baseURL  string
	login    string
	password string
	http     *resty.Client
}

var _ Transport = &APIClient{}

func NewAPIClient(host, login, password string) *APIClient {
	base := strings.TrimRight(host, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &APIClient{
		baseURL:  base,
		login:    login,
		password: password,
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

func (c *APIClient) CheckConnection(ctx context.Context) bool {
	if _, err := c.call(ctx, actionCheckConnection, nil); err != nil {
		log.Warn("device is not reachable", "url", c.baseURL, "err", err)
		return false
	}
	return true
}

func (c *APIClient) GetInfo(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.call(ctx, actionGetInfo, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

func (c *APIClient) GetStatus(ctx context.Context) (Snapshot, error) {
	resp, err := c.call(ctx, actionGetStatus, nil)
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(resp)
}

func (c *APIClient) StatusSubscription(ctx context.Context, address string, subscribe bool) bool {
	resp, err := c.call(ctx, actionStatusSubscription, map[string]any{
		"address":   address,
		"subscribe": subscribe,
	})
	if err != nil {
		log.Error("could not change status subscription", "address", address, "subscribe", subscribe, "err", err)
		return false
	}
	var result struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(resp, &result); err == nil && result.Success != nil {
		return *result.Success
	}
	return true
}

func (c *APIClient) SetOutput(ctx context.Context, index int, on bool) error {
	log.Debug("set output", "index", index, "on", on)
	_, err := c.call(ctx, actionSetOutput, map[string]any{
		"index":  index,
		"status": on,
	})
	return err
}

func (c *APIClient) ArmZone(ctx context.Context, index int, arm bool, passcode *string) error {
	log.Debug("arm zone", "index", index, "arm", arm)
	params := map[string]any{
		"index": index,
		"arm":   arm,
	}
	if passcode != nil {
		params["passcode"] = *passcode
	}
	_, err := c.call(ctx, actionArmZone, params)
	return err
}

func (c *APIClient) call(ctx context.Context, action string, params map[string]any) ([]byte, error) {
	body := map[string]any{
		"login":    c.login,
		"password": c.password,
	}
	for k, v := range params {
		body[k] = v
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/api/" + action)
	if err != nil {
		return nil, fmt.Errorf("could not %s: %w", action, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return nil, fmt.Errorf("could not %s: %w", action, ErrUnauthorized)
	case !resp.IsSuccess():
		return nil, fmt.Errorf(
			"could not %s: %w: %d %s",
			action,
			ErrUnexpectedStatus,
			code,
			strings.TrimSpace(resp.String()),
		)
	}
	return resp.Body(), nil
}
