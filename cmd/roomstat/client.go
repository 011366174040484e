package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/example/meeting-relay/modules/activity"
	"github.com/example/meeting-relay/modules/api"
	"github.com/gofiber/fiber/v2"
)

type client struct {
	baseURL string
	timeout time.Duration
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (c *client) rooms() (api.RoomListResponse, error) {
	var out api.RoomListResponse
	return out, c.get("/api/v1/rooms", &out)
}

func (c *client) stats() (api.StatsResponse, error) {
	var out api.StatsResponse
	return out, c.get("/api/v1/stats", &out)
}

func (c *client) history(room string) (api.HistoryResponse, error) {
	var out api.HistoryResponse
	return out, c.get("/api/v1/rooms/history?room="+url.QueryEscape(room), &out)
}

func (c *client) activity(limit int) (activity.Summary, error) {
	var out activity.Summary
	return out, c.get(fmt.Sprintf("/api/v1/activity?limit=%d", limit), &out)
}

func (c *client) get(path string, v any) error {
	agent := fiber.Get(c.baseURL + path).Timeout(c.timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	code, body, errs := agent.Struct(v)
	if len(errs) > 0 {
		return fmt.Errorf("GET %s: %w", path, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, code, strings.TrimSpace(string(body)))
	}
	return nil
}
