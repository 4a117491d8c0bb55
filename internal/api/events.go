package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultEventLimit is used when EventFilter.Limit is zero.
const DefaultEventLimit = 50

// ListEvents returns the audit log. Ordering and truncation are the server's.
func (c *Client) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if filter.DoorID != "" {
		query.Set("door_id", string(filter.DoorID))
	}

	var events []Event
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "events",
		query:          query,
		authenticated:  true,
		defaultMessage: "Failed to fetch events",
	}, &events)
	return events, err
}

func (c *Client) GetNotificationPreferences(ctx context.Context) ([]NotificationPreference, error) {
	var prefs []NotificationPreference
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "notifications",
		authenticated:  true,
		defaultMessage: "Failed to fetch notification preferences",
	}, &prefs)
	return prefs, err
}

// SetNotificationPreference updates the preference for pref.DoorID.
func (c *Client) SetNotificationPreference(ctx context.Context, pref NotificationPreference) error {
	pref.DoorName = ""
	return c.do(ctx, request{
		method:         http.MethodPut,
		path:           "notifications",
		body:           pref,
		authenticated:  true,
		defaultMessage: "Failed to save notification preference",
	}, nil)
}

func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "agents",
		authenticated:  true,
		defaultMessage: "Failed to fetch agents",
	}, &agents)
	return agents, err
}

// GetCommandResult fetches the outcome of an asynchronous command once.
// Polling, if wanted, is up to the caller.
func (c *Client) GetCommandResult(ctx context.Context, commandID ID) (*CommandResult, error) {
	var result CommandResult
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "commands/" + pathID(commandID),
		authenticated:  true,
		defaultMessage: "Failed to fetch command result",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
