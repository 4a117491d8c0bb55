package api

import (
	"context"
	"net/http"
)

type openDoorRequest struct {
	Delay int `json:"delay,omitempty"`
}

func (c *Client) ListDoors(ctx context.Context) ([]Door, error) {
	var doors []Door
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "doors",
		authenticated:  true,
		defaultMessage: "Failed to fetch doors",
	}, &doors)
	return doors, err
}

func (c *Client) CreateDoor(ctx context.Context, door DoorInput) (*Door, error) {
	var created Door
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "doors",
		body:           door,
		authenticated:  true,
		defaultMessage: "Failed to create door",
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDoor replaces the door's settings. Fields missing from the response,
// or an empty response, keep the values that were sent.
func (c *Client) UpdateDoor(ctx context.Context, id ID, door DoorInput) (*Door, error) {
	updated := Door{
		ID:           id,
		Name:         door.Name,
		TerminalIP:   door.TerminalIP,
		TerminalPort: door.TerminalPort,
		DefaultDelay: door.DefaultDelay,
		AgentID:      door.AgentID,
	}
	err := c.do(ctx, request{
		method:         http.MethodPut,
		path:           "doors/" + pathID(id),
		body:           door,
		authenticated:  true,
		defaultMessage: "Failed to update door",
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteDoor(ctx context.Context, id ID) error {
	return c.do(ctx, request{
		method:         http.MethodDelete,
		path:           "doors/" + pathID(id),
		authenticated:  true,
		defaultMessage: "Failed to delete door",
	}, nil)
}

// OpenDoor asks the door to open for delayMs milliseconds. A zero delay uses
// the door's default_delay. A 2xx without a body counts as success.
func (c *Client) OpenDoor(ctx context.Context, id ID, delayMs int) (*DoorAction, error) {
	action := DoorAction{Success: true}
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "doors/" + pathID(id) + "/open",
		body:           openDoorRequest{Delay: delayMs},
		authenticated:  true,
		defaultMessage: "Failed to open door",
	}, &action)
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func (c *Client) CloseDoor(ctx context.Context, id ID) (*DoorAction, error) {
	action := DoorAction{Success: true}
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "doors/" + pathID(id) + "/close",
		authenticated:  true,
		defaultMessage: "Failed to close door",
	}, &action)
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func (c *Client) GetDoorStatus(ctx context.Context, id ID) (*DoorStatus, error) {
	var status DoorStatus
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "doors/" + pathID(id) + "/status",
		authenticated:  true,
		defaultMessage: "Failed to fetch door status",
	}, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
