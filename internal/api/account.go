package api

import (
	"context"
	"net/http"
)

type profileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type passwordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// GetDoorQuota returns the tenant's door quota as sent by the server.
// Whether to block a create is the caller's decision.
func (c *Client) GetDoorQuota(ctx context.Context) (*Quota, error) {
	return c.quota(ctx, "quota", "Failed to fetch door quota")
}

func (c *Client) GetUserQuota(ctx context.Context) (*Quota, error) {
	return c.quota(ctx, "users-quota", "Failed to fetch user quota")
}

func (c *Client) quota(ctx context.Context, path, defaultMessage string) (*Quota, error) {
	var q Quota
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           path,
		authenticated:  true,
		defaultMessage: defaultMessage,
	}, &q)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) GetLicenseStatus(ctx context.Context) (*LicenseStatus, error) {
	var status LicenseStatus
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "license-status",
		authenticated:  true,
		defaultMessage: "Failed to fetch license status",
	}, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "users/me",
		authenticated:  true,
		defaultMessage: "Failed to fetch profile",
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, firstName, lastName string) error {
	return c.do(ctx, request{
		method:         http.MethodPut,
		path:           "users/me",
		body:           profileUpdate{FirstName: firstName, LastName: lastName},
		authenticated:  true,
		defaultMessage: "Failed to update profile",
	}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, request{
		method:         http.MethodPut,
		path:           "users/me/password",
		body:           passwordChange{CurrentPassword: current, NewPassword: next},
		authenticated:  true,
		defaultMessage: "Failed to change password",
	}, nil)
}
