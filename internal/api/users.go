package api

import (
	"context"
	"net/http"
)

type permissionsUpdate struct {
	Permissions []Permission `json:"permissions"`
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "users",
		authenticated:  true,
		defaultMessage: "Failed to fetch users",
	}, &users)
	return users, err
}

func (c *Client) CreateUser(ctx context.Context, user UserInput) (*User, error) {
	var created User
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "users",
		body:           user,
		authenticated:  true,
		defaultMessage: "Failed to create user",
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser keeps the sent values for fields the response leaves out.
func (c *Client) UpdateUser(ctx context.Context, id ID, user UserInput) (*User, error) {
	updated := User{ID: id, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName, IsAdmin: user.IsAdmin}
	err := c.do(ctx, request{
		method:         http.MethodPut,
		path:           "users/" + pathID(id),
		body:           user,
		authenticated:  true,
		defaultMessage: "Failed to update user",
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, id ID) error {
	return c.do(ctx, request{
		method:         http.MethodDelete,
		path:           "users/" + pathID(id),
		authenticated:  true,
		defaultMessage: "Failed to delete user",
	}, nil)
}

func (c *Client) GetUserPermissions(ctx context.Context, userID ID) ([]Permission, error) {
	var permissions []Permission
	err := c.do(ctx, request{
		method:         http.MethodGet,
		path:           "users/" + pathID(userID) + "/permissions",
		authenticated:  true,
		defaultMessage: "Failed to fetch permissions",
	}, &permissions)
	return permissions, err
}

// SetUserPermissions replaces the user's door permissions. Rows granting
// nothing are not sent.
func (c *Client) SetUserPermissions(ctx context.Context, userID ID, permissions []Permission) error {
	return c.do(ctx, request{
		method:         http.MethodPut,
		path:           "users/" + pathID(userID) + "/permissions",
		body:           permissionsUpdate{Permissions: GrantedPermissions(permissions)},
		authenticated:  true,
		defaultMessage: "Failed to save permissions",
	}, nil)
}

// GrantedPermissions drops rows where every flag is false. The result is never nil
// so that an empty set encodes as [] rather than null.
func GrantedPermissions(permissions []Permission) []Permission {
	granted := make([]Permission, 0, len(permissions))
	for _, p := range permissions {
		if p.Any() {
			granted = append(granted, Permission{
				DoorID:        p.DoorID,
				CanOpen:       p.CanOpen,
				CanClose:      p.CanClose,
				CanViewStatus: p.CanViewStatus,
			})
		}
	}
	return granted
}
