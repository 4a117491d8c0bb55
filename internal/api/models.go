package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a server record identifier. The backend sends numbers for some
// resources and strings for others; both decode into an ID.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("invalid id %s: %w", b, err)
		}
		*id = ID(n.String())
	}
	return nil
}

// MarshalJSON writes canonical integer ids as JSON numbers, anything else
// (including "007" or "+5") as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

type Door struct {
	ID           ID     `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	TerminalIP   string `json:"terminal_ip" yaml:"terminal_ip"`
	TerminalPort int    `json:"terminal_port" yaml:"terminal_port"`
	DefaultDelay int    `json:"default_delay" yaml:"default_delay"`
	AgentID      ID     `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`
}

// DoorInput is the body for creating or updating a door.
type DoorInput struct {
	Name         string `json:"name"`
	TerminalIP   string `json:"terminal_ip"`
	TerminalPort int    `json:"terminal_port"`
	DefaultDelay int    `json:"default_delay"`
	AgentID      ID     `json:"agent_id,omitempty"`
}

type DoorStatus struct {
	DoorID    ID     `json:"door_id" yaml:"door_id"`
	Status    string `json:"status" yaml:"status"`
	IsOpen    bool   `json:"is_open" yaml:"is_open"`
	Online    bool   `json:"online" yaml:"online"`
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// DoorAction is the acknowledgement of an open or close request. When the
// server dispatches the command asynchronously CommandID identifies it.
type DoorAction struct {
	Success   bool   `json:"success" yaml:"success"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	CommandID ID     `json:"command_id,omitempty" yaml:"command_id,omitempty"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Quota is a used/limit snapshot for doors or users.
type Quota struct {
	Used      int `json:"used" yaml:"used"`
	Quota     int `json:"quota" yaml:"quota"`
	Remaining int `json:"remaining" yaml:"remaining"`
}

type LicenseStatus struct {
	Valid         bool   `json:"valid" yaml:"valid"`
	Status        string `json:"status,omitempty" yaml:"status,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	DaysRemaining int    `json:"days_remaining,omitempty" yaml:"days_remaining,omitempty"`
	Message       string `json:"message,omitempty" yaml:"message,omitempty"`
}

type User struct {
	ID        ID     `json:"id" yaml:"id"`
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	IsAdmin   bool   `json:"is_admin" yaml:"is_admin"`
}

// UserInput is the body for creating or updating a tenant member.
// Password is only sent when set.
type UserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// Permission grants one user rights on one door.
type Permission struct {
	DoorID        ID     `json:"door_id" yaml:"door_id"`
	DoorName      string `json:"door_name,omitempty" yaml:"door_name,omitempty"`
	CanOpen       bool   `json:"can_open" yaml:"can_open"`
	CanClose      bool   `json:"can_close" yaml:"can_close"`
	CanViewStatus bool   `json:"can_view_status" yaml:"can_view_status"`
}

// Any reports whether at least one right is granted.
func (p Permission) Any() bool {
	return p.CanOpen || p.CanClose || p.CanViewStatus
}

type Event struct {
	ID            ID              `json:"id" yaml:"id"`
	DoorID        ID              `json:"door_id" yaml:"door_id"`
	DoorName      string          `json:"door_name" yaml:"door_name"`
	EventType     string          `json:"event_type" yaml:"event_type"`
	EventData     json.RawMessage `json:"event_data,omitempty" yaml:"-"`
	Source        string          `json:"source,omitempty" yaml:"source,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	EventTime     string          `json:"event_time,omitempty" yaml:"event_time,omitempty"`
	IngressUserID ID              `json:"ingress_user_id,omitempty" yaml:"ingress_user_id,omitempty"`
}

// Time returns the device event time, falling back to when the server recorded it.
func (e Event) Time() string {
	if e.EventTime != "" {
		return e.EventTime
	}
	return e.CreatedAt
}

// EventFilter narrows ListEvents. A zero Limit means DefaultEventLimit.
type EventFilter struct {
	DoorID ID
	Limit  int
}

type NotificationPreference struct {
	DoorID         ID     `json:"door_id" yaml:"door_id"`
	DoorName       string `json:"door_name,omitempty" yaml:"door_name,omitempty"`
	NotifyOnOpen   bool   `json:"notify_on_open" yaml:"notify_on_open"`
	NotifyOnClose  bool   `json:"notify_on_close" yaml:"notify_on_close"`
	NotifyOnForced bool   `json:"notify_on_forced" yaml:"notify_on_forced"`
	// Comma separated terminal event codes. Empty means the server default.
	EventCodes string `json:"event_codes,omitempty" yaml:"event_codes,omitempty"`
}

// Agent is a gateway process that relays commands to door terminals.
type Agent struct {
	ID       ID     `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`
	LastSeen string `json:"last_seen,omitempty" yaml:"last_seen,omitempty"`
}

type CommandResult struct {
	ID          ID              `json:"id" yaml:"id"`
	Status      string          `json:"status" yaml:"status"`
	Success     *bool           `json:"success,omitempty" yaml:"success,omitempty"`
	Message     string          `json:"message,omitempty" yaml:"message,omitempty"`
	Result      json.RawMessage `json:"result,omitempty" yaml:"-"`
	CreatedAt   string          `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	CompletedAt string          `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Pending reports whether the agent has not reported an outcome yet.
func (r CommandResult) Pending() bool {
	switch r.Status {
	case "", "pending", "queued", "sent", "running":
		return true
	}
	return false
}

type Profile struct {
	User   `yaml:",inline"`
	Tenant string `json:"tenant,omitempty" yaml:"tenant,omitempty"`
}
