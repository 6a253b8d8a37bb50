package dto

import "github.com/jsamuelsen/clinic-site/internal/domain"

// Live message types.
const (
	LiveTypeSnapshot = "snapshot"
	LiveTypeTheme    = "theme"
	LiveTypeAdmin    = "admin"
	LiveTypeStatus   = "status"
	LiveTypeKey      = "key"
)

// LiveMessage is a server-to-browser message on the live socket.
//
//   - snapshot: Target is the element id to replace with HTML
//   - theme: Properties are set on the document root
//   - admin: Visible toggles the editor, Session is set while visible
//   - status: Status is the editor banner; Show false clears it
type LiveMessage struct {
	Type       string            `json:"type"`
	Resource   string            `json:"resource,omitempty"`
	Target     string            `json:"target,omitempty"`
	HTML       string            `json:"html,omitempty"`
	Properties []domain.Property `json:"properties,omitempty"`
	Visible    *bool             `json:"visible,omitempty"`
	Session    string            `json:"session,omitempty"`
	Status     *StatusResponse   `json:"status,omitempty"`
}

// KeyMessage is a keydown sent by the browser.
type KeyMessage struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
}
