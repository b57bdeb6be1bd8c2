package model

type ToastKind string

const (
	ToastKindMessage      ToastKind = "message"
	ToastKindNotification ToastKind = "notification"
)

// Toast is a transient notification entry. The list it lives in is bounded
// and each entry self-expires, so nothing here is ever persisted.
type Toast struct {
	ID          string    `json:"id"`
	Kind        ToastKind `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ActionLabel string    `json:"actionLabel,omitempty"`
	ActionHref  string    `json:"actionHref,omitempty"`
}

type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertDanger  AlertType = "danger"
)

// Alert is an application-level message raised by any component and consumed
// by the alert toaster. Same bounded, self-expiring lifecycle as Toast.
type Alert struct {
	ID      string    `json:"id"`
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
}

type PresenceResponse struct {
	Count     int  `json:"count"`
	Connected bool `json:"connected"`
}
