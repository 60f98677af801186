package models

// AccessEventType classifies an access log event.
type AccessEventType string

const (
	AccessViewed     AccessEventType = "viewed"
	AccessDownloaded AccessEventType = "downloaded"
)

// AccessEvent records that a resource (a drawing file, document, photo...)
// was opened or downloaded. Delivery is best effort; see the accesslog
// package.
type AccessEvent struct {
	ResourceID int             `json:"resourceId"`
	Type       AccessEventType `json:"eventType"`
}
