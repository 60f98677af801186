package models

// Permissions lists the resource kinds the current user may see in a
// project. The backend decides these; the engine only honors them by
// skipping kinds the user has no access to. Forms covers form templates
// and their submissions alike.
type Permissions struct {
	Drawings  bool `json:"drawings"`
	Documents bool `json:"documents"`
	RFIs      bool `json:"rfis"`
	Forms     bool `json:"forms"`
	Photos    bool `json:"photos"`
}

// AllPermissions grants every kind, the default for single-user tooling.
func AllPermissions() Permissions {
	return Permissions{Drawings: true, Documents: true, RFIs: true, Forms: true, Photos: true}
}
