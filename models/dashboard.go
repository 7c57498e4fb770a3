package models

type AdminStats struct {
	Users                int `json:"users"`
	Sports               int `json:"sports"`
	TotalRegistrations   int `json:"total_registrations"`
	Matches              int `json:"matches"`
	PendingNotifications int `json:"pending_notifications"`
}
