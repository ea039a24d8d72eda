package team

import "time"

// Team groups users for manager scoping. Teams are managed outside this
// service; only lookups are exposed.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type TeamResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func ToResponse(t Team) TeamResponse {
	return TeamResponse{ID: t.ID, Name: t.Name}
}
