package siteclient

import "time"

// Designations accepted by the server for a client testimonial
var Designations = []string{"CEO", "Web Developer", "Designer", "Manager", "Other"}

type Project struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Client struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Contact struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
}

type Subscription struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// LoginResult is returned by the admin login endpoint
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Health is the body of GET /api/health
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
	Message   string `json:"message"`
}
