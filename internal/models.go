package internal

import (
	"encoding/json"
	"time"
)

// User represents a platform account as returned by the backend
type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Role    int    `json:"role"` // 1=admin
}

// UnmarshalJSON accepts both "_id" and "id" for the user identifier.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		AltID string `json:"id"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// IsAdmin reports whether the account carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == 1
}

// AuthResponse is the payload of login and register calls
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// Currency is a trainer's coin balance
type Currency struct {
	CoinName  string  `json:"coin_name"`
	CoinValue float64 `json:"coin_value"`
}

// CatalogKind names a purchasable cosmetic family
type CatalogKind string

const (
	KindCard       CatalogKind = "card"
	KindBackground CatalogKind = "background"
	KindTitle      CatalogKind = "title"
)

// CatalogItem is a purchasable cosmetic (card, background or title)
type CatalogItem struct {
	Name  string  `json:"name"`
	Image string  `json:"image,omitempty"`
	Price float64 `json:"price"`
	// Index is the position in the catalog listing; titles are bought by index.
	Index int `json:"-"`
}

// MarketListing is an item offered on the marketplace
type MarketListing struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Type  string  `json:"type,omitempty"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
	Owner string  `json:"owner,omitempty"`
}

// NewListing describes a marketplace listing to be created
type NewListing struct {
	Name      string
	Type      string
	Price     float64
	ImageName string
	Image     []byte
}

// Pokemon is a spawned creature owned by the trainer
type Pokemon struct {
	ID     string         `json:"_id"`
	Name   string         `json:"name"`
	Level  int            `json:"level,omitempty"`
	Types  []string       `json:"types,omitempty"`
	Stats  map[string]int `json:"stats,omitempty"`
	Image  string         `json:"image,omitempty"`
	Shiny  bool           `json:"shiny,omitempty"`
	Caught string         `json:"createdAt,omitempty"`
}

// UserUpdate carries the fields an admin may change on an account
type UserUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  *int   `json:"role,omitempty"`
}

// Registration is the payload of the register call
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Answer   string `json:"answer"` // security answer used by forgot-password
}

// PasswordReset is the payload of the forgot-password call
type PasswordReset struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

// ConnectedUser is one entry of the presence set
type ConnectedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChatMessage is a chat line as exchanged on the realtime channel
type ChatMessage struct {
	Text       string `json:"text" yaml:"text"`
	Timestamp  string `json:"timestamp" yaml:"timestamp"` // client formatted, e.g. "3:04 PM"
	SenderName string `json:"senderName" yaml:"sender_name"`
	SenderID   string `json:"senderId" yaml:"sender_id"`
}

// Transcript is the exported record of one chat session
type Transcript struct {
	ID          string        `json:"id" yaml:"id"`
	UserID      string        `json:"user_id" yaml:"user_id"`
	DisplayName string        `json:"display_name" yaml:"display_name"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	EndedAt     time.Time     `json:"ended_at" yaml:"ended_at"`
	Messages    []ChatMessage `json:"messages" yaml:"messages"`
}
