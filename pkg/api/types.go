package api

import "time"

// User is a registered account. The Password field is never serialized;
// only the salted hash is held by the store and it never leaves it.
type User struct {
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	JoinAt      time.Time  `json:"join_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// UserSummary is the reduced profile returned by the user listing.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserRef identifies a message counterpart inside a message detail.
type UserRef struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Message is a direct message. Each message has exactly one sender and one
// recipient; ReadAt is nil until the recipient marks it read.
type Message struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// MessageDetail is the expanded form returned by GET /messages/{id},
// with both participant profiles resolved.
type MessageDetail struct {
	ID       int64      `json:"id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
	FromUser UserRef    `json:"from_user"`
	ToUser   UserRef    `json:"to_user"`
}

// MessageReceipt is returned by POST /messages/{id}/read.
type MessageReceipt struct {
	ID     int64      `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// SendMessageRequest is the body of POST /messages. The sender is always
// the authenticated identity, never a request field.
type SendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// Envelope wrappers matching the original wire format.

// UserResponse wraps a single user: {"user": {...}}.
type UserResponse struct {
	User *User `json:"user"`
}

// UsersResponse wraps the user listing: {"users": [...]}.
type UsersResponse struct {
	Users []UserSummary `json:"users"`
}

// MessageResponse wraps a single message payload: {"message": {...}}.
type MessageResponse struct {
	Message any `json:"message"`
}

// MessagesResponse wraps a message listing: {"messages": [...]}.
type MessagesResponse struct {
	Messages []Message `json:"messages"`
}
