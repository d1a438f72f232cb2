package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxUsernameLength int
	MinPasswordLength int
	MaxPasswordLength int
	MaxBodyLength     int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
// The password ceiling is the bcrypt input limit.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxUsernameLength: 50,
		MinPasswordLength: 8,
		MaxPasswordLength: 72,
		MaxBodyLength:     10000,
	}
}

// ValidateRegisterRequest checks a registration request. It returns an
// *APIError describing the first failure, or nil if the request is valid.
func ValidateRegisterRequest(req *RegisterRequest, cfg ValidationConfig) *APIError {
	if err := validateUsername(req.Username, cfg); err != nil {
		return err
	}
	if len(req.Password) < cfg.MinPasswordLength {
		return NewBadRequestError(
			fmt.Sprintf("password must be at least %d characters", cfg.MinPasswordLength))
	}
	if len(req.Password) > cfg.MaxPasswordLength {
		return NewBadRequestError(
			fmt.Sprintf("password must be at most %d characters", cfg.MaxPasswordLength))
	}
	if req.FirstName == "" {
		return NewBadRequestError("first_name is required")
	}
	if req.LastName == "" {
		return NewBadRequestError("last_name is required")
	}
	return nil
}

// ValidateLoginRequest checks a login request for structural validity only.
// Whether the credentials match is the verifier's business.
func ValidateLoginRequest(req *LoginRequest) *APIError {
	if req.Username == "" {
		return NewBadRequestError("username is required")
	}
	if req.Password == "" {
		return NewBadRequestError("password is required")
	}
	return nil
}

// ValidateSendMessageRequest checks an outgoing message.
func ValidateSendMessageRequest(req *SendMessageRequest, cfg ValidationConfig) *APIError {
	if req.ToUsername == "" {
		return NewBadRequestError("to_username is required")
	}
	if req.Body == "" {
		return NewBadRequestError("body is required")
	}
	if cfg.MaxBodyLength > 0 && len(req.Body) > cfg.MaxBodyLength {
		return NewBadRequestError(
			fmt.Sprintf("body exceeds maximum of %d bytes", cfg.MaxBodyLength))
	}
	return nil
}

func validateUsername(username string, cfg ValidationConfig) *APIError {
	if username == "" {
		return NewBadRequestError("username is required")
	}
	if len(username) > cfg.MaxUsernameLength {
		return NewBadRequestError(
			fmt.Sprintf("username exceeds maximum of %d characters", cfg.MaxUsernameLength))
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return NewBadRequestError("username may contain only letters, digits, '_', '.' and '-'")
		}
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	}
	return false
}
