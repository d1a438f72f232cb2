package auth

import (
	"github.com/courier-chat/courier/pkg/api"
)

// Guard predicates. Each is a pure function of the resolved identity and a
// resource snapshot: no hidden state, no transport coupling. Handlers compose
// them in order, authentication first, then the resource-specific check. On
// violation they return a typed Unauthorized error that the transport
// boundary converts to a 401 envelope exactly once.

// errUnauthorized builds the uniform guard failure. The message is generic
// on purpose: the reason for a rejection is not client-visible.
func errUnauthorized() error {
	return api.NewUnauthorizedError("Unauthorized")
}

// RequireAuthenticated fails unless the identity is resolved (non-anonymous).
func RequireAuthenticated(id *Identity) error {
	if id == nil || id.Username == "" {
		return errUnauthorized()
	}
	return nil
}

// RequireSameUser fails unless the identity is exactly the given username.
// An anonymous identity never matches any username.
func RequireSameUser(id *Identity, username string) error {
	if err := RequireAuthenticated(id); err != nil {
		return err
	}
	if id.Username != username {
		return errUnauthorized()
	}
	return nil
}

// RequireMessageParticipant fails unless the identity is the message's
// sender or its recipient. Grants read access to a message.
func RequireMessageParticipant(id *Identity, msg *api.Message) error {
	if err := RequireAuthenticated(id); err != nil {
		return err
	}
	if id.Username != msg.FromUsername && id.Username != msg.ToUsername {
		return errUnauthorized()
	}
	return nil
}

// RequireMessageRecipient fails unless the identity is the message's
// recipient. Only the recipient may acknowledge receipt; the sender cannot
// mark their own sent message read.
func RequireMessageRecipient(id *Identity, msg *api.Message) error {
	if err := RequireAuthenticated(id); err != nil {
		return err
	}
	if id.Username != msg.ToUsername {
		return errUnauthorized()
	}
	return nil
}
