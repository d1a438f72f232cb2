package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// TestMessagingFlow walks the whole lifecycle: three users register, two of
// them exchange a message, access is checked from every seat, and the
// recipient acknowledges receipt.
func TestMessagingFlow(t *testing.T) {
	alice := register(t, "flow_alice")
	bob := register(t, "flow_bob")
	carol := register(t, "flow_carol")

	// Alice messages Bob.
	resp := call(t, "POST", "/messages", alice, map[string]string{
		"to_username": "flow_bob",
		"body":        "lunch at noon?",
	})
	if resp.Status != http.StatusCreated {
		t.Fatalf("send: status = %d, body = %s", resp.Status, resp.Raw)
	}
	msg := resp.Body["message"].(map[string]any)
	id := int64(msg["id"].(float64))
	if msg["read_at"] != nil {
		t.Errorf("fresh message read_at = %v, want null", msg["read_at"])
	}

	msgPath := fmt.Sprintf("/messages/%d", id)

	// Both participants can read the detail.
	for name, token := range map[string]string{"sender": alice, "recipient": bob} {
		resp = call(t, "GET", msgPath, token, nil)
		if resp.Status != http.StatusOK {
			t.Fatalf("%s read: status = %d, body = %s", name, resp.Status, resp.Raw)
		}
		detail := resp.Body["message"].(map[string]any)
		from := detail["from_user"].(map[string]any)
		to := detail["to_user"].(map[string]any)
		if from["username"] != "flow_alice" || to["username"] != "flow_bob" {
			t.Errorf("%s read: participants = %v -> %v", name, from["username"], to["username"])
		}
	}

	// Carol is not a participant.
	resp = call(t, "GET", msgPath, carol, nil)
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("third party read: status = %d, want 401", resp.Status)
	}

	// The sender cannot acknowledge receipt.
	resp = call(t, "POST", msgPath+"/read", alice, nil)
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("sender ack: status = %d, want 401", resp.Status)
	}

	// The recipient can, and the receipt carries a timestamp.
	resp = call(t, "POST", msgPath+"/read", bob, nil)
	if resp.Status != http.StatusOK {
		t.Fatalf("recipient ack: status = %d, body = %s", resp.Status, resp.Raw)
	}
	receipt := resp.Body["message"].(map[string]any)
	if receipt["read_at"] == nil {
		t.Error("receipt read_at is null")
	}

	// Mailboxes reflect the exchange.
	resp = call(t, "GET", "/users/flow_bob/to", bob, nil)
	if resp.Status != http.StatusOK {
		t.Fatalf("inbox: status = %d, body = %s", resp.Status, resp.Raw)
	}
	inbox := resp.Body["messages"].([]any)
	if len(inbox) != 1 {
		t.Errorf("inbox size = %d, want 1", len(inbox))
	}
}

func TestLoginFlow(t *testing.T) {
	register(t, "login_dana")

	// Correct credentials.
	resp := call(t, "POST", "/auth/login", "", map[string]string{
		"username": "login_dana",
		"password": "secret123",
	})
	if resp.Status != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", resp.Status, resp.Raw)
	}
	if token, _ := resp.Body["token"].(string); token == "" {
		t.Error("login returned no token")
	}

	// Wrong password and unknown user are indistinguishable on the wire.
	wrong := call(t, "POST", "/auth/login", "", map[string]string{
		"username": "login_dana", "password": "nope-nope",
	})
	unknown := call(t, "POST", "/auth/login", "", map[string]string{
		"username": "login_ghost", "password": "nope-nope",
	})
	if wrong.Status != http.StatusUnauthorized || unknown.Status != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401 / 401", wrong.Status, unknown.Status)
	}
	if string(wrong.Raw) != string(unknown.Raw) {
		t.Errorf("rejection bodies differ: %s vs %s", wrong.Raw, unknown.Raw)
	}
}

func TestAccessControlFlow(t *testing.T) {
	erin := register(t, "acl_erin")
	register(t, "acl_frank")

	// Anonymous requests to protected routes get the envelope 401.
	resp := call(t, "GET", "/users", "", nil)
	if resp.Status != http.StatusUnauthorized || errorStatus(t, resp) != 401 {
		t.Errorf("anonymous list: %d, body = %s", resp.Status, resp.Raw)
	}

	// A forged token behaves like no token.
	resp = call(t, "GET", "/users", "forged.token.value", nil)
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("forged token: status = %d, want 401", resp.Status)
	}

	// Own profile yes, someone else's no.
	resp = call(t, "GET", "/users/acl_erin", erin, nil)
	if resp.Status != http.StatusOK {
		t.Errorf("own profile: status = %d, body = %s", resp.Status, resp.Raw)
	}
	resp = call(t, "GET", "/users/acl_frank", erin, nil)
	if resp.Status != http.StatusUnauthorized {
		t.Errorf("foreign profile: status = %d, want 401", resp.Status)
	}
}
