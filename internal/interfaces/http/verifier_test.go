package http

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/leave-bot/internal/application/service"
	"github.com/garyjia/leave-bot/internal/domain/entity"
)

func TestVerifierToken(t *testing.T) {
	v := NewVerifier("secret-token", "")

	assert.True(t, v.VerifyToken("secret-token"))
	assert.False(t, v.VerifyToken("wrong"))
	assert.False(t, v.VerifyToken(""))

	// No configured token disables the check.
	open := NewVerifier("", "")
	assert.True(t, open.VerifyToken("anything"))
}

func TestVerifierSignature(t *testing.T) {
	v := NewVerifier("", "encrypt-key")
	body := []byte(`{"type":"event"}`)

	content := "1700000000" + "nonce-1" + "encrypt-key" + string(body)
	hash := sha256.Sum256([]byte(content))
	signature := fmt.Sprintf("%x", hash)

	assert.True(t, v.VerifySignature("1700000000", "nonce-1", signature, body))
	assert.False(t, v.VerifySignature("1700000000", "nonce-1", "bad", body))
	assert.False(t, v.VerifySignature("1700000001", "nonce-1", signature, body))
}

func TestVerifierMiddlewareRejectsBadSignature(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.EncryptKey = "encrypt-key"
	srv := NewServer(cfg, &mockLeaveService{}, nil, nopLogger{})

	body := `{"command":"balance","user_id":"ou_alice"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Lark-Signature", "nonsense")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifierMiddlewarePassesValidSignature(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.EncryptKey = "encrypt-key"
	svc := &mockLeaveService{
		getBalanceFn: func(ctx context.Context, employeeID, employeeName string) (*entity.LeaveBalance, error) {
			return &entity.LeaveBalance{EmployeeID: employeeID, Annual: 20, Sick: 10, Personal: 5}, nil
		},
	}
	srv := NewServer(cfg, svc, nil, nopLogger{})

	body := `{"command":"balance","user_id":"ou_alice"}`
	content := "1700000000" + "nonce-1" + "encrypt-key" + body
	hash := sha256.Sum256([]byte(content))

	req := httptest.NewRequest(http.MethodPost, "/webhook/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Lark-Request-Timestamp", "1700000000")
	req.Header.Set("X-Lark-Request-Nonce", "nonce-1")
	req.Header.Set("X-Lark-Signature", fmt.Sprintf("%x", hash))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Annual 20")
}

func TestCardCallbackRejectsBadToken(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.VerifyToken = "secret-token"
	srv := NewServer(cfg, &mockLeaveService{}, nil, nopLogger{})

	w := postJSON(t, srv, "/webhook/card", map[string]interface{}{
		"token":   "wrong",
		"open_id": "ou_bob",
		"action": map[string]interface{}{
			"value": map[string]interface{}{
				"request_id": "req-1",
				"decision":   entity.DecisionApprove,
			},
		},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

var _ service.LeaveService = (*mockLeaveService)(nil)
