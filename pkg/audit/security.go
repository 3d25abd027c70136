// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecurityEventType categorizes security-relevant events for filtering and
// alerting.
type SecurityEventType string

const (
	// EventLoginFailure is logged when credential verification fails.
	EventLoginFailure SecurityEventType = "login_failure"
	// EventAccessDenied is logged when an authenticated user attempts an
	// operation their role or ownership does not allow.
	EventAccessDenied SecurityEventType = "access_denied"
	// EventTokenRevoked is logged when a token is revoked on logout.
	EventTokenRevoked SecurityEventType = "token_revoked"
)

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger
// namespace for easy filtering in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogLoginFailure records a failed login attempt. The email is logged so
// repeated attempts against one account stand out; the password never is.
func (a *SecurityAuditor) LogLoginFailure(email, clientIP string) {
	a.logger.Warn("security event",
		zap.String("event_type", string(EventLoginFailure)),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("email", email),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"))
}

// LogAccessDenied records an authenticated user being refused an operation.
func (a *SecurityAuditor) LogAccessDenied(userID uuid.UUID, operation, clientIP string) {
	a.logger.Warn("security event",
		zap.String("event_type", string(EventAccessDenied)),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("user_id", userID.String()),
		zap.String("operation", operation),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"))
}

// LogTokenRevoked records a logout revocation.
func (a *SecurityAuditor) LogTokenRevoked(userID uuid.UUID, clientIP string) {
	a.logger.Info("security event",
		zap.String("event_type", string(EventTokenRevoked)),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("user_id", userID.String()),
		zap.String("client_ip", clientIP),
		zap.String("severity", "info"))
}
