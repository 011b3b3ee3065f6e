package engine

import (
	"strings"

	"github.com/miradorstack/mirador-resolver/internal/models"
)

var oauthSignals = []string{"salesforce", "oauth", "authenticate"}

// IsOAuthFailure reports whether the captured error looks like an expired or
// rejected integration credential. Diagnosis and planning both branch on it.
func IsOAuthFailure(ctx models.UserContext) bool {
	msg := strings.ToLower(ctx.ErrorMessage)
	if msg == "" {
		return false
	}
	for _, s := range oauthSignals {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
