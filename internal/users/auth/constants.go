// Copyright (c) 2026 Coverdesk. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a session token remains valid.
	// Fixed at one hour: long enough to cover a normal portal session,
	// short enough to bound the window of a leaked token.
	AccessTokenTTL = 1 * time.Hour

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32
)
