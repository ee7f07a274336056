// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and validation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(auth.MapperScope, salt)
	err := auth.ValidateAdminKey(auth.MapperScope, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same scope and salt always produce the same key, so nothing is stored.
The mapper endpoint that links feeds to agencies requires this key in the
X-Admin-Key header.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()
	err = auth.ValidateSessionToken(r.Header.Get("X-Session-Token"))

Each dashboard session gets one token when it is created.

# IP Hashing

Client IPs are hashed before they are used as rate limiter keys:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
