// Package jwt issues and verifies the session token handed out after login or
// a completed registration.
//
// Tokens are HS512-signed claims carrying the user id, email and a unique
// token id (jti) so a single token can be revoked. Clients treat the token as
// an opaque bearer credential.
package jwt
