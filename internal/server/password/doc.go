// Package password hashes credentials and checks password strength.
//
// Hashing is HMAC-SHA512 with a fresh 128-byte random key per credential
// acting as the salt and the UTF-8 password as the message. The salt is
// regenerated every time a password is set.
package password
