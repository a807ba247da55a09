// Package token generates and verifies personal access tokens (PATs) for the
// mock extension API server.
//
// Tokens are random, base64-URL encoded and carry the "pat_" prefix. Servers
// keep only an HMAC-SHA256 hash of each token and compare hashes in constant
// time:
//
//	pat, err := token.Generate()
//	if err != nil {
//		return err
//	}
//
//	keyring := token.NewKeyring(secret)
//	keyring.Add(pat)
//
//	if keyring.Verify(r.Header.Get("Authorization")[len("Bearer "):]) {
//		// authenticated
//	}
package token
