// Package jwt manages bearer-token issuance and verification with a
// process-wide symmetric secret and strict validation semantics suitable
// for low-latency authentication paths.
package jwt
