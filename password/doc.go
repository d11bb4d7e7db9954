// Package password provides the delegated credential-hashing primitive
// (argon2id in PHC string format) used by the login and register flows.
package password
