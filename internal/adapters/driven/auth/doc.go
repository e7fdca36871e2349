// Package auth provides credentials read from the environment.
//
// Tokens are never written to the config file. The config names the
// environment variable that holds each secret; .env files in the working
// directory and the config directory are loaded at startup so a daemon
// started from a service manager can find them.
package auth
