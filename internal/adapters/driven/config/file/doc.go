// Package file stores lexisync's configuration in ~/.lexisync/config.toml.
package file
