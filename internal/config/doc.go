// Package config loads, normalizes, and validates imagecollect configuration.
//
// Configuration lives in TOML (by default ~/.config/imagecollect/config.toml)
// and is merged onto the repository defaults before paths are expanded and
// hash parameters are checked. Invalid hash widths or bucket tables are
// rejected here so no command ever touches the filesystem with a bad config.
//
// CreateSample writes the embedded sample file used by `imagecollect config init`.
package config
