// Package config defines the crawler configuration and its validation.
//
// Configuration flows from three sources, in increasing precedence:
// built-in defaults, an optional YAML configuration file, and CLI flags.
// The merged Config is validated once, before any fetch is attempted, and
// then passed through the application via dependency injection rather
// than global state.
//
// The configuration file can also carry seed URL templates: a template
// containing a {page} placeholder is expanded into one seed per integer
// in its [from, to] range. This mirrors the common pattern of crawling a
// paginated search-result listing as the seed set.
package config
