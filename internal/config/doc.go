// Package config provides configuration structures and utilities for
// fareplot: tracked routes, scraping behavior, output locations and the
// site settings loaded from the .fareplot file.
package config
