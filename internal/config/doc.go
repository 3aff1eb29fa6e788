// Package config provides configuration structures and utilities for philowalk.
// It defines the sampling parameters, fetch and politeness settings, and report
// and history preferences, plus loading of the optional .philowalk YAML file.
package config
