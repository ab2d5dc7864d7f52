// Package config handles arena configuration loading and caching for the
// Park Bay Simulator.
//
// Configurations are JSON files in a configurable directory, one arena
// per file. The filename without extension is the config ID used when
// creating sessions. The manager caches parsed configurations, validates
// them with the engine's rules on load, and falls back to the built-in
// default arena when the directory holds no usable files.
package config
