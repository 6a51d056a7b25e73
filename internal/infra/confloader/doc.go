// Package confloader loads layered configuration with koanf.
//
// Sources are merged in order, later ones winning:
//
//  1. Values already present in the target struct (defaults)
//  2. YAML configuration file
//  3. Environment variables (MEMKV_ prefix by default)
//  4. Maps, used for command-line flag overrides
//
// Watcher reports changes to the configuration file through fsnotify so
// that settings such as the log level can be applied at runtime.
package confloader
