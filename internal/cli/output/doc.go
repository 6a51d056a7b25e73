// Package output renders memkv-cli results as a table, JSON or YAML.
package output
