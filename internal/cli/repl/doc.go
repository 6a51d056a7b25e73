// Package repl implements the interactive mode of memkv-cli.
//
// Each input line is split into arguments (double quotes group words and
// accept backslash escapes) and sent to the server as one command. The
// reply is printed the way redis-cli prints it.
//
//   - repl.go: loop, argument splitting and dispatch
//   - completer.go: command-name completion
//   - history.go: history persisted under the user's home directory
package repl
