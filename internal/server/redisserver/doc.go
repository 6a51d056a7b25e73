// Package redisserver serves the key-value store over the RESP wire
// protocol.
//
// Each accepted connection runs in its own goroutine. Bytes from every
// socket read are fed to a resp.Parser; the commands decoded from that
// batch are executed in order and their replies are flushed together.
//
// Supported commands: PING, ECHO, GET, SET, COMMAND, INFO, QUIT.
package redisserver
