// Package stream runs the message pipeline: a receiver goroutine reads
// raw frames from the connection, answers keepalives, and decodes events
// into a growable queue; a processor goroutine drains the queue and
// dispatches events to the handler in arrival order.
//
// The receiver owns reconnection: a failed connect is retried after a
// fixed wait, a failed read tears the connection down and re-enters the
// connect path. The queue decouples the two goroutines so a slow handler
// never stalls the socket.
package stream
