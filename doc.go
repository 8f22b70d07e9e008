// Package prockit is a process-actor toolkit: it provides isolated,
// independently scheduled execution units that communicate exclusively by
// exchanging typed, serialized messages, with a synchronous
// request/response server layered on top of one-way asynchronous delivery.
//
// The package itself contains the server machinery; the capabilities it is
// built on (spawning, transport, identity) are defined by the kernel
// package and implemented by kernel/memory.
package prockit
