/*
Package storage holds the live object map of the HBNB console.

An Engine keeps every object in memory, keyed by "Class.id", and flushes the complete map
to a ports.Backend whenever Save is called. Reload replaces the in-memory map with the
backend contents. The Engine is safe for concurrent use so that the HTTP and MCP adapters
can share it with the console.
*/
package storage
