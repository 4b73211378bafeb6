/*
Package observability exposes Prometheus metrics for the console and the object store.

Metrics registers its collectors on a private registry so that several consoles (for
example one per HTTP request) can report into the same set without touching the global
default registry. Serve it with Handler.
*/
package observability
