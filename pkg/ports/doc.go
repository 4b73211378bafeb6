/*
Package ports defines the driven ports (interfaces) for the HBNB object store.

These interfaces decouple the in-memory object map (package storage) from the medium the
objects are flushed to, so the same console can run against a JSON file, Redis, SQLite or
plain memory.

# Key Interfaces

  - Backend: loads and saves the complete set of serialised objects.
*/
package ports
