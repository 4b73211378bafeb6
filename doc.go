/*
Package hbnb is an interactive command console for the HBNB object store.

The console reads one command per line, creates, shows, updates and destroys
simple domain objects (BaseModel, User, State, City, Amenity, Place, Review) and
persists every change to a pluggable backend: a JSON file by default, or memory,
SQLite or Redis.

# Commands

Two syntaxes are accepted and resolve to the same handler:

	create User
	show User 1234-1234
	update User 1234-1234 email "ada@example.com"
	all User
	count User

	User.create()
	User.show("1234-1234")
	User.update("1234-1234", "email", "ada@example.com")
	User.update("1234-1234", {"age": 36, "admin": True})
	User.all()
	User.count()

Plain update always stores the value as a string. The dictionary form keeps the
literal types (strings, integers, floats, booleans, None, lists and nested
dictionaries).

# Surfaces

The hbnb binary runs the console by default and also offers an HTTP API
(hbnb serve), an MCP server for AI agents (hbnb mcp) and commands to inspect the
persisted objects (hbnb objects).
*/
package hbnb
