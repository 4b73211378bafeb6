/*
Package models contains the domain objects managed by the HBNB console.

Every object is an Instance: a class name, a UUID, creation and update timestamps and an
open set of named attributes. Classes are not Go types; they are names registered in a
Registry together with a Factory, so new classes can be added without touching the
console or the storage layer.

# Key Entities

  - Instance: attribute container addressed by its store key ("Class.id").
  - Registry: the set of known class names and their factories.
*/
package models
