/*
Package domain contains the core domain models for the Espalier engine.

It defines the vocabulary shared by the collection, the reconciler, and every
adapter: positions, edit ops, identity constraints, and the serializable
snapshot document. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles (the one exception is mapstructure, used to decode free-form row
fields into caller structs).

# Key Entities

  - Position: a transient (section, row) address into a collection.
  - Op / Script: one applied structural edit and the ordered sequence of
    edits one reconciliation produced, carrying exact index sets.
  - Keyed / RowContainer / KeyedSection: the capability constraints section
    and row types implement to participate in identity-aware operations.
  - Snapshot: a concrete serializable collection document used by stores,
    servers, and the CLI.
*/
package domain
