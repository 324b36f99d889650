// Package sql provides the SQLite and PostgreSQL targets of umlgen.
//
// A model becomes a single schema.sql fragment of CREATE TABLE and CREATE
// INDEX statements, planned by Atlas for the target dialect. Every class
// gets its own table (joined inheritance): the table of a specific class
// shares the primary key of its general class and references it with
// ON DELETE CASCADE. General classes of disjoint hierarchies carry a kind
// column restricted by a CHECK constraint to the names of their specific
// classes, and required when the hierarchy is also complete.
//
// Associations are stored as foreign key columns next to the class at the
// single end, or in a join table for many-to-many associations. A foreign
// key referencing a composite end cascades deletes, so parts do not outlive
// their whole.
package sql
