// Package storage defines the persistent relational store shared by every
// client connection.
//
// The store is a single database file. Connections are short-lived: each
// operation opens one, uses it, and closes it, so no lock or transaction ever
// outlives a single client command. Concurrent writers rely on the database's
// own locking and commit semantics.
package storage
