// Package connectors provides implementations of the TreeSource interface.
// Each connector knows how to enumerate and read one kind of file tree;
// the local filesystem connector is the only one today.
package connectors
