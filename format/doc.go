// Package format defines the compression identifiers shared by input
// decoding and snapshot encoding.
package format
