// Package archive manages the binary file store of accepted invoices.
//
// It loads the archive snapshot the reconciliation engine classifies against
// (hash, filename, path, modification time per file) and performs verified
// copies of newly accepted files into a year-partitioned tree. A copy is
// written to the staging directory, verified by re-hashing both ends, and only
// then moved into the tree, so a truncated file can never masquerade as
// archived content.
package archive
