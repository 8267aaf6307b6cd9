// Package inbox loads the source snapshot: every candidate invoice file
// currently sitting in the inbox directory, hashed by content.
//
// The reconciliation engine never hashes anything itself; this loader is where
// content identity is established. Optional TOML sidecar files
// (<name>.meta.toml) carry gateway metadata such as the sender and the
// original delivery time, which override filesystem values when present.
package inbox
