// Package artifact writes the final batch output file.
//
// The artifact is a single JSON document containing one entry per input item,
// each explicitly marked succeeded or failed; emitting it is the only
// persistence this system performs.
package artifact
