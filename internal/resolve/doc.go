// Package resolve turns a single input descriptor into an ordered list of
// work items.
//
// A descriptor is a file path, a directory path, or a URL. Files must carry a
// supported extension; directories contribute their directly-contained
// supported files in lexicographic name order (recursion is a configuration
// choice, off by default); URLs pass through without a local existence check
// since validation belongs to the backend call. Resolution is deterministic:
// resolving an unchanged directory twice yields identical item order.
package resolve
