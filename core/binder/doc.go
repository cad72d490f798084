// Package binder decodes request bodies into structs.
//
// JSON rejects non-JSON content types, oversized bodies and trailing data,
// and strips control characters from every decoded string.
package binder
