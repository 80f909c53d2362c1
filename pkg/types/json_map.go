package types

// JSONMap is an opaque key-value payload passed through unvalidated. Device
// option sets use it; the core never interprets the contents.
type JSONMap map[string]any
