package actiflow

// Version is the library version, overridable at build time via
// -ldflags "-X github.com/actiflow/actiflow.Version=...".
var Version = "0.1.0"
