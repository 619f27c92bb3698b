package main

//go:generate go run ../gen-version -o version_git.go

// gitVersion is overwritten by an init in version_git.go when generated.
var gitVersion = "unknown"
