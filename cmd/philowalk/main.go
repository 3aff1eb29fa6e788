// Package main provides the entry point for the philowalk CLI.
//
// philowalk measures how many random Wikipedia articles lead to the
// Philosophy article when the first link of each page is followed.
//
// Usage:
//
//	philowalk walk -n 100
//	philowalk history
//
// See --help for all available options.
package main

// main is the entry point for philowalk.
func main() {
	Execute()
}
