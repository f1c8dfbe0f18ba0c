// Package main provides the entry point for the SAM-Radar CLI.
//
// SAM-Radar screens people and companies against sanctions lists and
// searches public news and web sources for adverse media.
//
// Usage:
//
//	samradar scan "Acme Holdings"
//	samradar scan --csv -o acme.csv "Acme Holdings"
//	samradar compare "Acme Holdings"
//	samradar serve --addr :8080
//
// See --help for all available options.
package main

// main is the entry point for SAM-Radar.
func main() {
	Execute()
}
