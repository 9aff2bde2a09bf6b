// Beacon is the AI assistant gate for the Hearth family organizer.
//
// It sits between the web backend and the upstream completion API and
// enforces per-member rate limits, household budgets, and response caching
// so assistant features stay affordable and responsive.
//
// Usage:
//
//	# Start the service with the default configuration file
//	beacon run
//
//	# Start with a custom configuration file
//	beacon run --config /etc/beacon/beacon.yaml
//
//	# Validate a configuration file without starting
//	beacon validate --config /etc/beacon/beacon.yaml
//
//	# Show version information
//	beacon version
package main

func main() {
	Execute()
}
