// Command floodwatch monitors coastal flood risk from weather forecasts and
// tide predictions.
//
// Usage:
//
//	floodwatch serve          # HTTP API plus periodic refresh
//	floodwatch check          # one update rendered to the terminal
//	floodwatch check --json   # one update as JSON
package main

import _ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

func main() {
	Execute()
}
