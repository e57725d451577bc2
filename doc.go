// Package deepget holds the configuration shared by the deepget command.
//
// The path engine lives in subpackages: explang builds and validates access
// paths, accessor evaluates them against live values and binding computes
// captured variables from CEL expressions.
package deepget
