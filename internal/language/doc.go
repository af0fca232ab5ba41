// Package language maps catalog language tokens to display names for tables
// and log lines. It deliberately plays no part in candidate matching.
package language
