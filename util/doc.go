// Package util holds small generic helpers shared across widgetkit.
package util
