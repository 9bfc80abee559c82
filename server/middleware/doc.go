// Package middleware provides the gin middleware stack of widgetd.
package middleware
