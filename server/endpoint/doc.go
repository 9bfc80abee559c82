// Package endpoint holds the operational endpoints of widgetd.
package endpoint
