// Package ui holds terminal presentation helpers: colored status lines,
// result tables rendered with go-pretty, and completion notifications.
package ui
