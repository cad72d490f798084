// Package templates renders templ components into email HTML strings.
package templates
