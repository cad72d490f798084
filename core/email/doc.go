// Package email defines the sender contract shared by mail providers and a
// DevSender that writes messages to disk instead of delivering them.
package email
