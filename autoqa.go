// Package autoqa generates browser test scripts for web pages.
// It fetches a page, summarizes its structure, asks a language model
// backend for automation code, sanitizes the untrusted response into a
// bounded script, persists it, and runs it.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, openai/, sqlite/).
package autoqa
