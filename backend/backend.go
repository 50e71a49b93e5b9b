// Package backend defines the translation backend interface and implementations.
package backend

import "github.com/tavernkit/cardlingo"

// Backend is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Backend = cardlingo.Backend

// TranslateRequest is an alias to the main package type.
type TranslateRequest = cardlingo.TranslateRequest
