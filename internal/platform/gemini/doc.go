// Package gemini provides implementations of the generation.Generator and
// generation.Embedder interfaces backed by Google's Gemini API.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's core logic to Google's external Gemini AI
// service. It handles JSON-mode generation requests, embedding requests,
// retry with exponential backoff for transient errors, and translation of
// API failures into application-specific error categories.
package gemini
