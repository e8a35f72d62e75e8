// Package generation provides interfaces for interacting with external
// AI/LLM services. It abstracts the details of LLM API integration (Gemini),
// allowing the application to generate structured evaluations and embeddings
// without coupling to specific external services.
package generation
