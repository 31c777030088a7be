// Package docsearch provides retrieval-augmented search over a Docusaurus
// documentation tree. Markdown documents are split into heading-anchored
// sections and indexed into a remote vector namespace; free-text queries
// retrieve ranked sections, which can optionally be fed to a language model
// to synthesize a direct, grounded answer.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., upstash/, gemini/, http/).
package docsearch
