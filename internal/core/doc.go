// Package core provides the conversion engine that turns knowledge-point and
// prerequisite tables into batched Cypher scripts.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the CLI, the HTTP handlers and tests without
// modification.
//
// # Architecture
//
// A conversion runs in four steps, each owned by one part of the package:
//
//  1. The tabular reader resolves the file's text encoding and parses it
//     into a header-keyed table (see package tabular).
//  2. [ResolveFields] maps the literal headers, English or Chinese, to
//     canonical field names using the alias tables [KnowledgePointFields]
//     and [PrerequisiteFields].
//  3. [ParseKnowledgePoints] / [ParsePrerequisites] normalize rows into
//     records, enforcing name uniqueness and dropping sentinel values.
//  4. The records are rendered as one UNWIND statement whose element
//     literals are escaped with [Escape] (or [EscapeStrict]).
//
// [Converter] ties the steps together:
//
//	c := core.NewConverter()
//	cypher, err := c.ConvertKnowledgePoints(ctx, "knowledge_points_EMA.csv")
//
// # Output
//
// Node scripts create every node in a single batch followed by three index
// statements (name, subject, educationSystem). Relationship scripts match
// both endpoints by name and create one Prerequisite edge per candidate. The
// batch statement is omitted when no record survives.
//
// # Error Handling
//
// Every failure of a conversion call is a *[TranslationError] wrapping the
// cause: *[MissingFieldsError], *[DuplicateNameError], a read error, or a
// context error. Technical errors are mapped to user-facing messages with
// support codes using [MapError].
package core
