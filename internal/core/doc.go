// Package core provides the business logic for staging orders from a
// spreadsheet-like tabular source.
//
// This package is the heart of sheetorders, containing all domain logic
// independent of the storage backend or transport layer. It can be driven by
// the CLI, the HTTP API, the scheduler, or tests without modification.
//
// # Pipeline
//
// A run executes strictly in sequence:
//
//  1. [EnsureMarkerColumn] finds or appends the processed_at column
//  2. The run timestamp is fixed once via [RunTimestamp]
//  3. All rows are read once and turned into [Record] values sharing one
//     [HeaderIndex]
//  4. Each record is validated ([ValidateRecord]); valid "new" records are
//     staged by the [OrderStager]
//  5. Every examined record queues one marker in the [MarkerBatcher], which
//     is flushed as a single batch at the very end
//
// # Tolerant Field Resolution
//
// Headers are normalized into a [HeaderKey] and stripped into a [SearchKey].
// [Record.Field] tries each logical alias in order, first by exact SearchKey,
// then by SearchKey prefix, so "Correo Electrónico" resolves for "correo".
//
// # Error Handling
//
// Row problems never abort a run; they are collected as validation codes on
// the row's [ValidationOutcome]. Only source failures are fatal, and they are
// reported before any marker is written. Technical errors are mapped to coded
// user messages using [MapError]:
//
//   - SRC001-SRC004: Source errors (unreachable, missing worksheet, access)
//   - RUN001-RUN004: Run errors (busy, cancelled, timed out, unknown run)
//   - WRT001: Marker write-back failure
//   - CFG001: Configuration problems
//   - DB004: Database connection refused
package core
