// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides chat export functionality for ollamadesk.
//
// # Key Types
//
//   - Exporter: interface implemented by each output format
//   - MarkdownExporter: Markdown with a metadata header
//   - TextExporter: the plain transcript format
//
// # Usage
//
//	path, err := export.ToFile(export.NewMarkdownExporter(), record, dir)
package export
