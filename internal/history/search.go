// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a searchable catalog of saved chats.
package history

import (
	"context"
	"strings"
)

// =============================================================================
// SEARCH
// =============================================================================

// SearchResult is one exchange matching a content search.
type SearchResult struct {
	Path          string
	ChatName      string
	Model         string
	Position      int
	UserText      string
	AssistantText string
}

// Search finds exchanges whose text matches the query, best match first.
// An empty query returns no results.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT chats.path, chats.chat_name, chats.model,
		       exchanges.position, exchanges.user_text, exchanges.assistant_text
		FROM exchanges_fts
		JOIN exchanges ON exchanges.id = exchanges_fts.rowid
		JOIN chats ON chats.id = exchanges.chat_id
		WHERE exchanges_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.ChatName, &r.Model, &r.Position, &r.UserText, &r.AssistantText); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// buildFTSQuery turns user input into an FTS5 query. Each term is quoted
// so FTS5 operator characters in user text cannot change the query shape;
// the final term gets a prefix match.
func buildFTSQuery(query string) string {
	terms := strings.Fields(strings.TrimSpace(query))
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		if i == len(terms)-1 {
			quoted[i] = `"` + term + `"*`
		} else {
			quoted[i] = `"` + term + `"`
		}
	}
	return strings.Join(quoted, " ")
}
