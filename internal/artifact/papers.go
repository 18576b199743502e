// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// paperTable wraps the read-only SQLite corpus metadata table.
type paperTable struct {
	db    *sql.DB
	count int
}

func openPaperTable(path string) (*paperTable, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening paper table: %w", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM papers`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("counting papers: %w", err)
	}

	return &paperTable{db: db, count: count}, nil
}

func (p *paperTable) close() error { return p.db.Close() }

// loadPapers materializes the paper table on first use.
func (s *Store) loadPapers() (*paperTable, error) {
	s.mu.RLock()
	p := s.papers
	s.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.papers != nil {
		return s.papers, nil
	}

	p, err := openPaperTable(s.path(PapersFile))
	if err != nil {
		return nil, unavailable(NamePapers, err)
	}
	s.papers = p
	return p, nil
}

// PaperCount returns the corpus size.
func (s *Store) PaperCount(ctx context.Context) (int, error) {
	p, err := s.loadPapers()
	if err != nil {
		return 0, err
	}
	_ = ctx
	return p.count, nil
}

// PaperByID looks up one paper. sql.ErrNoRows is returned unwrapped for a
// missing id; the engine treats that as a data-consistency fault, not a
// per-query failure.
func (s *Store) PaperByID(ctx context.Context, id int) (types.Paper, error) {
	p, err := s.loadPapers()
	if err != nil {
		return types.Paper{}, err
	}

	var (
		paper types.Paper
		link  sql.NullString
	)
	paper.ID = id

	err = p.db.QueryRowContext(ctx,
		`SELECT title, abstract, link FROM papers WHERE id = ?`, id,
	).Scan(&paper.Title, &paper.Abstract, &link)
	if err != nil {
		return types.Paper{}, err
	}

	if link.Valid && link.String != "" {
		paper.Link = link.String
	} else {
		paper.Link = TitleSearchLink(paper.Title)
	}
	return paper, nil
}

// TitleSearchLink synthesizes an arXiv title-search URL for papers whose
// corpus entry carries no link.
func TitleSearchLink(title string) string {
	quoted := url.QueryEscape(`"` + title + `"`)
	return "https://arxiv.org/search/?query=" + quoted + "&searchtype=title"
}
