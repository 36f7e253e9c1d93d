// Command granada is the CLI for the Granada personal library: it ingests
// Arabic book files into a local SQLite library and runs full-text search
// over the normalized page index.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jbradf0rd/projectgranada/core/ingest"
	"github.com/jbradf0rd/projectgranada/core/metadata"
	"github.com/jbradf0rd/projectgranada/core/search"
	"github.com/jbradf0rd/projectgranada/core/sqlite"
	"github.com/jbradf0rd/projectgranada/internal/logging"
	"github.com/jbradf0rd/projectgranada/internal/store"
)

const version = "0.2.0"

// CLI defines the command-line interface for granada.
var CLI struct {
	// Global flags
	DB        string `name:"db" help:"Path to the library database" env:"GRANADA_DB" default:"granada.db" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" env:"GRANADA_LOG_LEVEL" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" env:"GRANADA_LOG_FORMAT" default:"text"`

	// Command groups (noun-first organization)
	Ingest   IngestGroup   `cmd:"" help:"Book ingestion (file, folder, scan)"`
	Search   SearchCmd     `cmd:"" help:"Full-text search across the library"`
	Books    BooksGroup    `cmd:"" help:"Library contents (list, toc)"`
	Index    IndexGroup    `cmd:"" help:"Search index maintenance"`
	History  HistoryCmd    `cmd:"" help:"Recent search queries"`
	Category CategoryGroup `cmd:"" help:"Category management"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// IngestGroup contains book ingestion operations.
type IngestGroup struct {
	File   IngestFileCmd   `cmd:"" help:"Ingest a single book file"`
	Folder IngestFolderCmd `cmd:"" help:"Ingest every book file in a folder"`
	Scan   ScanCmd         `cmd:"" help:"List detected book files without ingesting"`
}

// BooksGroup contains library listing operations.
type BooksGroup struct {
	List BooksListCmd `cmd:"" help:"List downloaded books"`
	Toc  BooksTocCmd  `cmd:"" help:"Show a book's table of contents"`
}

// IndexGroup contains search-index maintenance operations.
type IndexGroup struct {
	Rebuild IndexRebuildCmd `cmd:"" help:"Rebuild the full-text index from stored pages"`
}

// CategoryGroup contains category operations.
type CategoryGroup struct {
	List CategoryListCmd `cmd:"" help:"List built-in and custom categories"`
}

// IngestFileCmd ingests a single book file.
type IngestFileCmd struct {
	Path     string `arg:"" help:"Path to the book file" type:"existingfile"`
	Category int64  `help:"Category id to assign" default:"1"`
	Custom   bool   `help:"Category id refers to a custom category"`

	Title       string `help:"Override the book title"`
	Author      string `help:"Override the author name"`
	AuthorDeath int    `name:"author-death" help:"Override the author death year (AH)"`
}

func (c *IngestFileCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	res := ingest.New(s).IngestFile(c.Path, ingest.CategoryAssignment{
		ID:     c.Category,
		Custom: c.Custom,
	}, c.overrides())
	if err := printJSON(res); err != nil {
		return err
	}
	if res.Status == ingest.StatusError {
		return res.Err
	}
	return nil
}

func (c *IngestFileCmd) overrides() *metadata.BookMetadata {
	if c.Title == "" && c.Author == "" && c.AuthorDeath == 0 {
		return nil
	}
	return &metadata.BookMetadata{
		Title:       c.Title,
		Author:      c.Author,
		AuthorDeath: c.AuthorDeath,
	}
}

// IngestFolderCmd ingests every book file in a folder.
type IngestFolderCmd struct {
	Path       string `arg:"" help:"Path to the folder" type:"existingdir"`
	Category   int64  `help:"Category id to assign" default:"1"`
	Custom     bool   `help:"Category id refers to a custom category"`
	AutoAssign bool   `name:"auto-assign" help:"Derive each book's category from its subject field"`
}

func (c *IngestFolderCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	batch, err := ingest.New(s).IngestFolder(c.Path, ingest.CategoryAssignment{
		ID:         c.Category,
		Custom:     c.Custom,
		AutoAssign: c.AutoAssign,
	}, nil)
	if err != nil {
		return err
	}
	return printJSON(batch)
}

// ScanCmd lists detected book files in a folder.
type ScanCmd struct {
	Path string `arg:"" help:"Path to the folder" type:"existingdir"`
}

func (c *ScanCmd) Run() error {
	scan, err := ingest.ScanFolder(c.Path)
	if err != nil {
		return err
	}
	return printJSON(scan)
}

// SearchCmd runs a full-text search.
type SearchCmd struct {
	Query string `arg:"" help:"Search query"`

	Books      []string `help:"Restrict to these book ids"`
	Authors    []string `help:"Restrict to these author ids"`
	Categories []int64  `help:"Restrict to these category ids"`

	Page      int    `help:"Result page (1-based)" default:"1"`
	Limit     int    `help:"Results per page" default:"20"`
	Precision string `help:"Term combination mode" enum:"some,all,phrase" default:"all"`
	Literal   bool   `help:"Match diacritics and letter variants exactly"`
	Full      bool   `help:"Wider snippet context"`
	NoMark    bool   `name:"no-mark" help:"Disable match highlighting in snippets"`
}

func (c *SearchCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := search.New(s).Search(c.Query, search.Options{
		Filters: search.Filters{
			BookIDs:     c.Books,
			AuthorIDs:   c.Authors,
			CategoryIDs: c.Categories,
		},
		Page:       c.Page,
		Limit:      c.Limit,
		Precision:  search.Precision(c.Precision),
		Simplify:   !c.Literal,
		FullResult: c.Full,
		Highlight:  !c.NoMark,
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

// BooksListCmd lists downloaded books.
type BooksListCmd struct{}

func (c *BooksListCmd) Run() error {
	s, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	books, err := s.ListBooks()
	if err != nil {
		return err
	}
	return printJSON(books)
}

// BooksTocCmd shows a book's table of contents.
type BooksTocCmd struct {
	BookID string `arg:"" help:"Book id"`
}

func (c *BooksTocCmd) Run() error {
	s, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	toc, err := s.TocEntries(c.BookID)
	if err != nil {
		return err
	}
	for _, e := range toc {
		fmt.Printf("%*s%s (ص %d)\n", (e.Level-1)*2, "", e.Title, e.PageNum)
	}
	return nil
}

// IndexRebuildCmd rebuilds the full-text index, either whole or scoped to a
// single book.
type IndexRebuildCmd struct {
	Book string `help:"Limit the rebuild to one book id"`
}

func (c *IndexRebuildCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if c.Book != "" {
		if err := s.IndexBook(c.Book); err != nil {
			return err
		}
		fmt.Printf("index rebuilt for %s\n", c.Book)
		return nil
	}
	if err := s.RebuildIndex(); err != nil {
		return err
	}
	fmt.Println("index rebuilt")
	return nil
}

// HistoryCmd lists recent search queries.
type HistoryCmd struct {
	Limit int `help:"Number of queries to show" default:"10"`
}

func (c *HistoryCmd) Run() error {
	s, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	queries, err := search.New(s).History(c.Limit)
	if err != nil {
		return err
	}
	for i, q := range queries {
		fmt.Printf("%d. %s\n", i+1, q)
	}
	return nil
}

// CategoryListCmd lists categories.
type CategoryListCmd struct{}

func (c *CategoryListCmd) Run() error {
	s, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer s.Close()

	cats, err := s.ListCategories()
	if err != nil {
		return err
	}
	return printJSON(cats)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("granada %s (sqlite: %s)\n", version, sqlite.Info())
	return nil
}

func openStore() (*store.Store, error) {
	return store.Open(CLI.DB)
}

// openStoreReadOnly is for commands that only query the library. Search is
// excluded: it writes the history log.
func openStoreReadOnly() (*store.Store, error) {
	return store.OpenReadOnly(CLI.DB)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("granada"),
		kong.Description("Granada - personal Arabic library and full-text search"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
