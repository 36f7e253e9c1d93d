package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gerrors "github.com/jbradf0rd/projectgranada/core/errors"
	"github.com/jbradf0rd/projectgranada/core/metadata"
)

type fakeStorage struct {
	downloaded map[string]*ExistingBook
	saved      []*BookRecord
	categories map[string]int64
	nextCat    int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		downloaded: map[string]*ExistingBook{},
		categories: map[string]int64{},
		nextCat:    100,
	}
}

func (f *fakeStorage) FindDownloaded(bookID string) (*ExistingBook, error) {
	return f.downloaded[bookID], nil
}

func (f *fakeStorage) SaveBook(rec *BookRecord) error {
	f.saved = append(f.saved, rec)
	f.downloaded[rec.ID] = &ExistingBook{ID: rec.ID, Title: rec.Meta.Title}
	return nil
}

func (f *fakeStorage) CategoryFromSubject(subject string) (int64, bool, error) {
	name := strings.TrimSpace(strings.SplitN(subject, "::", 2)[0])
	if id, ok := f.categories[name]; ok {
		return id, true, nil
	}
	f.nextCat++
	f.categories[name] = f.nextCat
	return f.nextCat, true, nil
}

const sampleBook = `#META#
Title: كتاب التجارب
Author: مؤلف مجهول
AuthorDeath: 450
#META#END#

---PAGE 1---
### | الباب الأول
هذا نص الصفحة الأولى من الكتاب، وفيه كلام كثير يتجاوز الحد الأدنى للمحتوى المقبول عند الرفع.

---PAGE 2---
وهذه الصفحة الثانية من الكتاب، وفيها تكملة الكلام السابق وزيادة عليه.
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestIngestFile(t *testing.T) {
	store := newFakeStorage()
	p := New(store)
	path := writeFile(t, t.TempDir(), "tajarib.txt", sampleBook)

	res := p.IngestFile(path, CategoryAssignment{ID: 2}, nil)
	if res.Status != StatusSuccess {
		t.Fatalf("status = %s (%s), want success", res.Status, res.Message)
	}
	if res.Pages != 2 || res.TocCount != 1 {
		t.Errorf("pages/toc = %d/%d, want 2/1", res.Pages, res.TocCount)
	}
	if res.Title != "كتاب التجارب" {
		t.Errorf("title = %q", res.Title)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d records", len(store.saved))
	}
	rec := store.saved[0]
	if rec.Meta.Author != "مؤلف مجهول" || rec.Meta.AuthorDeath != 450 {
		t.Errorf("author = %q (%d)", rec.Meta.Author, rec.Meta.AuthorDeath)
	}
	if rec.CategoryID != 2 || rec.CustomCategory {
		t.Errorf("category = (%d, %v), want (2, false)", rec.CategoryID, rec.CustomCategory)
	}
	if strings.Contains(rec.Pages[0].Content, "---PAGE") {
		t.Errorf("page content not cleaned: %q", rec.Pages[0].Content)
	}
}

func TestIngestDuplicateShortCircuits(t *testing.T) {
	store := newFakeStorage()
	p := New(store)
	path := writeFile(t, t.TempDir(), "tajarib.txt", sampleBook)

	first := p.IngestFile(path, CategoryAssignment{ID: 1}, nil)
	if first.Status != StatusSuccess {
		t.Fatalf("first ingest: %s", first.Message)
	}

	// Same stem means same duplicate key even though generated ids differ.
	store.downloaded["tajarib"] = &ExistingBook{ID: first.BookID, Title: first.Title}
	second := p.IngestFile(path, CategoryAssignment{ID: 1}, nil)
	if second.Status != StatusDuplicate {
		t.Fatalf("second ingest status = %s, want duplicate", second.Status)
	}
	if !errors.Is(second.Err, gerrors.ErrAlreadyExists) {
		t.Errorf("duplicate err = %v, want ErrAlreadyExists", second.Err)
	}
	var dup *gerrors.DuplicateError
	if !errors.As(second.Err, &dup) || dup.BookID != first.BookID {
		t.Errorf("duplicate err = %v, want DuplicateError for %s", second.Err, first.BookID)
	}
	if len(store.saved) != 1 {
		t.Errorf("duplicate ingest persisted anyway: %d saves", len(store.saved))
	}
}

func TestIngestOpenitiIdentity(t *testing.T) {
	store := newFakeStorage()
	p := New(store)

	content := "######OpenITI#\n#META#Header#End#\n# PageV01P001\n" +
		strings.Repeat("نص عربي طويل بما يكفي للتحقق من الحد الأدنى. ", 10)
	path := writeFile(t, t.TempDir(), "0256Bukhari.Sahih-ara1", content)

	res := p.IngestFile(path, CategoryAssignment{ID: 1}, nil)
	if res.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", res.Status, res.Message)
	}
	if res.BookID != "0256Bukhari.Sahih-ara1" {
		t.Errorf("book id = %q, want the OpenITI stem", res.BookID)
	}
	if store.saved[0].Meta.AuthorDeath != 256 {
		t.Errorf("author death = %d, want 256", store.saved[0].Meta.AuthorDeath)
	}
}

func TestIngestRejectsShortAndMissing(t *testing.T) {
	store := newFakeStorage()
	p := New(store)
	dir := t.TempDir()

	res := p.IngestFile(filepath.Join(dir, "missing.txt"), CategoryAssignment{}, nil)
	if res.Status != StatusError {
		t.Errorf("missing file status = %s, want error", res.Status)
	}

	short := writeFile(t, dir, "short.txt", "قصير جداً")
	res = p.IngestFile(short, CategoryAssignment{}, nil)
	if res.Status != StatusError {
		t.Errorf("short file status = %s, want error", res.Status)
	}

	bad := writeFile(t, dir, "book.pdf", strings.Repeat("نص ", 100))
	res = p.IngestFile(bad, CategoryAssignment{}, nil)
	if res.Status != StatusError {
		t.Errorf("unsupported extension status = %s, want error", res.Status)
	}

	if len(store.saved) != 0 {
		t.Errorf("invalid files were persisted: %d saves", len(store.saved))
	}
}

func TestIngestOverridesWin(t *testing.T) {
	store := newFakeStorage()
	p := New(store)
	path := writeFile(t, t.TempDir(), "tajarib.txt", sampleBook)

	res := p.IngestFile(path, CategoryAssignment{ID: 1}, &metadata.BookMetadata{
		Title: "عنوان بديل",
	})
	if res.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", res.Status, res.Message)
	}
	if res.Title != "عنوان بديل" {
		t.Errorf("title = %q, want the override", res.Title)
	}
	if store.saved[0].Meta.Author != "مؤلف مجهول" {
		t.Errorf("header author lost: %q", store.saved[0].Meta.Author)
	}
}

func TestIngestFolderAutoAssign(t *testing.T) {
	store := newFakeStorage()
	p := New(store)
	dir := t.TempDir()

	openiti := "######OpenITI#\n#META# 021.BookSUBJ	:: الحديث :: الصحاح\n#META#Header#End#\n# PageV01P001\n" +
		strings.Repeat("متن الحديث الأول في الكتاب المبارك. ", 10)
	writeFile(t, dir, "0256Bukhari.Sahih-ara1", openiti)
	writeFile(t, dir, "tajarib.txt", sampleBook)
	writeFile(t, dir, "notes.pdf", "ignored")

	batch, err := p.IngestFolder(dir, CategoryAssignment{ID: 3, AutoAssign: true}, nil)
	if err != nil {
		t.Fatalf("IngestFolder: %v", err)
	}
	if batch.Total != 2 || batch.Succeeded != 2 {
		t.Fatalf("batch = %d/%d, want 2/2 (%+v)", batch.Succeeded, batch.Total, batch.Results)
	}
	if batch.BatchID == "" {
		t.Errorf("batch id is empty")
	}

	byName := map[string]Result{}
	for _, r := range batch.Results {
		byName[r.Filename] = r
	}
	if got := byName["0256Bukhari.Sahih-ara1"].AutoCategory; got != "الحديث" {
		t.Errorf("auto category = %q, want الحديث", got)
	}
	if got := byName["tajarib.txt"].AutoCategory; got != "" {
		t.Errorf("plain file auto category = %q, want none", got)
	}
}

func TestIngestFolderContinuesPastFailures(t *testing.T) {
	store := newFakeStorage()
	p := New(store)
	dir := t.TempDir()

	writeFile(t, dir, "bad.txt", "قصير")
	writeFile(t, dir, "good.txt", sampleBook)

	batch, err := p.IngestFolder(dir, CategoryAssignment{ID: 1}, nil)
	if err != nil {
		t.Fatalf("IngestFolder: %v", err)
	}
	if batch.Total != 2 || batch.Succeeded != 1 {
		t.Fatalf("batch = %d/%d, want 1/2", batch.Succeeded, batch.Total)
	}
	if batch.Status != StatusSuccess {
		t.Errorf("batch status = %s, want success when any file succeeds", batch.Status)
	}
}

func TestIngestFolderEmptyIsError(t *testing.T) {
	p := New(newFakeStorage())

	batch, err := p.IngestFolder(t.TempDir(), CategoryAssignment{ID: 1}, nil)
	if err != nil {
		t.Fatalf("IngestFolder: %v", err)
	}
	if batch.Status != StatusError {
		t.Errorf("batch status = %s, want error for a folder with no book files", batch.Status)
	}
	if batch.Total != 0 || len(batch.Results) != 0 {
		t.Errorf("batch = total %d, %d results, want none", batch.Total, len(batch.Results))
	}
	if batch.Message != "لا توجد ملفات كتب في المجلد" {
		t.Errorf("message = %q", batch.Message)
	}
}

func TestScanFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0256Bukhari.Sahih-ara1", "نص")
	writeFile(t, dir, "tajarib.txt", sampleBook)
	writeFile(t, dir, "ignored.pdf", "x")

	scan, err := ScanFolder(dir)
	if err != nil {
		t.Fatalf("ScanFolder: %v", err)
	}
	if scan.Count != 2 {
		t.Fatalf("count = %d, want 2 (%+v)", scan.Count, scan.Files)
	}

	byName := map[string]FileInfo{}
	for _, f := range scan.Files {
		byName[f.Name] = f
	}
	if !byName["0256Bukhari.Sahih-ara1"].IsOpeniti {
		t.Errorf("OpenITI file not flagged")
	}
	if byName["tajarib.txt"].Title != "كتاب التجارب" {
		t.Errorf("scanned title = %q", byName["tajarib.txt"].Title)
	}
	if byName["tajarib.txt"].SizeFormatted == "" {
		t.Errorf("size not formatted")
	}
}

func TestGenerateBookIDDistinct(t *testing.T) {
	a := GenerateBookID("كتاب التجارب", "مؤلف", 450)
	b := GenerateBookID("كتاب التجارب", "مؤلف", 450)
	if a == b {
		t.Errorf("ids collided: %q", a)
	}
	if !strings.HasPrefix(a, "كتاب_التجارب_") {
		t.Errorf("id = %q, want title slug prefix", a)
	}
}
