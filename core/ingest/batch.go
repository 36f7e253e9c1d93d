package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	gerrors "github.com/jbradf0rd/projectgranada/core/errors"
	"github.com/jbradf0rd/projectgranada/core/metadata"
	"github.com/jbradf0rd/projectgranada/internal/logging"
)

// subjectPreviewBytes bounds how much of each file is read when sniffing the
// OpenITI subject line for automatic category assignment.
const subjectPreviewBytes = 5000

// IngestFolder ingests every book file directly under dir. Failures are
// recorded per file and never abort the batch.
func (p *Pipeline) IngestFolder(dir string, cat CategoryAssignment, overrides *metadata.BookMetadata) (*BatchResult, error) {
	paths, err := listBookFiles(dir)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		BatchID: uuid.NewString(),
		Total:   len(paths),
	}
	if batch.Total == 0 {
		batch.Status = StatusError
		batch.Message = "لا توجد ملفات كتب في المجلد"
		return batch, nil
	}
	for _, path := range paths {
		fileCat := cat
		autoCategory := ""
		if cat.AutoAssign {
			if subject := metadata.ExtractSubject(readPreview(path, subjectPreviewBytes)); subject != "" {
				id, custom, err := p.store.CategoryFromSubject(subject)
				if err == nil {
					fileCat = CategoryAssignment{ID: id, Custom: custom}
					autoCategory = firstSubjectSegment(subject)
				}
			}
		}

		res := p.IngestFile(path, fileCat, overrides)
		res.AutoCategory = autoCategory
		if res.Status == StatusSuccess {
			batch.Succeeded++
		}
		batch.Results = append(batch.Results, res)
	}

	if batch.Succeeded > 0 {
		batch.Status = StatusSuccess
	} else {
		batch.Status = StatusError
	}
	batch.Message = fmt.Sprintf("تم رفع %d من %d كتاب", batch.Succeeded, batch.Total)
	logging.Info("folder ingested", "dir", dir, "batch_id", batch.BatchID,
		"total", batch.Total, "succeeded", batch.Succeeded)
	return batch, nil
}

// ScanFolder lists the book files under dir with a metadata preview, without
// ingesting anything.
func ScanFolder(dir string) (*ScanResult, error) {
	paths, err := listBookFiles(dir)
	if err != nil {
		return nil, err
	}

	scan := &ScanResult{Files: []FileInfo{}}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		name := filepath.Base(path)
		inner, _ := innerName(name)

		fi := FileInfo{
			Path:          path,
			Name:          name,
			Size:          info.Size(),
			SizeFormatted: formatSize(info.Size()),
		}
		if meta := metadata.ParseFilename(inner); meta != nil {
			fi.IsOpeniti = true
			fi.Title = meta.Title
			fi.Author = meta.Author
		} else {
			meta, _ := metadata.ParseHeader(readPreview(path, subjectPreviewBytes))
			fi.Title = meta.Title
			fi.Author = meta.Author
		}
		if fi.Title == "" {
			fi.Title = strings.ReplaceAll(metadata.FileStem(inner), "_", " ")
		}
		scan.Files = append(scan.Files, fi)
	}
	scan.Count = len(scan.Files)
	return scan, nil
}

func listBookFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, gerrors.NewValidation("dir", "folder not found: "+dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !acceptable(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func firstSubjectSegment(subject string) string {
	return strings.TrimSpace(strings.SplitN(subject, "::", 2)[0])
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
