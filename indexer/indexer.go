// Package indexer provides batch indexing of a documentation tree into a
// vector index namespace. It coordinates file discovery, section splitting,
// record construction, and the reset-then-upsert cycle.
package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/upstash/docsearch"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// markdownExtRe matches the document extensions picked up by the walk.
var markdownExtRe = regexp.MustCompile(`\.(md|mdx)$`)

// Indexer performs a full re-index of one namespace. Indexing is
// all-or-nothing only at the namespace level: the namespace is wiped once
// before any write, and a later per-document failure leaves it partially
// populated. That failure mode is reported, not masked.
type Indexer struct {
	// Index is the target vector store (required).
	Index docsearch.VectorIndex

	// RootDir is the documentation tree to index (required). Record
	// paths are "{base(RootDir)}/{relative path}" with the extension
	// stripped, so the conventional "docs" root yields IDs like
	// "docs/getting-started#installation".
	RootDir string

	// Logger receives per-document outcomes. Optional.
	Logger *slog.Logger

	// Limiter throttles upsert calls. Optional.
	Limiter *rate.Limiter

	// Concurrency bounds parallel file reads. Defaults to 10.
	Concurrency int
}

// Result holds the outcome of an indexing run.
type Result struct {
	Documents int
	Sections  int
	Failed    int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressReset ProgressType = iota
	ProgressIndexed
	ProgressFailed
)

// ProgressEvent reports progress during an indexing run.
type ProgressEvent struct {
	Type        ProgressType
	Document    string // record path of the document
	Title       string
	ContentHash string
	Sections    int
	Err         error
}

// ProgressFunc is a callback for reporting indexing progress.
type ProgressFunc func(event ProgressEvent)

// IndexAll re-indexes the whole documentation tree into the namespace.
// Re-running it with unchanged sources yields an identical set of record
// IDs and metadata.
//
// Setup failures (unreadable tree, failed namespace reset) abort the run
// before or at the reset. After the reset, a failure while indexing one
// document is reported through progress and logging and the run continues
// with the next document.
func (ix *Indexer) IndexAll(ctx context.Context, namespace string, progress ProgressFunc) (*Result, error) {
	if ix.Index == nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "indexer: vector index required")
	}
	if ix.RootDir == "" {
		return nil, docsearch.Errorf(docsearch.EINVALID, "indexer: root directory required")
	}
	if namespace == "" {
		namespace = docsearch.DefaultNamespace
	}

	logger := ix.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	files, err := findMarkdownFiles(ix.RootDir)
	if err != nil {
		return nil, err
	}

	docs, err := ix.readAll(ctx, files)
	if err != nil {
		return nil, err
	}

	// Unconditional full wipe before any write. There is no incremental
	// indexing; the namespace is rebuilt from scratch on every run.
	if err := ix.Index.Reset(ctx, namespace); err != nil {
		return nil, err
	}
	logger.Info("reset namespace", "namespace", namespace)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressReset})
	}

	res := &Result{Documents: len(docs)}
	for _, doc := range docs {
		n, err := ix.indexDocument(ctx, namespace, doc, logger)
		if err != nil {
			res.Failed++
			logger.Error("failed to index document",
				"path", doc.RelPath,
				"error", err,
			)
			if progress != nil {
				progress(ProgressEvent{
					Type:     ProgressFailed,
					Document: doc.RelPath,
					Title:    doc.Title,
					Err:      err,
				})
			}
			continue
		}

		res.Sections += n
		logger.Info("indexed document",
			"path", doc.RelPath,
			"title", doc.Title,
			"sections", n,
			"hash", doc.ContentHash,
		)
		if progress != nil {
			progress(ProgressEvent{
				Type:        ProgressIndexed,
				Document:    doc.RelPath,
				Title:       doc.Title,
				ContentHash: doc.ContentHash,
				Sections:    n,
			})
		}
	}

	return res, nil
}

// indexDocument splits one document and upserts a record per non-empty
// section. Returns the number of sections indexed.
func (ix *Indexer) indexDocument(ctx context.Context, namespace string, doc *docsearch.Document, logger *slog.Logger) (int, error) {
	sections := docsearch.SplitSections(doc.Content)

	seen := make(map[string]bool, len(sections))
	indexed := 0
	for _, sec := range sections {
		if sec.Content == "" {
			continue
		}

		rec := docsearch.NewIndexRecord(doc, sec)
		if seen[rec.ID] {
			// Overwrites the earlier same-titled section. Known
			// limitation; anchor links depend on these IDs.
			logger.Warn("duplicate section ID overwrites earlier record", "id", rec.ID)
		}
		seen[rec.ID] = true

		if ix.Limiter != nil {
			if err := ix.Limiter.Wait(ctx); err != nil {
				return indexed, err
			}
		}
		if err := ix.Index.Upsert(ctx, namespace, rec); err != nil {
			return indexed, err
		}
		indexed++
	}

	return indexed, nil
}

// readAll reads every file concurrently while keeping the deterministic
// walk order in the returned slice. A read failure aborts the run: nothing
// has been written yet at this point, so the namespace is untouched.
func (ix *Indexer) readAll(ctx context.Context, files []string) ([]*docsearch.Document, error) {
	concurrency := ix.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	docs := make([]*docsearch.Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ix.readDocument(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}

// readDocument reads one file and derives its title, record path, and
// content hash.
func (ix *Indexer) readDocument(file string) (*docsearch.Document, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(ix.RootDir, file)
	if err != nil {
		return nil, err
	}
	relPath := path.Join(
		filepath.Base(filepath.Clean(ix.RootDir)),
		filepath.ToSlash(rel),
	)
	relPath = markdownExtRe.ReplaceAllString(relPath, "")

	text := string(content)
	return &docsearch.Document{
		Path:        file,
		RelPath:     relPath,
		Title:       docsearch.ExtractTitle(text, filepath.Base(file)),
		Content:     text,
		ContentHash: fmt.Sprintf("%016x", xxhash.Sum64(content)),
	}, nil
}

// findMarkdownFiles recursively enumerates markdown documents under root,
// descending into non-hidden directories. The result is sorted so runs are
// reproducible.
func findMarkdownFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if markdownExtRe.MatchString(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
