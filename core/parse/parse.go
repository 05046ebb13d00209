// Package parse turns raw `git log` text into commit records.
//
// The input is the default medium format, newest commit first:
//
//	commit <hash>
//	Merge: <p1> <p2>
//	Author: Name <email>
//	Date:   Mon Jan 2 15:04:05 2006 -0700
//
//	    message lines
//	    Change-Id: I0123...
//
// Parsing is a single pass that classifies one line at a time. A line that
// fits no class is logged and skipped; only an unreadable author or date
// fails the whole parse.
package parse

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/TordWessman/gitstat/schema"
)

// ErrMalformedRecord marks a commit whose author or date could not be read.
var ErrMalformedRecord = errors.New("malformed commit record")

// RecordError reports which record and line failed to parse.
type RecordError struct {
	Hash  string
	Line  int
	Field string
	Text  string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("commit %s line %d: unreadable %s %q", e.Hash, e.Line, e.Field, e.Text)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

var authorRe = regexp.MustCompile(`(?i)^author:\s*(.*?)\s*<(.*)>\s*$`)

// Option configures a Parser.
type Option func(*Parser)

// WithBoundary stops the scan at the header of hash, usually the previous sync cursor.
func WithBoundary(hash string) Option {
	return func(p *Parser) { p.boundary = hash }
}

// WithCutoff flags commits older than epoch as ignored.
func WithCutoff(epoch int64) Option {
	return func(p *Parser) { p.cutoff = epoch }
}

// WithLogger sets the logger for skipped lines and dropped records.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// Parser converts log text into commits. It holds no state between calls.
type Parser struct {
	boundary string
	cutoff   int64
	logger   *slog.Logger
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the commits of raw, newest first.
//
// When the header of the boundary hash is reached the scan stops and only the
// commits above it are returned; an empty result means nothing is new.
// Commits older than the cutoff stay in the result with Ignore set, except
// for the trailing record which is dropped instead.
func (p *Parser) Parse(raw string) ([]schema.Commit, error) {
	var out []schema.Commit
	var b builder

	for i, line := range strings.Split(raw, "\n") {
		lineNo := i + 1
		line = strings.TrimRight(line, "\r")

		switch {
		case strings.TrimSpace(line) == "":
			continue

		case hasPrefixFold(line, "commit "):
			hash := headerHash(line)
			if b.active() {
				p.emit(&out, b.finish())
			}
			if p.boundary != "" && hash == p.boundary {
				return out, nil
			}
			b.start(hash, lineNo)

		case !b.active():
			p.logger.Warn("malformed log line", slog.Int("line", lineNo), slog.String("text", line))

		case hasPrefixFold(line, "merge:"):
			b.commit.IsMerge = true

		case hasPrefixFold(line, "author:"):
			m := authorRe.FindStringSubmatch(line)
			if m == nil {
				return nil, &RecordError{Hash: b.commit.Hash, Line: lineNo, Field: "author", Text: line}
			}
			b.commit.Author = schema.Author{Name: m[1], Email: m[2]}

		case hasPrefixFold(line, "date:"):
			ts, err := parseDate(line[len("date:"):])
			if err != nil {
				return nil, &RecordError{Hash: b.commit.Hash, Line: lineNo, Field: "date", Text: line}
			}
			b.commit.Timestamp = ts
			b.commit.Ignore = p.cutoff > 0 && ts < p.cutoff

		case strings.HasPrefix(line, "    "), strings.HasPrefix(line, "\t"):
			body := strings.TrimSpace(line)
			if id, ok := trailerValue(body, "change-id:"); ok {
				b.commit.ChangeID = id
				continue
			}
			b.message = append(b.message, body)

		default:
			p.logger.Warn("malformed log line",
				slog.String("commit", b.commit.Hash),
				slog.Int("line", lineNo),
				slog.String("text", line))
		}
	}

	if b.active() {
		last := b.finish()
		switch {
		case !schema.IsValidHash(last.Hash):
			p.logger.Warn("invalid commit hash", slog.String("commit", last.Hash), slog.Int("line", b.headerLine))
		case !last.Ignore:
			out = append(out, last)
		}
	}

	if p.boundary != "" {
		p.logger.Warn("boundary commit not found in log", slog.String("boundary", p.boundary), slog.Int("commits", len(out)))
	}
	return out, nil
}

// emit moves a header-finalized record into out if its hash is valid.
func (p *Parser) emit(out *[]schema.Commit, c schema.Commit) {
	if !schema.IsValidHash(c.Hash) {
		p.logger.Warn("invalid commit hash", slog.String("commit", c.Hash))
		return
	}
	*out = append(*out, c)
}

// builder accumulates the record currently being scanned.
type builder struct {
	commit     schema.Commit
	message    []string
	headerLine int
	open       bool
}

func (b *builder) active() bool { return b.open }

func (b *builder) start(hash string, line int) {
	*b = builder{commit: schema.Commit{Hash: hash}, headerLine: line, open: true}
}

// finish hands the record over and leaves the builder empty.
// Any message mentioning "merge" is flagged as a merge; this also catches
// ordinary commits that only talk about merging.
func (b *builder) finish() schema.Commit {
	c := b.commit
	c.Message = strings.Join(b.message, "\n")
	if strings.Contains(strings.ToLower(c.Message), "merge") {
		c.IsMerge = true
	}
	headerLine := b.headerLine
	*b = builder{headerLine: headerLine}
	return c
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// headerHash returns the hash of a "commit <hash> (decorations)" line.
func headerHash(line string) string {
	fields := strings.Fields(line[len("commit "):])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func trailerValue(body, key string) (string, bool) {
	if !hasPrefixFold(body, key) {
		return "", false
	}
	return strings.TrimSpace(body[len(key):]), true
}
