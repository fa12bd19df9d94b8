package commands

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/google/safearchive/zip"
	"github.com/pkg/errors"

	"github.com/benz9527/xindex/lib/id"
	"github.com/benz9527/xindex/lib/interval"
)

const (
	commentPrefix = "#"
	labelPrefix   = "r"
	archiveExt    = ".zip"
)

// Record is one parsed input line.
type Record struct {
	Line  int
	Range interval.Range
	Label string
}

// ParseRecords reads whitespace separated "start stop [label]" lines. Text
// after a '#' is ignored. Records without a label get one from labels.
func ParseRecords(r io.Reader, labels id.Generator) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	records := make([]Record, 0, 64)
	for line := 1; scanner.Scan(); line++ {
		text, _, _ := strings.Cut(scanner.Text(), commentPrefix)
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, errors.Errorf("line %d: expected start stop [label], got %q", line, scanner.Text())
		}
		start, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: start", line)
		}
		stop, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: stop", line)
		}
		label := strings.Join(fields[2:], " ")
		if label == "" {
			label = labelPrefix + labels.Str()
		}
		records = append(records, Record{
			Line:  line,
			Range: interval.NewRange(start, stop),
			Label: label,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read records")
	}
	return records, nil
}

// ReadArchive parses every regular file of a zip archive as records, in
// archive order. Entries that escape the archive root or carry special
// file modes are refused.
func ReadArchive(path string, labels id.Generator) ([]Record, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}
	defer archive.Close()
	archive.SetSecurityMode(archive.GetSecurityMode() | zip.MaximumSecurityMode)

	records := make([]Record, 0, 64)
	for _, f := range archive.File {
		if f.Mode().IsDir() {
			continue
		}
		part, err := readArchiveFile(f, labels)
		if err != nil {
			return nil, errors.Wrapf(err, "archive entry %s", f.Name)
		}
		records = append(records, part...)
	}
	return records, nil
}

func readArchiveFile(f *zip.File, labels id.Generator) ([]Record, error) {
	r, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer r.Close()
	return ParseRecords(r, labels)
}

// ParseParts reads a region written as "s1-e1,s2-e2". Either end may be
// negative, so the separator is the first '-' after the first character.
func ParseParts(raw string) ([]interval.Range, error) {
	items := strings.Split(raw, ",")
	parts := make([]interval.Range, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		sep := strings.Index(item[1:], "-")
		if sep < 0 {
			return nil, errors.Errorf("region part %q: expected start-stop", item)
		}
		sep++
		start, err := strconv.ParseInt(strings.TrimSpace(item[:sep]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "region part %q: start", item)
		}
		stop, err := strconv.ParseInt(strings.TrimSpace(item[sep+1:]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "region part %q: stop", item)
		}
		if stop < start {
			return nil, errors.Errorf("region part %q: stop is before start", item)
		}
		parts = append(parts, interval.NewRange(start, stop))
	}
	if len(parts) == 0 {
		return nil, errors.New("region has no parts")
	}
	return parts, nil
}
