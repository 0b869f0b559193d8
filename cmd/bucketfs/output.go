package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sagarc03/bucketfs"
)

// Formatter formats command results for output.
type Formatter interface {
	FormatWrite(w io.Writer, key string, res *bucketfs.Result) error
	FormatRead(w io.Writer, key, dest string, size int64, res *bucketfs.Result) error
	FormatDelete(w io.Writer, key string, res *bucketfs.Result) error
	FormatURL(w io.Writer, url string) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

func getFormatter() Formatter {
	return NewFormatter(jsonOutput, quiet)
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatWrite(w io.Writer, key string, res *bucketfs.Result) error {
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Uploaded: %s\n", key)
	if res.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", res.ETag)
	}
	if res.VersionID != "" {
		_, _ = fmt.Fprintf(w, "  Version: %s\n", res.VersionID)
	}
	return nil
}

func (f *HumanFormatter) FormatRead(w io.Writer, key, dest string, size int64, res *bucketfs.Result) error {
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", key, dest, formatSize(size))
	if res.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", res.ETag)
	}
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, key string, _ *bucketfs.Result) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Deleted: %s\n", key)
	}
	return nil
}

// FormatURL always prints the URL, even in quiet mode.
func (f *HumanFormatter) FormatURL(w io.Writer, url string) error {
	_, err := fmt.Fprintln(w, url)
	return err
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

type jsonObject struct {
	Key          string `json:"key"`
	Path         string `json:"path,omitempty"`
	ETag         string `json:"etag,omitempty"`
	VersionID    string `json:"version_id,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	Size         int64  `json:"size_bytes,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`
}

func (f *JSONFormatter) FormatWrite(w io.Writer, key string, res *bucketfs.Result) error {
	return writeJSON(w, jsonObject{Key: key, ETag: res.ETag, VersionID: res.VersionID})
}

func (f *JSONFormatter) FormatRead(w io.Writer, key, dest string, size int64, res *bucketfs.Result) error {
	out := jsonObject{
		Key:         key,
		Path:        dest,
		ETag:        res.ETag,
		VersionID:   res.VersionID,
		ContentType: res.ContentType,
		Size:        size,
	}
	if !res.LastModified.IsZero() {
		out.LastModified = res.LastModified.UTC().Format(time.RFC3339)
	}
	return writeJSON(w, out)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, key string, res *bucketfs.Result) error {
	return writeJSON(w, jsonObject{Key: key, VersionID: res.VersionID, Deleted: true})
}

func (f *JSONFormatter) FormatURL(w io.Writer, url string) error {
	return writeJSON(w, struct {
		URL string `json:"url"`
	}{URL: url})
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatSize formats bytes into human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
