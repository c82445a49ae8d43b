//go:build pdfcpu
// +build pdfcpu

// Package pdf provides a capped pdfcpu-based fallback for PDFs the primary
// reader cannot handle. It dumps page content streams and recovers the string
// literals, which is crude but survives files that break stricter parsers.
// Guarded by the 'pdfcpu' build tag; default builds get the stub.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Default caps for fallback extraction.
const (
	DefaultPageCap    = 200        // maximum number of pages to process
	DefaultPerPageCap = 128 * 1024 // per-page text cap in bytes
)

// ExtractPages extracts per-page text from raw PDF bytes. pageCap and
// perPageCap of <=0 select the defaults.
func ExtractPages(data []byte, pageCap, perPageCap int) ([]string, error) {
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	if perPageCap <= 0 {
		perPageCap = DefaultPerPageCap
	}

	defer func() { _ = recover() }()

	// pdfcpu's content extraction works on files, so stage the bytes in a
	// temporary directory along with the per-page dumps.
	tmpDir, err := os.MkdirTemp("", "docview_pdfcpu_*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("stage pdf: %w", err)
	}
	outDir := filepath.Join(tmpDir, "content")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if err := api.ExtractContentFile(src, outDir, nil, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu ExtractContentFile: %w", err)
	}

	ents, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	sort.Slice(ents, func(i, j int) bool { return ents[i].Name() < ents[j].Name() })

	var pages []string
	for _, de := range ents {
		if de.IsDir() || len(pages) >= pageCap {
			continue
		}
		raw, _ := os.ReadFile(filepath.Join(outDir, de.Name()))
		if len(raw) == 0 {
			continue
		}
		txt := asciiNormalize(parseStringLiterals(string(raw), perPageCap))
		if len(txt) > perPageCap {
			txt = txt[:perPageCap]
		}
		if txt == "" {
			continue
		}
		pages = append(pages, txt)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text")
	}
	return pages, nil
}

// parseStringLiterals collects text within balanced parentheses from a PDF
// content stream, honoring backslash escapes and capping output size.
func parseStringLiterals(s string, maxOut int) string {
	var out strings.Builder
	depth := 0
	escape := false
	in := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !in {
			if c == '(' {
				in = true
				depth = 1
			}
			continue
		}
		if escape {
			out.WriteByte(c)
			escape = false
			if out.Len() >= maxOut {
				return out.String()
			}
			continue
		}
		switch c {
		case '\\':
			escape = true
		case '(':
			depth++
			out.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				in = false
				out.WriteByte(' ')
			} else {
				out.WriteByte(c)
			}
		default:
			out.WriteByte(c)
		}
		if out.Len() >= maxOut {
			return out.String()
		}
	}
	return out.String()
}

// asciiNormalize collapses non-printable and non-ASCII runes to spaces and
// normalizes whitespace.
func asciiNormalize(s string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 127 || !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(ascii), " ")
}
