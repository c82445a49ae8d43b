package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"
	"github.com/ledongthuc/pdf"
	"github.com/richardlehane/mscfb"
	encunicode "golang.org/x/text/encoding/unicode"

	pdffallback "docview/document/pdf"
)

// Extractor turns raw file bytes into per-page plain text. Formats without
// native pagination return their text pre-split into page-sized chunks.
type Extractor interface {
	Extract(data []byte) ([]string, error)
}

// ExtractorRegistry holds extractors keyed by lowercase file extension
// (without the dot).
type ExtractorRegistry struct {
	extractors map[string]Extractor
}

// NewExtractorRegistry creates a registry with the built-in extractors.
func NewExtractorRegistry() *ExtractorRegistry {
	reg := &ExtractorRegistry{extractors: make(map[string]Extractor)}
	reg.registerBuiltIns()
	return reg
}

// Get returns the extractor for an extension.
func (r *ExtractorRegistry) Get(ext string) (Extractor, bool) {
	e, ok := r.extractors[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return e, ok
}

// Register installs or replaces an extractor for an extension.
func (r *ExtractorRegistry) Register(ext string, e Extractor) {
	r.extractors[strings.ToLower(strings.TrimPrefix(ext, "."))] = e
}

func (r *ExtractorRegistry) registerBuiltIns() {
	r.extractors["pdf"] = &PDFExtractor{}

	// Email formats
	r.extractors["eml"] = &EMLExtractor{}
	r.extractors["mbox"] = &MBOXExtractor{}
	r.extractors["msg"] = &MSGExtractor{}

	// Office document formats
	r.extractors["docx"] = &DOCXExtractor{}
	r.extractors["odt"] = &ODTExtractor{}

	// Web and markup formats
	r.extractors["html"] = &HTMLExtractor{}
	r.extractors["htm"] = &HTMLExtractor{}
	r.extractors["xml"] = &HTMLExtractor{}
	r.extractors["rtf"] = &RTFExtractor{}

	for _, ext := range []string{"txt", "md", "log", "csv"} {
		r.extractors[ext] = &TextExtractor{}
	}
}

// TextExtractor handles plain text: pages are estimated chunks of roughly
// charsPerPage characters.
type TextExtractor struct{}

func (e *TextExtractor) Extract(data []byte) ([]string, error) {
	return splitByLength(string(data), charsPerPage), nil
}

// PDFExtractor reads PDFs page by page. The library is known to panic on
// malformed files, so every call into it is guarded; when it yields nothing
// the capped pdfcpu content-stream fallback takes over (build-tagged).
// PageCap and PerPageCap bound the fallback; <=0 selects its defaults.
type PDFExtractor struct {
	PageCap    int
	PerPageCap int
}

func (e *PDFExtractor) Extract(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = e.fallback(data)
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if rerr != nil {
		return e.fallback(data)
	}

	numPages := 0
	func() {
		defer func() { _ = recover() }()
		numPages = reader.NumPage()
	}()
	if numPages <= 0 {
		return e.fallback(data)
	}

	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		var b strings.Builder
		func() {
			defer func() { _ = recover() }()
			page := reader.Page(i)
			if page.V.IsNull() {
				return
			}
			content := page.Content()
			for _, item := range content.Text {
				b.WriteString(item.S)
				b.WriteString(" ")
			}
		}()
		pages = append(pages, strings.TrimSpace(b.String()))
	}

	nonEmpty := false
	for _, p := range pages {
		if p != "" {
			nonEmpty = true
			break
		}
	}
	if !nonEmpty {
		return e.fallback(data)
	}
	return pages, nil
}

func (e *PDFExtractor) fallback(data []byte) ([]string, error) {
	pages, err := pdffallback.ExtractPages(data, e.PageCap, e.PerPageCap)
	if err != nil {
		return nil, fmt.Errorf("pdf extraction failed: %w", err)
	}
	return pages, nil
}

// EMLExtractor extracts the body of a MIME message, preferring plain text
// and falling back to stripped HTML.
type EMLExtractor struct{}

func (e *EMLExtractor) Extract(data []byte) ([]string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse eml: %w", err)
	}

	var b strings.Builder
	if subject := env.GetHeader("Subject"); subject != "" {
		b.WriteString(subject)
		b.WriteString("\n\n")
	}
	text := env.Text
	if text == "" && env.HTML != "" {
		text = stripTags(env.HTML)
	}
	b.WriteString(text)

	return splitByLength(b.String(), charsPerPage), nil
}

// MBOXExtractor extracts a mailbox one message per page.
type MBOXExtractor struct{}

func (e *MBOXExtractor) Extract(data []byte) ([]string, error) {
	reader := mbox.NewReader(bytes.NewReader(data))
	eml := &EMLExtractor{}

	var pages []string
	for {
		msg, err := reader.NextMessage()
		if err != nil {
			break
		}
		raw, err := io.ReadAll(msg)
		if err != nil {
			continue
		}
		extracted, err := eml.Extract(raw)
		if err != nil {
			continue
		}
		pages = append(pages, strings.Join(extracted, "\n"))
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no messages in mbox")
	}
	return pages, nil
}

// MSGExtractor reads Outlook compound-file messages, pulling the body
// property streams out of the CFB container.
type MSGExtractor struct{}

// MAPI body property streams inside the compound file: 001F variants are
// UTF-16LE, 001E variants are 8-bit.
const (
	msgBodyUnicode = "__substg1.0_0037001F" // subject
	msgBodyW       = "__substg1.0_1000001F"
	msgBodyA       = "__substg1.0_1000001E"
)

func (e *MSGExtractor) Extract(data []byte) ([]string, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse msg: %w", err)
	}

	var subject, body string
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case msgBodyUnicode, msgBodyW:
			raw, rerr := io.ReadAll(entry)
			if rerr != nil {
				continue
			}
			decoded, derr := encunicode.UTF16(encunicode.LittleEndian, encunicode.IgnoreBOM).NewDecoder().Bytes(raw)
			if derr != nil {
				continue
			}
			if entry.Name == msgBodyUnicode {
				subject = string(decoded)
			} else {
				body = string(decoded)
			}
		case msgBodyA:
			raw, rerr := io.ReadAll(entry)
			if rerr != nil {
				continue
			}
			if body == "" {
				body = string(raw)
			}
		}
	}
	if subject == "" && body == "" {
		return nil, fmt.Errorf("no body streams in msg")
	}

	var b strings.Builder
	if subject != "" {
		b.WriteString(subject)
		b.WriteString("\n\n")
	}
	b.WriteString(body)
	return splitByLength(b.String(), charsPerPage), nil
}

// DOCXExtractor pulls paragraphs out of word/document.xml. Page count is
// estimated at wordsPerPage words per page.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extract(data []byte) ([]string, error) {
	text, err := zipEntryText(data, "word/document.xml", "</w:p>")
	if err != nil {
		return nil, err
	}
	return splitByWords(text, wordsPerPage), nil
}

// ODTExtractor pulls paragraphs out of content.xml.
type ODTExtractor struct{}

func (e *ODTExtractor) Extract(data []byte) ([]string, error) {
	text, err := zipEntryText(data, "content.xml", "</text:p>")
	if err != nil {
		return nil, err
	}
	return splitByWords(text, wordsPerPage), nil
}

// zipEntryText reads one XML member of a zip container, turns paragraph
// closers into newlines, and strips the remaining markup.
func zipEntryText(data []byte, name, paragraphCloser string) (string, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open container: %w", err)
	}
	for _, file := range zipReader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		xml := strings.ReplaceAll(string(content), paragraphCloser, "\n")
		return strings.TrimSpace(stripTags(xml)), nil
	}
	return "", fmt.Errorf("%s not found in container", name)
}

// HTMLExtractor strips markup and estimates pages by length.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(data []byte) ([]string, error) {
	return splitByLength(stripTags(string(data)), charsPerPage), nil
}

// RTFExtractor strips RTF control words and estimates pages by length.
type RTFExtractor struct{}

var rtfControlRegex = regexp.MustCompile(`\\[a-z]+-?\d*`)

func (e *RTFExtractor) Extract(data []byte) ([]string, error) {
	text := string(data)
	text = rtfControlRegex.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "{", "")
	text = strings.ReplaceAll(text, "}", "")
	return splitByLength(text, charsPerPage), nil
}
