package rag

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	applog "urbanisme/internal/platform/log"
)

// ParseResult is the plain text extracted from an uploaded document.
type ParseResult struct {
	Content string
	Pages   int
}

// Parser extracts plain text from one document format.
type Parser interface {
	Parse(reader io.Reader, filename string) (*ParseResult, error)
	SupportedTypes() []string
}

// ── plain text ───────────────────────────────────────────────

type PlainTextParser struct{}

func (p *PlainTextParser) SupportedTypes() []string {
	return []string{".txt", ".text", ".csv", ".log"}
}

func (p *PlainTextParser) Parse(reader io.Reader, filename string) (*ParseResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return &ParseResult{Content: strings.TrimSpace(string(data))}, nil
}

// ── markdown ─────────────────────────────────────────────────

// MarkdownParser strips formatting marks and keeps the prose.
type MarkdownParser struct{}

var (
	reMarkdownHeader = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reMarkdownCode   = regexp.MustCompile("```[\\s\\S]*?```")
	reMarkdownInline = regexp.MustCompile("`([^`]+)`")
	reMarkdownLink   = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]+\)`)
	reMarkdownEmph   = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
	reMarkdownHTML   = regexp.MustCompile(`<[^>]+>`)
)

func (p *MarkdownParser) SupportedTypes() []string {
	return []string{".md", ".markdown"}
}

func (p *MarkdownParser) Parse(reader io.Reader, filename string) (*ParseResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	text := string(data)
	text = reMarkdownCode.ReplaceAllStringFunc(text, func(s string) string {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		return strings.TrimSpace(strings.TrimSuffix(s, "```"))
	})
	text = reMarkdownLink.ReplaceAllString(text, "$1")
	text = reMarkdownEmph.ReplaceAllString(text, "$1")
	text = reMarkdownInline.ReplaceAllString(text, "$1")
	text = reMarkdownHeader.ReplaceAllString(text, "")
	text = reMarkdownHTML.ReplaceAllString(text, "")

	return &ParseResult{Content: strings.TrimSpace(cleanExtraNewlines(text))}, nil
}

// ── pdf ──────────────────────────────────────────────────────

type PDFParser struct{}

func (p *PDFParser) SupportedTypes() []string {
	return []string{".pdf"}
}

func (p *PDFParser) Parse(reader io.Reader, filename string) (*ParseResult, error) {
	// the pdf library wants io.ReaderAt + size
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf data: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := r.NumPage()
	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			applog.Warn("pdf page extraction failed", "file", filename, "page", i, "error", err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}

	return &ParseResult{
		Content: strings.TrimSpace(cleanExtraNewlines(sb.String())),
		Pages:   pages,
	}, nil
}

// ── docx ─────────────────────────────────────────────────────

type DOCXParser struct{}

func (p *DOCXParser) SupportedTypes() []string {
	return []string{".docx"}
}

func (p *DOCXParser) Parse(reader io.Reader, filename string) (*ParseResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read docx data: %w", err)
	}

	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	// the library hands back XML; keep the non-empty lines
	var sb strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(r.Editable().GetContent()))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return &ParseResult{Content: strings.TrimSpace(cleanExtraNewlines(sb.String()))}, nil
}

var reMultiNewlines = regexp.MustCompile(`\n{3,}`)

func cleanExtraNewlines(text string) string {
	return reMultiNewlines.ReplaceAllString(text, "\n\n")
}
