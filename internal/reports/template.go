package reports

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

var (
	paragraphRe   = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	textNodeRe    = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	placeholderRe = regexp.MustCompile(`\{(%?)([^{}]*)\}`)
)

// Template is a .docx whose placeholders were normalized and indexed once.
type Template struct {
	Data   []byte
	Text   []string
	Images []string
	// Errors lists malformed placeholders found while indexing.
	Errors []string
}

func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

// prepareTemplate rewrites the document, header and footer parts so that every
// placeholder sits in a single text node, and collects the placeholder names.
func prepareTemplate(raw []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	text := map[string]struct{}{}
	images := map[string]struct{}{}
	var problems []string
	sawDocument := false

	for _, f := range zr.File {
		body, err := readZipFile(f)
		if err != nil {
			return nil, err
		}

		if isTextPart(f.Name) {
			if f.Name == "word/document.xml" {
				sawDocument = true
			}
			xml := normalizeRuns(string(body))
			for _, p := range scanPlaceholders(xml) {
				switch {
				case p.problem != "":
					problems = append(problems, f.Name+": "+p.problem)
				case p.image && f.Name != "word/document.xml":
					problems = append(problems, fmt.Sprintf("%s: image placeholder {%%%s} is only supported in the document body", f.Name, p.name))
				case p.image:
					images[p.name] = struct{}{}
				default:
					text[p.name] = struct{}{}
				}
			}
			body = []byte(xml)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if !sawDocument {
		return nil, fmt.Errorf("open template: word/document.xml missing")
	}

	return &Template{
		Data:   buf.Bytes(),
		Text:   sortedKeys(text),
		Images: sortedKeys(images),
		Errors: problems,
	}, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// normalizeRuns merges text nodes of a paragraph while a "{" is still open, so a
// placeholder Word split across runs ends up in the first run's text node.
func normalizeRuns(xml string) string {
	xml = paragraphRe.ReplaceAllStringFunc(xml, normalizeParagraph)

	// "{ name }" and "{name}" address the same value
	return textNodeRe.ReplaceAllStringFunc(xml, func(node string) string {
		return placeholderRe.ReplaceAllStringFunc(node, func(tok string) string {
			m := placeholderRe.FindStringSubmatch(tok)
			return "{" + m[1] + strings.TrimSpace(m[2]) + "}"
		})
	})
}

func normalizeParagraph(p string) string {
	locs := textNodeRe.FindAllStringSubmatchIndex(p, -1)
	if len(locs) < 2 {
		return p
	}

	texts := make([]string, len(locs))
	for i, loc := range locs {
		texts[i] = p[loc[2]:loc[3]]
	}

	changed := make([]bool, len(locs))
	for i := 0; i < len(texts); i++ {
		if !unclosed(texts[i]) {
			continue
		}
		for j := i + 1; j < len(texts) && unclosed(texts[i]); j++ {
			texts[i] += texts[j]
			texts[j] = ""
			changed[i], changed[j] = true, true
		}
	}

	// rebuild back to front so earlier offsets stay valid
	out := p
	for i := len(locs) - 1; i >= 0; i-- {
		if !changed[i] {
			continue
		}
		node := `<w:t xml:space="preserve">` + texts[i] + `</w:t>`
		out = out[:locs[i][0]] + node + out[locs[i][1]:]
	}
	return out
}

// unclosed reports whether s ends inside a "{...".
func unclosed(s string) bool {
	open := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			open = true
		case '}':
			open = false
		}
	}
	return open
}

type placeholder struct {
	name    string
	image   bool
	problem string
}

func scanPlaceholders(xml string) []placeholder {
	var out []placeholder

	for _, m := range textNodeRe.FindAllStringSubmatch(xml, -1) {
		t := m[1]
		for _, pm := range placeholderRe.FindAllStringSubmatch(t, -1) {
			name := strings.TrimSpace(pm[2])
			switch {
			case name == "":
				out = append(out, placeholder{problem: fmt.Sprintf("empty placeholder %q", pm[0])})
			default:
				out = append(out, placeholder{name: name, image: pm[1] == "%"})
			}
		}
		if unclosed(t) {
			out = append(out, placeholder{problem: fmt.Sprintf("unclosed placeholder in %q", snippet(t))})
		}
	}
	return out
}

func snippet(s string) string {
	if i := strings.LastIndex(s, "{"); i >= 0 {
		s = s[i:]
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
