// Package docxtpl renders zip-packaged word-processing templates. Merge
// fields use the {name} syntax; repeating blocks are delimited by {#name}
// and {/name} tags and, when the tags sit inside table rows, the enclosing
// rows are duplicated once per item. Every other entry of the package is
// carried over untouched.
package docxtpl

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const documentEntry = "word/document.xml"

// Template is a parsed word-processing package ready for rendering.
type Template struct {
	entries []entry
	docIdx  int
}

type entry struct {
	name string
	data []byte
}

var (
	// A merge tag, possibly interrupted by XML run markup when the editor
	// split the placeholder text across runs.
	splitTagRe = regexp.MustCompile(`\{(?:[^{}<>]|<[^<>]*>)*\}`)
	innerXMLRe = regexp.MustCompile(`<[^<>]*>`)
	tagRe      = regexp.MustCompile(`\{([^{}]*)\}`)
	loopOpenRe = regexp.MustCompile(`\{#([A-Za-z0-9_]+)\}`)
)

// Parse reads a template from its zip byte form.
func Parse(raw []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("docxtpl: open package: %w", err)
	}

	t := &Template{docIdx: -1}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("docxtpl: open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docxtpl: read entry %s: %w", f.Name, err)
		}
		if f.Name == documentEntry {
			t.docIdx = len(t.entries)
		}
		t.entries = append(t.entries, entry{name: f.Name, data: data})
	}
	if t.docIdx < 0 {
		return nil, fmt.Errorf("docxtpl: package has no %s", documentEntry)
	}
	return t, nil
}

// Render substitutes data into the document and returns a new package.
// Scalar values bind to {name} tags; []map[string]any values bind to
// {#name}...{/name} blocks. Missing fields render empty.
func (t *Template) Render(data map[string]any) ([]byte, error) {
	doc := coalesceTags(string(t.entries[t.docIdx].data))

	doc, err := expandLoops(doc, data)
	if err != nil {
		return nil, err
	}
	doc = substitute(doc, func(key string) (string, bool) {
		v, ok := data[key]
		if !ok {
			return "", false
		}
		return stringify(v), true
	})

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for i, e := range t.entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("docxtpl: write entry %s: %w", e.name, err)
		}
		payload := e.data
		if i == t.docIdx {
			payload = []byte(doc)
		}
		if _, err := w.Write(payload); err != nil {
			return nil, fmt.Errorf("docxtpl: write entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docxtpl: close package: %w", err)
	}
	return buf.Bytes(), nil
}

// coalesceTags repairs merge tags the editor split across runs by dropping
// the run markup between the braces. Only markup strictly inside a balanced
// {...} span is touched.
func coalesceTags(doc string) string {
	return splitTagRe.ReplaceAllStringFunc(doc, func(m string) string {
		if !strings.Contains(m, "<") {
			return m
		}
		return innerXMLRe.ReplaceAllString(m, "")
	})
}

// expandLoops replaces every {#name}...{/name} block. When both tags sit
// inside table rows the whole row span repeats per item, which is how a
// template lays out one printable line per record.
func expandLoops(doc string, data map[string]any) (string, error) {
	for {
		loc := loopOpenRe.FindStringSubmatchIndex(doc)
		if loc == nil {
			return doc, nil
		}
		name := doc[loc[2]:loc[3]]
		openStart, openEnd := loc[0], loc[1]

		closeTag := "{/" + name + "}"
		rel := strings.Index(doc[openEnd:], closeTag)
		if rel < 0 {
			return "", fmt.Errorf("docxtpl: unclosed block {#%s}", name)
		}
		closeStart := openEnd + rel
		closeEnd := closeStart + len(closeTag)

		items, err := itemsFor(data, name)
		if err != nil {
			return "", err
		}

		blockStart, blockEnd := openStart, closeEnd
		body := doc[openEnd:closeStart]

		// Row expansion: the open tag's enclosing <w:tr> through the close
		// tag's enclosing </w:tr> become the repeated unit.
		if rs := strings.LastIndex(doc[:openStart], "<w:tr"); rs >= 0 &&
			!strings.Contains(doc[rs:openStart], "</w:tr>") {
			if re := strings.Index(doc[closeEnd:], "</w:tr>"); re >= 0 &&
				!strings.Contains(doc[closeEnd:closeEnd+re], "<w:tr") {
				blockStart = rs
				blockEnd = closeEnd + re + len("</w:tr>")
				body = doc[blockStart:openStart] + body + doc[closeEnd:blockEnd]
			}
		}

		var sb strings.Builder
		for _, item := range items {
			sb.WriteString(substitute(body, func(key string) (string, bool) {
				v, ok := item[key]
				if !ok {
					return "", false
				}
				return stringify(v), true
			}))
		}
		doc = doc[:blockStart] + sb.String() + doc[blockEnd:]
	}
}

func itemsFor(data map[string]any, name string) ([]map[string]any, error) {
	v, ok := data[name]
	if !ok {
		return nil, nil
	}
	switch items := v.(type) {
	case []map[string]any:
		return items, nil
	case []map[string]string:
		out := make([]map[string]any, len(items))
		for i, m := range items {
			out[i] = make(map[string]any, len(m))
			for k, s := range m {
				out[i][k] = s
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("docxtpl: block {#%s} wants a list, got %T", name, v)
	}
}

// substitute resolves remaining {key} tags through lookup. Unresolved tags
// render empty so a partially bound template degrades to blanks instead of
// leaking tag syntax into the document.
func substitute(s string, lookup func(string) (string, bool)) string {
	return tagRe.ReplaceAllStringFunc(s, func(m string) string {
		key := m[1 : len(m)-1]
		if strings.HasPrefix(key, "#") || strings.HasPrefix(key, "/") {
			return m
		}
		v, _ := lookup(key)
		return escapeXML(v)
	})
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
