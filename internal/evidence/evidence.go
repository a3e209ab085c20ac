package evidence

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupported = errors.New("unsupported evidence file")
	ErrMalformed   = errors.New("malformed evidence file")
)

// Attachment is a binary file handed to the generator as-is.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Evidence is lesson material supplied alongside the roster.
type Evidence struct {
	Text        string
	Attachments []Attachment
}

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Load turns one uploaded file into Evidence. Word documents contribute their
// paragraph text; PDFs and images become attachments.
func Load(name string, data []byte) (Evidence, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".docx" {
		text, err := docxText(data)
		if err != nil {
			return Evidence{}, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		return Evidence{Text: text}, nil
	}
	if mt, ok := mimeTypes[ext]; ok {
		return Evidence{Attachments: []Attachment{{Name: name, MIMEType: mt, Data: data}}}, nil
	}
	return Evidence{}, fmt.Errorf("%w: %s", ErrUnsupported, name)
}

// Merge concatenates evidence in argument order.
func Merge(items ...Evidence) Evidence {
	var out Evidence
	var texts []string
	for _, e := range items {
		if strings.TrimSpace(e.Text) != "" {
			texts = append(texts, e.Text)
		}
		out.Attachments = append(out.Attachments, e.Attachments...)
	}
	out.Text = strings.Join(texts, "\n")
	return out
}

// docxText pulls the text of every w:p paragraph out of word/document.xml.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return paragraphs(rc)
	}
	return "", errors.New("word/document.xml not found")
}

// paragraphs collects w:p text. Paragraphs nest inside text boxes, so open
// paragraphs are kept on a stack and an inner one is emitted on its own.
func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		paras  []string
		open   []*strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, new(strings.Builder))
			case "t":
				inText = true
			case "tab":
				if len(open) > 0 {
					open[len(open)-1].WriteString("\t")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if len(open) > 0 {
					paras = append(paras, open[len(open)-1].String())
					open = open[:len(open)-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if len(open) > 0 && inText {
				open[len(open)-1].Write(t)
			}
		}
	}
	return strings.Join(paras, "\n"), nil
}
