package a2a

import (
	"encoding/base64"
	"strings"
)

/*
Part is a discriminated union over Text, File and Data parts. All optional
fields live in a single struct and Kind says which one is populated.
*/
type Part struct {
	Kind PartKind `json:"kind"`

	Text string         `json:"text,omitempty"`
	File *FilePart      `json:"file,omitempty"`
	Data map[string]any `json:"data,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// PartKind is the discriminator for a Part union.
type PartKind string

const (
	PartKindText PartKind = "text"
	PartKindFile PartKind = "file"
	PartKindData PartKind = "data"
)

type FilePart struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	URI      string `json:"uri,omitempty"`
}

func NewTextPart(text string) Part {
	return Part{
		Kind: PartKindText,
		Text: text,
	}
}

func NewFilePart(name string, mimeType string, data []byte) Part {
	return Part{
		Kind: PartKindFile,
		File: &FilePart{
			Name:     name,
			MimeType: mimeType,
			Bytes:    base64.StdEncoding.EncodeToString(data),
		},
	}
}

/*
PartsText joins the text of every part that carries any with a single space
and trims the result. File and data parts contribute nothing.
*/
func PartsText(parts []Part) string {
	return joinText(parts, " ")
}

func joinText(parts []Part, sep string) string {
	texts := make([]string, 0, len(parts))

	for _, part := range parts {
		if part.Text == "" {
			continue
		}

		texts = append(texts, part.Text)
	}

	return strings.TrimSpace(strings.Join(texts, sep))
}
