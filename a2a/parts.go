// Copyright 2026 The a2acall Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package a2a

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentParts is an array of content parts forming a message body or an artifact.
type ContentParts []Part

// MarshalJSON implements json.Marshaler. A nil slice marshals as [] because
// the remote agent rejects a null parts array.
func (j ContentParts) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Part(j))
}

// UnmarshalJSON implements json.Unmarshaler using the per-part "kind" discriminator.
func (j *ContentParts) UnmarshalJSON(b []byte) error {
	type typedPart struct {
		Kind string `json:"kind"`
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}

	result := make([]Part, len(arr))
	for i, rawMsg := range arr {
		var tp typedPart
		if err := json.Unmarshal(rawMsg, &tp); err != nil {
			return err
		}
		switch tp.Kind {
		case "text":
			var part TextPart
			if err := json.Unmarshal(rawMsg, &part); err != nil {
				return err
			}
			result[i] = part
		case "data":
			var part DataPart
			if err := json.Unmarshal(rawMsg, &part); err != nil {
				return err
			}
			result[i] = part
		case "file":
			var part FilePart
			if err := json.Unmarshal(rawMsg, &part); err != nil {
				return err
			}
			result[i] = part
		default:
			return fmt.Errorf("unknown part kind %q", tp.Kind)
		}
	}

	*j = result
	return nil
}

// Text joins the text content of all text parts.
func (j ContentParts) Text() string {
	var texts []string
	for _, p := range j {
		if tp, ok := p.(TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// Part is a sealed discriminated union of message/artifact content types.
type Part interface {
	isPart()
}

func (TextPart) isPart() {}
func (FilePart) isPart() {}
func (DataPart) isPart() {}

// NewTextPart creates a Part carrying text.
func NewTextPart(text string) TextPart {
	return TextPart{Text: text}
}

// TextPart is a content part carrying text.
type TextPart struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON adds the "kind":"text" discriminator.
func (p TextPart) MarshalJSON() ([]byte, error) {
	type wrapped TextPart
	type withKind struct {
		Kind string `json:"kind"`
		wrapped
	}
	return json.Marshal(withKind{Kind: "text", wrapped: wrapped(p)})
}

// DataPart is a content part carrying structured data.
type DataPart struct {
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON adds the "kind":"data" discriminator.
func (p DataPart) MarshalJSON() ([]byte, error) {
	type wrapped DataPart
	type withKind struct {
		Kind string `json:"kind"`
		wrapped
	}
	return json.Marshal(withKind{Kind: "data", wrapped: wrapped(p)})
}

// FilePart is a content part referencing a file by URI or inline bytes.
type FilePart struct {
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FileContent carries either a URI or base64 bytes, never both.
type FileContent struct {
	MimeType string `json:"mimeType,omitempty"`
	Name     string `json:"name,omitempty"`
	URI      string `json:"uri,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
}

// MarshalJSON adds the "kind":"file" discriminator.
func (p FilePart) MarshalJSON() ([]byte, error) {
	type wrapped FilePart
	type withKind struct {
		Kind string `json:"kind"`
		wrapped
	}
	return json.Marshal(withKind{Kind: "file", wrapped: wrapped(p)})
}

// UnmarshalJSON validates the URI/bytes exclusivity invariant.
func (p *FilePart) UnmarshalJSON(b []byte) error {
	type partJSON struct {
		File     FileContent    `json:"file"`
		Metadata map[string]any `json:"metadata"`
	}
	var decoded partJSON
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}

	if len(decoded.File.Bytes) == 0 && len(decoded.File.URI) == 0 {
		return fmt.Errorf("invalid file part: either bytes or uri must be set")
	}
	if len(decoded.File.Bytes) > 0 && len(decoded.File.URI) > 0 {
		return fmt.Errorf("invalid file part: bytes and uri cannot be set at the same time")
	}

	*p = FilePart{File: decoded.File, Metadata: decoded.Metadata}
	return nil
}
