package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document represents the canonical CV payload.
type Document struct {
	Contact    Contact      `json:"contact"`
	Summary    string       `json:"summary"`
	Skills     []Skill      `json:"skills" validate:"dive"`
	Experience []Experience `json:"experience" validate:"dive"`
	Projects   []Project    `json:"projects" validate:"dive"`
	Education  []Education  `json:"education" validate:"dive"`
}

// Contact captures the name heading and the contact rows under it.
type Contact struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// Skill is one "label: a, b, c" line.
type Skill struct {
	Label string   `json:"label"`
	Items []string `json:"items"`
}

// Experience groups the roles held at one company.
type Experience struct {
	Company        string `json:"company" validate:"required"`
	Roles          []Role `json:"roles" validate:"dive"`
	PageBreakAfter bool   `json:"pageBreakAfter"`
}

// Role is a single position within an Experience entry.
//
// Bullets, when non-empty, are rendered verbatim; otherwise Description is
// split into sentences.
type Role struct {
	Title          string   `json:"title" validate:"required"`
	Period         string   `json:"period"`
	Description    string   `json:"description"`
	Bullets        []string `json:"bullets,omitempty"`
	PageBreakAfter bool     `json:"pageBreakAfter"`
}

// Project represents a notable project.
type Project struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PageBreakAfter bool   `json:"pageBreakAfter"`
}

// Education represents an education entry.
type Education struct {
	Degree         string   `json:"degree"`
	Institution    string   `json:"institution" validate:"required"`
	Period         string   `json:"period"`
	Focus          []string `json:"focus"`
	PageBreakAfter bool     `json:"pageBreakAfter"`
}

// Empty returns a well-formed document with every field present and empty.
func Empty() Document {
	var doc Document
	doc.Normalize()
	return doc
}

// Normalize replaces nil lists with empty ones so the JSON form always carries
// arrays instead of nulls.
func (d *Document) Normalize() {
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	for i := range d.Skills {
		if d.Skills[i].Items == nil {
			d.Skills[i].Items = []string{}
		}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	for i := range d.Experience {
		if d.Experience[i].Roles == nil {
			d.Experience[i].Roles = []Role{}
		}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	for i := range d.Education {
		if d.Education[i].Focus == nil {
			d.Education[i].Focus = []string{}
		}
	}
}

// Decode reads a JSON document. Shape errors (bad syntax, wrong field types)
// are reported as ErrMalformed.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	doc.Normalize()
	return doc, nil
}

// DecodeBytes is Decode for an in-memory payload.
func DecodeBytes(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	doc.Normalize()
	return doc, nil
}

// Encode serializes the document without HTML escaping so stored snapshots
// keep characters like '<' and '&' readable.
func Encode(doc Document, indent bool) ([]byte, error) {
	doc.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if indent {
		return buf.Bytes(), nil
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
