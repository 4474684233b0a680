// Package xmldoc reads an XML document into a plain element tree and looks
// children up with explicit cardinality.
package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Element struct {
	Name     string
	Children []*Element
	text     strings.Builder
}

// Text returns the character data directly inside the element, trimmed.
func (e *Element) Text() string {
	return strings.TrimSpace(e.text.String())
}

// Path is the chain of element names from the root, for messages.
type Path []string

func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}

var ErrEmptyDocument = errors.New("document has no root element")

// Parse reads a whole document and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("second root element <%s>", el.Name)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			} else if strings.TrimSpace(string(t)) != "" {
				return nil, errors.New("text outside the root element")
			}
		}
	}
	if root == nil {
		return nil, ErrEmptyDocument
	}
	return root, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// All returns the children called name, in document order.
func (e *Element) All(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// CardinalityError reports a child found a number of times its parent does
// not allow.
type CardinalityError struct {
	Parent string
	Name   string
	Found  int
}

func (e *CardinalityError) Error() string {
	if e.Found == 0 {
		return fmt.Sprintf("<%s> is missing <%s>", e.Parent, e.Name)
	}
	return fmt.Sprintf("<%s> has %d <%s> elements, at most one allowed", e.Parent, e.Found, e.Name)
}

// One returns the single child called name.
func (e *Element) One(name string) (*Element, error) {
	c, err := e.Optional(name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &CardinalityError{Parent: e.Name, Name: name}
	}
	return c, nil
}

// Optional returns the child called name, or nil. More than one is an
// error.
func (e *Element) Optional(name string) (*Element, error) {
	all := e.All(name)
	switch len(all) {
	case 0:
		return nil, nil
	case 1:
		return all[0], nil
	default:
		return nil, &CardinalityError{Parent: e.Name, Name: name, Found: len(all)}
	}
}

// OneText is One followed by Text.
func (e *Element) OneText(name string) (string, error) {
	c, err := e.One(name)
	if err != nil {
		return "", err
	}
	return c.Text(), nil
}

// OptionalText is Optional followed by Text. ok is false when the child is
// absent.
func (e *Element) OptionalText(name string) (text string, ok bool, err error) {
	c, err := e.Optional(name)
	if err != nil || c == nil {
		return "", false, err
	}
	return c.Text(), true, nil
}
