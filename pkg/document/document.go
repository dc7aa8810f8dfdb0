// Package document reads declarative surface descriptions from YAML and turns
// them into shadow trees.
//
// A document names one surface and a tree of elements. Every element carries
// a component name, a tag that identifies its family across documents, and a
// flat property bag handed to the component's prop parser unchanged:
//
//	version: v1.0.0
//	surface: 1
//	root:
//	  props: {padding: 4}
//	  children:
//	    - component: View
//	      tag: 2
//	      props: {height: 10, backgroundColor: red}
package document

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/shadow/pkg/errors"
)

// SchemaVersion is the newest document version this package reads.
const SchemaVersion = "v1.0.0"

// RootComponent is the component of a root element without one.
const RootComponent = "RootView"

// Document describes one surface.
type Document struct {
	Version string  `yaml:"version"`
	Surface int32   `yaml:"surface,omitempty"`
	Root    Element `yaml:"root"`
}

// Element is one node of a document.
type Element struct {
	Component string         `yaml:"component,omitempty"`
	Tag       int32          `yaml:"tag,omitempty"`
	Props     map[string]any `yaml:"props,omitempty"`
	Children  []Element      `yaml:"children,omitempty"`
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("document.Load", errors.KindConfig, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a document. A missing surface defaults to 1
// and a root without a component to RootComponent.
func Parse(data []byte) (*Document, error) {
	const op = "document.Parse"
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New(op, errors.KindConfig, err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, errors.New(op, errors.KindConfig, err)
	}
	if doc.Surface == 0 {
		doc.Surface = 1
	}
	if doc.Surface < 0 {
		return nil, errors.Newf(op, errors.KindConfig, "surface %d must be positive", doc.Surface)
	}
	if doc.Root.Component == "" {
		doc.Root.Component = RootComponent
	}
	if doc.Root.Tag != 0 && doc.Root.Tag != doc.Surface {
		return nil, errors.Newf(op, errors.KindConfig, "root tag %d must equal surface %d", doc.Root.Tag, doc.Surface)
	}
	doc.Root.Tag = doc.Surface

	seen := map[int32]string{doc.Surface: "root"}
	if err := validate(doc.Root.Children, "root", seen); err != nil {
		return nil, errors.New(op, errors.KindConfig, err)
	}
	return &doc, nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("missing version")
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid version %q", v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return fmt.Errorf("unsupported major version %s (want %s)", semver.Major(v), semver.Major(SchemaVersion))
	}
	if semver.Compare(v, SchemaVersion) > 0 {
		return fmt.Errorf("version %s is newer than %s", v, SchemaVersion)
	}
	return nil
}

func validate(children []Element, parent string, seen map[int32]string) error {
	for i, el := range children {
		path := fmt.Sprintf("%s.children[%d]", parent, i)
		if el.Component == "" {
			return fmt.Errorf("%s: missing component", path)
		}
		if el.Tag <= 0 {
			return fmt.Errorf("%s: tag must be positive", path)
		}
		if prev, dup := seen[el.Tag]; dup {
			return fmt.Errorf("%s: tag %d already used by %s", path, el.Tag, prev)
		}
		seen[el.Tag] = path
		if err := validate(el.Children, path, seen); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes doc as YAML.
func Marshal(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.New("document.Marshal", errors.KindConfig, err)
	}
	return data, nil
}
