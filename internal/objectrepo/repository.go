// File: internal/objectrepo/repository.go
// Description: File-backed object repository. Each named test object is an
// XML file under "<project>/Object Repository" holding its selector catalog.

package objectrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
)

// RepositoryDirName is the project subdirectory holding object files.
const RepositoryDirName = "Object Repository"

const objectFileExt = ".rs"

// FileRepository implements schemas.ObjectRepository over per-object XML
// files. Writes serialize behind a mutex since the healing engine may
// auto-update objects from concurrent healing calls.
type FileRepository struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a repository rooted at the project's object directory.
func New(projectPath string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{
		dir:    filepath.Join(projectPath, RepositoryDirName),
		logger: logger.Named("objectrepo"),
	}
}

// GetLocator reads the object's selected locator from its file.
func (r *FileRepository) GetLocator(objectName string) (schemas.Locator, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(r.objectFile(objectName)); err != nil {
		return schemas.Locator{}, schemas.ErrObjectNotFound
	}

	root := doc.SelectElement("WebElementEntity")
	if root == nil {
		return schemas.Locator{}, fmt.Errorf("object %q: malformed entity file", objectName)
	}

	kind := schemas.SelectorKind(childText(root, "selectorMethod"))
	value := ""
	for _, entry := range root.SelectElements("selectorCollection") {
		for _, pair := range entry.SelectElements("entry") {
			if childText(pair, "key") == string(kind) {
				value = childText(pair, "value")
			}
		}
	}
	if !kind.Valid() || value == "" {
		return schemas.Locator{}, fmt.Errorf("object %q: no usable selector", objectName)
	}
	return schemas.NewLocator(kind, value), nil
}

// SetLocator replaces the object's selected locator, rewriting the file.
// Returns ErrObjectNotFound when the object file does not exist.
func (r *FileRepository) SetLocator(objectName string, locator schemas.Locator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.objectFile(objectName)
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return schemas.ErrObjectNotFound
	}
	root := doc.SelectElement("WebElementEntity")
	if root == nil {
		return fmt.Errorf("object %q: malformed entity file", objectName)
	}

	setChildText(root, "selectorMethod", string(locator.Kind))

	collection := root.SelectElement("selectorCollection")
	if collection == nil {
		collection = root.CreateElement("selectorCollection")
	}
	var target *etree.Element
	for _, pair := range collection.SelectElements("entry") {
		if childText(pair, "key") == string(locator.Kind) {
			target = pair
		}
	}
	if target == nil {
		target = collection.CreateElement("entry")
		target.CreateElement("key").SetText(string(locator.Kind))
		target.CreateElement("value")
	}
	setChildText(target, "value", locator.Value)

	doc.Indent(3)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("writing object %q: %w", objectName, err)
	}
	r.logger.Info("Updated object locator",
		zap.String("object", objectName),
		zap.String("kind", string(locator.Kind)),
	)
	return nil
}

// Create writes a fresh object file with a single selector. Used by the CLI
// when scaffolding objects and by tests.
func (r *FileRepository) Create(objectName string, locator schemas.Locator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.objectFile(objectName)), 0o755); err != nil {
		return fmt.Errorf("creating object repository dir: %w", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("WebElementEntity")
	root.CreateElement("name").SetText(filepath.Base(objectName))
	root.CreateElement("selectorMethod").SetText(string(locator.Kind))
	collection := root.CreateElement("selectorCollection")
	entry := collection.CreateElement("entry")
	entry.CreateElement("key").SetText(string(locator.Kind))
	entry.CreateElement("value").SetText(locator.Value)

	doc.Indent(3)
	return doc.WriteToFile(r.objectFile(objectName))
}

func (r *FileRepository) objectFile(objectName string) string {
	// Object names may use either separator style; normalize to the host's.
	name := strings.ReplaceAll(objectName, "\\", "/")
	return filepath.Join(r.dir, filepath.FromSlash(name)+objectFileExt)
}

func childText(parent *etree.Element, tag string) string {
	if child := parent.SelectElement(tag); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

func setChildText(parent *etree.Element, tag, text string) {
	child := parent.SelectElement(tag)
	if child == nil {
		child = parent.CreateElement(tag)
	}
	child.SetText(text)
}
