package definition

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/instrument-sim/internal/simulation"
)

// SpecVersion is the definition format version this loader supports.
const SpecVersion = "1.1"

// Logger defines the logging interface used by the Loader.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// cacheKey identifies a parsed document.
type cacheKey struct {
	name    string
	bundled bool
}

// Loader parses definition documents and compiles them into Sets.
//
// Parsed documents and compiled definitions are cached, so a device
// referenced by several resources or several documents is compiled
// once and shared read-only.
type Loader struct {
	docs        map[cacheKey]*document
	definitions map[string]*simulation.Definition
	logger      Logger
}

// NewLoader creates a loader with empty caches.
func NewLoader() *Loader {
	return &Loader{
		docs:        make(map[cacheKey]*document),
		definitions: make(map[string]*simulation.Definition),
	}
}

// SetLogger sets the logger for the loader.
func (l *Loader) SetLogger(logger Logger) {
	l.logger = logger
}

func (l *Loader) log() Logger {
	if l.logger == nil {
		return noopLogger{}
	}
	return l.logger
}

// Load parses a filesystem document and resolves its resource
// bindings into a Set. Referenced documents are resolved relative to
// the document's own directory.
func (l *Loader) Load(path string) (*Set, error) {
	set := newSet()
	if err := l.loadInto(set, path, false); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadBundled parses a document bundled into the binary. Bundled
// documents may only reference other bundled documents.
func (l *Loader) LoadBundled(name string) (*Set, error) {
	set := newSet()
	if err := l.loadInto(set, name, true); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadFiles merges several filesystem documents into one Set.
// Bindings must not collide; a resource declared twice fails with
// ErrDuplicateResource.
func (l *Loader) LoadFiles(paths []string) (*Set, error) {
	set := newSet()
	for _, path := range paths {
		if err := l.loadInto(set, path, false); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// loadInto parses one top-level document and adds its bindings to the
// set.
func (l *Loader) loadInto(set *Set, name string, bundled bool) error {
	doc, err := l.parseDocument(name, bundled)
	if err != nil {
		return err
	}

	// Deterministic binding order; YAML mappings carry none.
	resources := make([]string, 0, len(doc.Resources))
	for id := range doc.Resources {
		resources = append(resources, id)
	}
	sort.Strings(resources)

	for _, id := range resources {
		res := doc.Resources[id]
		if res.Device == "" {
			return fmt.Errorf("%w: resource %q names no device", ErrFormat, id)
		}

		def, err := l.compileBinding(name, bundled, doc, res)
		if err != nil {
			return fmt.Errorf("resource %q: %w", id, err)
		}
		if err := set.add(id, def); err != nil {
			return err
		}
		l.log().Debug("resource bound", "resource", id, "device", def.Name())
	}

	return nil
}

// compileBinding locates the device dictionary for a binding, follows
// its bases and compiles it.
func (l *Loader) compileBinding(docName string, docBundled bool, doc *document, res resourceSpec) (*simulation.Definition, error) {
	deviceDoc := doc
	deviceDocName := docName
	deviceBundled := docBundled

	if res.Filename != "" || (res.Bundled && !docBundled) {
		refName, refBundled, err := l.resolveReference(docName, docBundled, res.Filename, res.Bundled)
		if err != nil {
			return nil, err
		}
		deviceDoc, err = l.parseDocument(refName, refBundled)
		if err != nil {
			return nil, err
		}
		deviceDocName, deviceBundled = refName, refBundled
	}

	spec, ok := deviceDoc.Devices[res.Device]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, res.Device)
	}

	defKey := fmt.Sprintf("%s|%t|%s", deviceDocName, deviceBundled, res.Device)
	if def, ok := l.definitions[defKey]; ok {
		return def, nil
	}

	merged, err := l.applyBases(deviceDocName, deviceBundled, spec, nil)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", res.Device, err)
	}

	def, err := compileDevice(res.Device, merged)
	if err != nil {
		return nil, err
	}

	l.definitions[defKey] = def
	return def, nil
}

// applyBases merges base device definitions beneath a device spec,
// nearest first. The seen set guards against reference cycles.
func (l *Loader) applyBases(docName string, docBundled bool, spec *deviceSpec, seen map[string]bool) (*deviceSpec, error) {
	if len(spec.Bases) == 0 {
		return spec, nil
	}
	if seen == nil {
		seen = make(map[string]bool)
	}

	merged := cloneDeviceSpec(spec)
	for _, ref := range spec.Bases {
		if ref.Device == "" {
			return nil, fmt.Errorf("%w: base reference names no device", ErrFormat)
		}

		baseDocName, baseBundled := docName, docBundled
		baseDoc, err := l.parseDocument(docName, docBundled)
		if err != nil {
			return nil, err
		}
		if ref.Filename != "" || (ref.Bundled && !docBundled) {
			baseDocName, baseBundled, err = l.resolveReference(docName, docBundled, ref.Filename, ref.Bundled)
			if err != nil {
				return nil, err
			}
			baseDoc, err = l.parseDocument(baseDocName, baseBundled)
			if err != nil {
				return nil, err
			}
		}

		key := fmt.Sprintf("%s|%t|%s", baseDocName, baseBundled, ref.Device)
		if seen[key] {
			return nil, fmt.Errorf("%w: base cycle through %q", ErrFormat, ref.Device)
		}
		seen[key] = true

		base, ok := baseDoc.Devices[ref.Device]
		if !ok {
			return nil, fmt.Errorf("%w: base %q", ErrUnknownDevice, ref.Device)
		}
		base, err = l.applyBases(baseDocName, baseBundled, base, seen)
		if err != nil {
			return nil, err
		}

		mergeDeviceSpec(merged, base)
	}

	return merged, nil
}

// cloneDeviceSpec copies a device spec so base merging never writes
// into the cached document it came from. Entry values are immutable
// once parsed, so a shallow copy of the containers is enough.
func cloneDeviceSpec(spec *deviceSpec) *deviceSpec {
	cpy := *spec
	if spec.EOM != nil {
		cpy.EOM = make(map[string]eomSpec, len(spec.EOM))
		for class, pair := range spec.EOM {
			cpy.EOM[class] = pair
		}
	}
	cpy.Dialogues = append([]dialogueSpec(nil), spec.Dialogues...)
	cpy.Properties.items = append([]namedProperty(nil), spec.Properties.items...)
	cpy.Channels.items = append([]namedChannel(nil), spec.Channels.items...)
	return &cpy
}

// resolveReference turns a filename/bundled pair on a reference into
// the document name to parse. Filesystem references resolve relative
// to the referring document.
func (l *Loader) resolveReference(parentName string, parentBundled bool, filename string, bundled bool) (string, bool, error) {
	if parentBundled && !bundled {
		return "", false, ErrBundledEscape
	}
	if filename == "" {
		// "bundled: true" with no filename targets the bundled copy of
		// the referring document's name.
		filename = filepath.Base(parentName)
	}
	if bundled {
		return filename, true, nil
	}
	return filepath.Join(filepath.Dir(parentName), filename), false, nil
}

// parseDocument reads, parses and version-checks one document,
// caching the result.
func (l *Loader) parseDocument(name string, bundled bool) (*document, error) {
	key := cacheKey{name: name, bundled: bundled}
	if doc, ok := l.docs[key]; ok {
		return doc, nil
	}

	var resolver Resolver
	if bundled {
		resolver = bundledResolver{}
	} else {
		resolver = newDirResolver(".")
	}

	data, err := resolver.Resolve(name)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, name, err)
	}

	if err := checkVersion(doc.Spec); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	l.docs[key] = &doc
	return &doc, nil
}

// checkVersion validates a document's spec version tag against
// SpecVersion. Majors must match; the document minor may not exceed
// the supported minor.
func checkVersion(tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: document specifies no spec version", ErrSpecVersion)
	}

	major, minor, err := parseVersion(tag)
	if err != nil {
		return err
	}
	supMajor, supMinor, _ := parseVersion(SpecVersion)

	if major != supMajor || minor > supMinor {
		return fmt.Errorf("%w: document is %s, supported is %s", ErrSpecVersion, tag, SpecVersion)
	}
	return nil
}

// parseVersion splits an "X.Y" version tag.
func parseVersion(tag string) (major, minor int, err error) {
	parts := strings.Split(tag, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected 'X.Y', found %q", ErrSpecVersion, tag)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: expected 'X.Y', found %q", ErrSpecVersion, tag)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: expected 'X.Y', found %q", ErrSpecVersion, tag)
	}
	return major, minor, nil
}

// mergeDeviceSpec fills the gaps of dst with the contents of base.
// The referring device always wins: base dialogues, properties and
// channels are appended only when dst does not declare them.
func mergeDeviceSpec(dst *deviceSpec, base *deviceSpec) {
	if dst.Delimiter == "" {
		dst.Delimiter = base.Delimiter
	}
	if dst.Error == nil {
		dst.Error = base.Error
	}

	if len(base.EOM) > 0 && dst.EOM == nil {
		dst.EOM = make(map[string]eomSpec, len(base.EOM))
	}
	for class, pair := range base.EOM {
		if _, ok := dst.EOM[class]; !ok {
			dst.EOM[class] = pair
		}
	}

	declared := make(map[string]bool, len(dst.Dialogues))
	for _, dia := range dst.Dialogues {
		declared[dia.Q] = true
	}
	for _, dia := range base.Dialogues {
		if !declared[dia.Q] {
			dst.Dialogues = append(dst.Dialogues, dia)
		}
	}

	for _, item := range base.Properties.items {
		if !dst.Properties.has(item.name) {
			dst.Properties.items = append(dst.Properties.items, item)
		}
	}
	for _, item := range base.Channels.items {
		if !dst.Channels.has(item.name) {
			dst.Channels.items = append(dst.Channels.items, item)
		}
	}
}
