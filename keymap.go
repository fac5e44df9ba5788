package bindz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Keymap maps bind names to chords. It is what a KeyListener saves to and
// loads from a keymap file.
type Keymap map[string]Chord

// KeyNamer converts keys to and from the names used in keymap files.
type KeyNamer interface {
	KeyName(k Key) string
	ParseKey(name string) (Key, error)
}

// RuneNamer names printable keys by their character and every other key
// as #<code>.
var RuneNamer KeyNamer = runeNamer{}

type runeNamer struct{}

func (runeNamer) KeyName(k Key) string {
	if k >= 0 && k <= unicode.MaxRune && unicode.IsPrint(rune(k)) && k != '#' && k != ' ' {
		return string(rune(k))
	}
	return "#" + strconv.FormatInt(int64(k), 10)
}

func (runeNamer) ParseKey(name string) (Key, error) {
	if strings.HasPrefix(name, "#") && len(name) > 1 {
		n, err := strconv.ParseInt(name[1:], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
		}
		return Key(n), nil
	}
	if r, size := utf8.DecodeRuneInString(name); r != utf8.RuneError && size == len(name) {
		return Key(r), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// Format is a keymap file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// keymapFile is the on-disk shape. A record without a key is an unbound
// bind.
type keymapFile struct {
	Binds []keymapRecord `json:"binds" yaml:"binds" toml:"binds"`
}

type keymapRecord struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Mods string `json:"mods,omitempty" yaml:"mods,omitempty" toml:"mods,omitempty"`
}

func (km Keymap) pack(namer KeyNamer) keymapFile {
	names := make([]string, 0, len(km))
	for name := range km {
		names = append(names, name)
	}
	sort.Strings(names)

	f := keymapFile{Binds: make([]keymapRecord, 0, len(names))}
	for _, name := range names {
		c := km[name]
		rec := keymapRecord{Name: name}
		if k, ok := c.Key(); ok {
			rec.Key = namer.KeyName(k)
			rec.Mods = c.Mods().String()
		}
		f.Binds = append(f.Binds, rec)
	}
	return f
}

func unpack(f keymapFile, namer KeyNamer) (Keymap, error) {
	km := make(Keymap, len(f.Binds))
	for _, rec := range f.Binds {
		if rec.Name == "" {
			return nil, fmt.Errorf("keymap record without name")
		}
		if rec.Key == "" {
			km[rec.Name] = Unbound
			continue
		}
		k, err := namer.ParseKey(rec.Key)
		if err != nil {
			return nil, fmt.Errorf("bind %q: %w", rec.Name, err)
		}
		mods, err := ParseModMask(rec.Mods)
		if err != nil {
			return nil, fmt.Errorf("bind %q: %w", rec.Name, err)
		}
		km[rec.Name] = On(k, mods)
	}
	return km, nil
}

// EncodeKeymap writes km to w in the given format.
func EncodeKeymap(w io.Writer, format Format, km Keymap, namer KeyNamer) error {
	if namer == nil {
		namer = RuneNamer
	}
	f := km.pack(namer)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// DecodeKeymap reads a keymap in the given format from r.
func DecodeKeymap(r io.Reader, format Format, namer KeyNamer) (Keymap, error) {
	if namer == nil {
		namer = RuneNamer
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var f keymapFile
	switch format {
	case FormatJSON:
		err = json.Unmarshal(b, &f)
	case FormatYAML:
		err = yaml.Unmarshal(b, &f)
	case FormatTOML:
		err = toml.Unmarshal(b, &f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s keymap: %w", format, err)
	}
	return unpack(f, namer)
}

// LoadKeymap reads a keymap file, picking the format from its extension.
func LoadKeymap(path string, namer KeyNamer) (Keymap, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeKeymap(bytes.NewReader(b), format, namer)
}

// SaveKeymap writes km to path, picking the format from its extension.
func SaveKeymap(path string, km Keymap, namer KeyNamer) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeKeymap(&buf, format, km, namer); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadKeymap reads path and applies it to the listener.
func (l *KeyListener) LoadKeymap(path string, namer KeyNamer) error {
	km, err := LoadKeymap(path, namer)
	if err != nil {
		return err
	}
	l.ApplyKeymap(km)
	return nil
}

// SaveKeymap writes the listener's current chords to path.
func (l *KeyListener) SaveKeymap(path string, namer KeyNamer) error {
	return SaveKeymap(path, l.Keymap(), namer)
}
