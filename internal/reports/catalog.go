// Package reports fills Word (.docx) templates with flattened form data.
package reports

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

var ErrUnknownKind = errors.New("unknown report kind")

// UploadSource marks image slots that are filled from uploaded files, in slot order.
const UploadSource = "upload"

type ImageSlot struct {
	Name     string `toml:"name"`
	WidthPx  int    `toml:"width_px"`
	HeightPx int    `toml:"height_px"`
	Source   string `toml:"source"`
}

type Kind struct {
	Name           string      `toml:"-"`
	Template       string      `toml:"template"`
	FilenamePrefix string      `toml:"filename_prefix"`
	TitleField     string      `toml:"title_field"`
	Multipart      bool        `toml:"multipart"`
	Fields         []string    `toml:"fields"`
	Images         []ImageSlot `toml:"images"`
}

func (k Kind) Slot(name string) (ImageSlot, bool) {
	for _, s := range k.Images {
		if s.Name == name {
			return s, true
		}
	}
	return ImageSlot{}, false
}

type Catalog struct {
	Reports map[string]Kind `toml:"reports"`
}

func LoadCatalog(path string) (Catalog, error) {
	var c Catalog
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode report catalog %s: %w", path, err)
	}
	return c.validate()
}

func ParseCatalog(data string) (Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode report catalog: %w", err)
	}
	return c.validate()
}

func (c Catalog) validate() (Catalog, error) {
	if len(c.Reports) == 0 {
		return Catalog{}, errors.New("report catalog has no reports")
	}
	for name, k := range c.Reports {
		if k.Template == "" {
			return Catalog{}, fmt.Errorf("report %q: template is required", name)
		}
		for _, s := range k.Images {
			if s.Name == "" || s.WidthPx <= 0 || s.HeightPx <= 0 {
				return Catalog{}, fmt.Errorf("report %q: image slot %q needs a name and a positive size", name, s.Name)
			}
		}
		if k.FilenamePrefix == "" {
			k.FilenamePrefix = name
		}
		k.Name = name
		c.Reports[name] = k
	}
	return c, nil
}

func (c Catalog) Kind(name string) (Kind, error) {
	k, ok := c.Reports[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
	return k, nil
}

func (c Catalog) Names() []string {
	out := make([]string, 0, len(c.Reports))
	for name := range c.Reports {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
