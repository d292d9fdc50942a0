// Package storage holds the Storage entity: one configured backing service and
// the names and image reference derived from its fields.
package storage

import (
	"fmt"
	"regexp"

	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
)

// Type identifies the engine behind a storage.
type Type string

const (
	TypeMinio Type = "minio"
	TypeRedis Type = "redis"
)

// Types lists the supported storage types in presentation order.
var Types = []Type{TypeMinio, TypeRedis}

type imageRef struct {
	name    string
	version string
}

var defaultImages = map[Type]imageRef{
	TypeMinio: {name: "minio/minio", version: "latest"},
	TypeRedis: {name: "redis", version: "latest"},
}

var (
	// validName allows single characters: derived names always carry a
	// type prefix, so they satisfy the daemon's rules either way.
	validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

	// validVolume is the daemon's volume name pattern, at least two characters.
	validVolume = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]+$`)
)

// ParseType converts user input into a known Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", errdefs.Validation("unknown storage type %q (expected one of %v)", s, Types)
	}
	return t, nil
}

func (t Type) Valid() bool {
	_, ok := defaultImages[t]
	return ok
}

// ValidateName checks that name can be used to derive docker object names.
func ValidateName(name string) error {
	if name == "" {
		return errdefs.Validation("storage name is required")
	}
	if !validName.MatchString(name) {
		return errdefs.Validation("invalid storage name %q: only [a-zA-Z0-9_.-] are allowed and it must start with a letter or digit", name)
	}
	return nil
}

// Props is the persisted form of a Storage. Derived values are never stored.
type Props struct {
	Name         string `json:"name"`
	Type         Type   `json:"type"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	ImageName    string `json:"imageName,omitempty"`
	ImageVersion string `json:"imageVersion,omitempty"`
	Volume       string `json:"volume,omitempty"`
}

// Storage is a configured backing service. Overrides are optional; when unset
// the type defaults apply.
type Storage struct {
	name     string
	typ      Type
	username string
	password string

	imageName    string
	imageVersion string
	volume       string
}

func New(name string, typ Type) (*Storage, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if !typ.Valid() {
		return nil, errdefs.Validation("unknown storage type %q", typ)
	}
	return &Storage{name: name, typ: typ}, nil
}

// FromProps rebuilds a Storage from its persisted form.
func FromProps(p Props) (*Storage, error) {
	s, err := New(p.Name, p.Type)
	if err != nil {
		return nil, err
	}
	s.username = p.Username
	s.password = p.Password

	// Overrides go through the setters so a hand-edited document is
	// rejected on load, not by the daemon later.
	if p.ImageName != "" {
		if err := s.SetImageName(p.ImageName); err != nil {
			return nil, err
		}
	}
	if p.ImageVersion != "" {
		if err := s.SetImageVersion(p.ImageVersion); err != nil {
			return nil, err
		}
	}
	if err := s.SetVolume(p.Volume); err != nil {
		return nil, err
	}
	return s, nil
}

// Props returns the fields to persist.
func (s *Storage) Props() Props {
	return Props{
		Name:         s.name,
		Type:         s.typ,
		Username:     s.username,
		Password:     s.password,
		ImageName:    s.imageName,
		ImageVersion: s.imageVersion,
		Volume:       s.volume,
	}
}

func (s *Storage) Clone() *Storage {
	c := *s
	return &c
}

func (s *Storage) Name() string     { return s.name }
func (s *Storage) Type() Type       { return s.typ }
func (s *Storage) Username() string { return s.username }
func (s *Storage) Password() string { return s.password }

func (s *Storage) SetCredentials(username, password string) {
	s.username = username
	s.password = password
}

// HasCredentials reports whether both username and password are set.
func (s *Storage) HasCredentials() bool {
	return s.username != "" && s.password != ""
}

// ContainerName is the docker container name, also used as the virtual host.
func (s *Storage) ContainerName() string {
	return fmt.Sprintf("%s-%s.ws", s.typ, s.name)
}

// DefaultVolume is the volume name used when no override is set.
func (s *Storage) DefaultVolume() string {
	return fmt.Sprintf("wocker-storage-%s-%s", s.typ, s.name)
}

func (s *Storage) Volume() string {
	if s.volume != "" {
		return s.volume
	}
	return s.DefaultVolume()
}

// HasCustomVolume reports whether the volume was overridden by the user.
func (s *Storage) HasCustomVolume() bool {
	return s.volume != "" && s.volume != s.DefaultVolume()
}

// SetVolume overrides the volume. An empty value or the default name clears
// the override.
func (s *Storage) SetVolume(volume string) error {
	if volume == "" || volume == s.DefaultVolume() {
		s.volume = ""
		return nil
	}
	if !validVolume.MatchString(volume) {
		return errdefs.Validation("invalid volume name %q: use at least two of [a-zA-Z0-9_.-], starting with a letter or digit", volume)
	}
	s.volume = volume
	return nil
}
