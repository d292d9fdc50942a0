package storage

import (
	"regexp"
	"strings"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"

	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
)

var anchoredTag = regexp.MustCompile(`^` + reference.TagRegexp.String() + `$`)

// ImageName returns the repository part of the image, override or type default.
func (s *Storage) ImageName() string {
	if s.imageName != "" {
		return s.imageName
	}
	return defaultImages[s.typ].name
}

// ImageVersion returns the tag (or sha256 digest) part of the image.
func (s *Storage) ImageVersion() string {
	if s.imageVersion != "" {
		return s.imageVersion
	}
	return defaultImages[s.typ].version
}

// ImageTag is the full reference passed to the container engine.
func (s *Storage) ImageTag() string {
	version := s.ImageVersion()
	if strings.HasPrefix(version, string(digest.SHA256)+":") {
		return s.ImageName() + "@" + version
	}
	return s.ImageName() + ":" + version
}

// SetImage replaces both halves of the image with a full reference such as
// "registry:5000/team/minio:RELEASE.2024" or "redis@sha256:<hex>". A reference
// without tag or digest means "latest".
func (s *Storage) SetImage(image string) error {
	ref, err := reference.Parse(image)
	if err != nil {
		return errdefs.Validation("invalid image %q: %v", image, err)
	}
	named, ok := ref.(reference.Named)
	if !ok {
		return errdefs.Validation("invalid image %q: repository name is required", image)
	}

	version := "latest"
	if tagged, ok := ref.(reference.Tagged); ok {
		version = tagged.Tag()
	}
	if digested, ok := ref.(reference.Digested); ok {
		if err := validateDigest(digested.Digest().String()); err != nil {
			return errdefs.Validation("invalid image %q: %v", image, err)
		}
		version = digested.Digest().String()
	}

	s.imageName = named.Name()
	s.imageVersion = version
	return nil
}

// SetImageName replaces the repository half and keeps the version.
func (s *Storage) SetImageName(name string) error {
	ref, err := reference.Parse(name)
	if err != nil {
		return errdefs.Validation("invalid image name %q: %v", name, err)
	}
	named, ok := ref.(reference.Named)
	if !ok {
		return errdefs.Validation("invalid image name %q", name)
	}
	if _, tagged := ref.(reference.Tagged); tagged {
		return errdefs.Validation("invalid image name %q: use the image version to set a tag", name)
	}
	if _, digested := ref.(reference.Digested); digested {
		return errdefs.Validation("invalid image name %q: use the image version to set a digest", name)
	}
	s.imageName = named.Name()
	return nil
}

// SetImageVersion replaces the tag half and keeps the repository.
func (s *Storage) SetImageVersion(version string) error {
	if strings.Contains(version, ":") {
		if err := validateDigest(version); err != nil {
			return errdefs.Validation("invalid image version %q: %v", version, err)
		}
	} else if !anchoredTag.MatchString(version) {
		return errdefs.Validation("invalid image version %q", version)
	}
	s.imageVersion = version
	return nil
}

func validateDigest(s string) error {
	d, err := digest.Parse(s)
	if err != nil {
		return err
	}
	if d.Algorithm() != digest.SHA256 {
		return errdefs.Validation("unsupported digest algorithm %q", d.Algorithm())
	}
	return nil
}
