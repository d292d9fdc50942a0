package lifecycle

import (
	"context"

	"go.uber.org/zap"
)

// UpgradeProps lists the settings to change. Nil fields are left alone.
type UpgradeProps struct {
	Name         string // empty selects the default storage
	Volume       *string
	Image        *string // full reference, replaces name and version
	ImageName    *string
	ImageVersion *string
}

func (p UpgradeProps) empty() bool {
	return p.Volume == nil && p.Image == nil && p.ImageName == nil && p.ImageVersion == nil
}

// Upgrade changes the image or volume of a storage and reports whether
// anything changed. The running container keeps its old settings until the
// storage is started with restart.
func (m *Manager) Upgrade(ctx context.Context, props UpgradeProps) (bool, error) {
	cfg, err := m.Store()
	if err != nil {
		return false, err
	}
	current, err := cfg.GetOrDefault(props.Name)
	if err != nil {
		return false, err
	}
	if props.empty() {
		return false, nil
	}

	next := current.Clone()
	if props.Image != nil {
		if err := next.SetImage(*props.Image); err != nil {
			return false, err
		}
	}
	if props.ImageName != nil {
		if err := next.SetImageName(*props.ImageName); err != nil {
			return false, err
		}
	}
	if props.ImageVersion != nil {
		if err := next.SetImageVersion(*props.ImageVersion); err != nil {
			return false, err
		}
	}
	if props.Volume != nil {
		if err := next.SetVolume(*props.Volume); err != nil {
			return false, err
		}
	}

	if next.Props() == current.Props() {
		m.printf("Storage %s is already up to date\n", current.Name())
		return false, nil
	}

	cfg.Upsert(next)
	if err := cfg.Save(); err != nil {
		return false, err
	}

	m.logger.Info("storage upgraded",
		zap.String("storage", next.Name()),
		zap.String("image", next.ImageTag()),
		zap.String("volume", next.Volume()))
	m.printf("Storage %s upgraded (image %s, volume %s). Restart it to apply.\n", next.Name(), next.ImageTag(), next.Volume())
	return true, nil
}
