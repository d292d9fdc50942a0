package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
	"github.com/sarth-shah20/stasis-storage/internal/prompt"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// CreateProps are the values given to Create. Empty fields are asked for.
type CreateProps struct {
	Name     string
	Type     storage.Type
	Username string
	Password string
}

// Create adds a storage to the configuration. It does not touch the
// container engine.
//
// An explicit name that is already taken fails with an AlreadyExists error;
// a name typed at the prompt is rejected and asked again instead. Values
// typed at the prompt are length checked, explicit values are trusted.
func (m *Manager) Create(ctx context.Context, props CreateProps) (*storage.Storage, error) {
	cfg, err := m.Store()
	if err != nil {
		return nil, err
	}

	name := props.Name
	if name != "" {
		if err := storage.ValidateName(name); err != nil {
			return nil, err
		}
		if cfg.Has(name) {
			return nil, errdefs.AlreadyExists("storage %s already exists", name)
		}
	} else {
		name, err = m.prompter.Text("Storage name:", func(v string) error {
			if err := storage.ValidateName(v); err != nil {
				return err
			}
			if cfg.Has(v) {
				return fmt.Errorf("storage %s already exists", v)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	typ := props.Type
	if typ == "" {
		options := make([]prompt.Option, 0, len(storage.Types))
		for _, t := range storage.Types {
			options = append(options, prompt.Option{Label: typeLabel(t), Value: string(t)})
		}
		selected, err := m.prompter.Select("Storage type:", options)
		if err != nil {
			return nil, err
		}
		typ = storage.Type(selected)
	}

	s, err := storage.New(name, typ)
	if err != nil {
		return nil, err
	}

	username, password := props.Username, props.Password
	if m.kindOf(s).NeedsCredentials() {
		if username == "" {
			if username, err = m.askUsername(); err != nil {
				return nil, err
			}
		}
		if password == "" {
			if password, err = m.askPassword(); err != nil {
				return nil, err
			}
		}
	}
	s.SetCredentials(username, password)

	cfg.Upsert(s)
	if err := cfg.Save(); err != nil {
		return nil, err
	}

	m.logger.Info("storage created", zap.String("storage", name), zap.String("type", string(typ)))
	m.printf("Storage %s (%s) created\n", name, typ)
	return s, nil
}

func typeLabel(t storage.Type) string {
	switch t {
	case storage.TypeMinio:
		return "MinIO"
	case storage.TypeRedis:
		return "Redis"
	}
	return string(t)
}

func (m *Manager) askUsername() (string, error) {
	return m.prompter.Text("Username:", func(v string) error {
		if len(v) < minUsernameLength {
			return fmt.Errorf("username must be at least %d characters", minUsernameLength)
		}
		return nil
	})
}

// askPassword asks for a password and its confirmation.
func (m *Manager) askPassword() (string, error) {
	password, err := m.prompter.Secret("Password:", func(v string) error {
		if len(v) < minPasswordLength {
			return fmt.Errorf("password must be at least %d characters", minPasswordLength)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	confirm, err := m.prompter.Secret("Confirm password:", nil)
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errdefs.Validation("Passwords do not match")
	}
	return password, nil
}
