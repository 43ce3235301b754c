package sandbox

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"go.dw1.io/safemath"

	"go.dw1.io/proc/internal/jsonx"
)

// ErrInvalidProfile indicates that a profile failed to parse or
// validate.
var ErrInvalidProfile = errors.New("invalid sandbox profile")

// Profile describes a whole narrowing sequence declaratively.
//
// Promises and ExecPromises are pointers so that "absent" (no pledge
// at all) and "pledge to none" (explicit empty string) stay
// distinguishable. UID and GID accept a JSON number or a numeric
// string.
type Profile struct {
	Promises     *string       `json:"promises,omitempty"`
	ExecPromises *string       `json:"exec_promises,omitempty"`
	Unveil       []UnveilEntry `json:"unveil,omitempty" validate:"dive"`
	LockVeil     bool          `json:"lock_veil,omitempty"`
	Chroot       string        `json:"chroot,omitempty"`
	UID          any           `json:"uid,omitempty"`
	GID          any           `json:"gid,omitempty"`
}

// UnveilEntry is one (path, permissions) allow-list entry.
type UnveilEntry struct {
	Path        string `json:"path" validate:"required"`
	Permissions string `json:"permissions" validate:"required,unveilperms"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("unveilperms", func(fl validator.FieldLevel) bool {
			return validPermissions(fl.Field().String())
		})
	})
	return validate
}

func validPermissions(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'r', 'w', 'x', 'c':
		default:
			return false
		}
	}
	return true
}

// LoadProfile parses and validates a JSON profile.
func LoadProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := jsonx.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := profileValidator().Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if _, _, err := p.uid(); err != nil {
		return nil, err
	}
	if _, _, err := p.gid(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) uid() (uint32, bool, error) {
	return coerceID("uid", p.UID)
}

func (p *Profile) gid() (uint32, bool, error) {
	return coerceID("gid", p.GID)
}

func coerceID(field string, v any) (uint32, bool, error) {
	if v == nil {
		return 0, false, nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, field, err)
	}
	id, err := safemath.ConvertAny[uint32](n)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s %d out of range: %v", ErrInvalidProfile, field, n, err)
	}
	return id, true, nil
}

// Apply performs the profile's narrowing sequence in canonical order:
// unveil entries, the list lock, chroot, setgid before setuid, and the
// pledge last so the preceding steps still have the traps they need.
// The first failure aborts the sequence and is returned.
func (s *Sandbox) Apply(p *Profile) error {
	if s.optErr != nil {
		return s.optErr
	}
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrInvalidProfile)
	}

	for _, entry := range p.Unveil {
		if err := s.Unveil(entry.Path, entry.Permissions); err != nil {
			return fmt.Errorf("unveil %s: %w", entry.Path, err)
		}
	}
	if p.LockVeil {
		if err := s.UnveilBlock(); err != nil {
			return fmt.Errorf("unveil lock: %w", err)
		}
	}

	if p.Chroot != "" {
		if err := s.Chroot(p.Chroot); err != nil {
			return fmt.Errorf("chroot %s: %w", p.Chroot, err)
		}
	}

	if gid, ok, err := p.gid(); err != nil {
		return err
	} else if ok {
		if err := s.SetGID(gid); err != nil {
			return fmt.Errorf("setgid %d: %w", gid, err)
		}
	}
	if uid, ok, err := p.uid(); err != nil {
		return err
	} else if ok {
		if err := s.SetUID(uid); err != nil {
			return fmt.Errorf("setuid %d: %w", uid, err)
		}
	}

	if p.Promises != nil || p.ExecPromises != nil {
		promises := ""
		if p.Promises != nil {
			promises = *p.Promises
		}
		execPromises := ""
		if p.ExecPromises != nil {
			execPromises = *p.ExecPromises
		}
		if err := s.Pledge(promises, execPromises); err != nil {
			return fmt.Errorf("pledge: %w", err)
		}
	}

	return nil
}
