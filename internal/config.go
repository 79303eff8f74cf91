package internal

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/org"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Org    OrgConfig         `yaml:"org"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Org.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the org vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TodoKeywordsConfig overrides the active/done keyword sets. Tokens use
// the org syntax, so fast keys and logging specs like "WAIT(w@/!)" work.
type TodoKeywordsConfig struct {
	ActiveStates []string `yaml:"activeStates"`
	DoneStates   []string `yaml:"doneStates"`
}

// PrioritiesConfig overrides the priority cookie range. Each field is a
// single letter; unset fields keep the built-in value.
type PrioritiesConfig struct {
	Highest string `yaml:"highest"`
	Lowest  string `yaml:"lowest"`
	Default string `yaml:"default"`
}

// OrgConfig overrides the built-in org behavior defaults. All fields are
// optional; unset fields fall through to the defaults, then the RAIDO_*
// environment variables, then per-document directives.
type OrgConfig struct {
	TodoKeywords        *TodoKeywordsConfig `yaml:"todoKeywords"`
	Priorities          *PrioritiesConfig   `yaml:"priorities"`
	LogDone             *string             `yaml:"logDone"`
	LogRepeat           *string             `yaml:"logRepeat"`
	LogReschedule       *string             `yaml:"logReschedule"`
	LogRedeadline       *string             `yaml:"logRedeadline"`
	LogRefile           *string             `yaml:"logRefile"`
	LogIntoDrawer       *string             `yaml:"logIntoDrawer"` // "nil" disables the drawer
	TagInheritance      *bool               `yaml:"tagInheritance"`
	TagExclusions       []string            `yaml:"tagExclusions"`
	PropertyInheritance *bool               `yaml:"propertyInheritance"`
	InheritProps        []string            `yaml:"inheritProps"`
	DeadlineWarningDays *int                `yaml:"deadlineWarningDays"`
	ArchiveLocation     *string             `yaml:"archiveLocation"`
}

// Validate validates the org overrides.
func (c *OrgConfig) Validate() error {
	if c.Priorities != nil {
		for _, f := range []struct {
			name  string
			value string
		}{
			{"highest", c.Priorities.Highest},
			{"lowest", c.Priorities.Lowest},
			{"default", c.Priorities.Default},
		} {
			if f.value != "" && len(f.value) != 1 {
				return fmt.Errorf("org: priorities.%s must be a single letter, got %q", f.name, f.value)
			}
		}
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"logDone", c.LogDone},
		{"logRepeat", c.LogRepeat},
		{"logReschedule", c.LogReschedule},
		{"logRedeadline", c.LogRedeadline},
		{"logRefile", c.LogRefile},
	} {
		if f.value == nil {
			continue
		}
		if org.ParseLogAction(*f.value) == org.LogUnset {
			return fmt.Errorf("org: %s must be one of none, time, note; got %q", f.name, *f.value)
		}
	}
	if c.DeadlineWarningDays != nil && *c.DeadlineWarningDays < 0 {
		return fmt.Errorf("org: deadlineWarningDays must not be negative")
	}
	return nil
}

// ToOrgConfig overlays the YAML overrides onto the built-in defaults and
// then applies the RAIDO_* environment variables on top.
func (c *OrgConfig) ToOrgConfig() org.Config {
	out := org.DefaultConfig()

	if c.TodoKeywords != nil {
		line := strings.Join(c.TodoKeywords.ActiveStates, " ") + " | " + strings.Join(c.TodoKeywords.DoneStates, " ")
		active, done := org.ParseTodoLine(line)
		if len(active) > 0 || len(done) > 0 {
			out.Active, out.Done = active, done
		}
	}
	if c.Priorities != nil {
		setPrio := func(dst *byte, v string) {
			if len(v) == 1 {
				*dst = v[0]
			}
		}
		setPrio(&out.PriorityHighest, c.Priorities.Highest)
		setPrio(&out.PriorityLowest, c.Priorities.Lowest)
		setPrio(&out.PriorityDefault, c.Priorities.Default)
	}
	applyLog := func(dst *org.LogAction, v *string) {
		if v != nil {
			if a := org.ParseLogAction(*v); a != org.LogUnset {
				*dst = a
			}
		}
	}
	applyLog(&out.LogDone, c.LogDone)
	applyLog(&out.LogRepeat, c.LogRepeat)
	applyLog(&out.LogReschedule, c.LogReschedule)
	applyLog(&out.LogRedeadline, c.LogRedeadline)
	applyLog(&out.LogRefile, c.LogRefile)

	if c.LogIntoDrawer != nil {
		out.LogIntoDrawer = *c.LogIntoDrawer
		if strings.EqualFold(out.LogIntoDrawer, "nil") {
			out.LogIntoDrawer = ""
		}
	}
	if c.TagInheritance != nil {
		out.TagInheritance = *c.TagInheritance
	}
	if len(c.TagExclusions) > 0 {
		out.TagExclusions = append([]string(nil), c.TagExclusions...)
	}
	if c.PropertyInheritance != nil {
		out.PropertyInheritance = *c.PropertyInheritance
	}
	if len(c.InheritProps) > 0 {
		out.InheritProps = append([]string(nil), c.InheritProps...)
	}
	if c.DeadlineWarningDays != nil && *c.DeadlineWarningDays >= 0 {
		out.DeadlineWarningDays = *c.DeadlineWarningDays
	}
	if c.ArchiveLocation != nil && *c.ArchiveLocation != "" {
		out.ArchiveLocation = *c.ArchiveLocation
	}

	return out.ApplyEnv(os.Getenv)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
