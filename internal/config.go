package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dssafford/daylog/internal/note"
	"github.com/dssafford/daylog/internal/storage"
	"github.com/dssafford/daylog/internal/syncer"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// ScheduleAlways marks a section that runs on every invocation with no
// per-day idempotency guard.
const ScheduleAlways = "always"

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig         `yaml:"app"`
	Notes     NotesConfig               `yaml:"notes"`
	State     StateConfig               `yaml:"state"`
	Auth      AuthConfig                `yaml:"auth"`
	Source    SourceConfig              `yaml:"source"`
	Sync      SyncConfig                `yaml:"sync"`
	Inbox     InboxConfig               `yaml:"inbox"`
	Schedules map[string]ScheduleWindow `yaml:"schedules"`
	Sections  map[string]SectionConfig  `yaml:"sections"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	for name, w := range c.Schedules {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("schedule %q: %w", name, err)
		}
	}
	for key, s := range c.Sections {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("section %q: %w", key, err)
		}
		if s.Schedule != "" && s.Schedule != ScheduleAlways {
			if _, ok := c.Schedules[s.Schedule]; !ok {
				return fmt.Errorf("section %q: unknown schedule %q", key, s.Schedule)
			}
		}
	}
	return nil
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

// NotesConfig holds the daily-notes directory and filename layout.
type NotesConfig struct {
	Dir        string `yaml:"dir"`
	FileFormat string `yaml:"file_format"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// StateConfig holds the idempotency-store database path.
type StateConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds inbound HTTP authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, suitable for a private host.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// SourceConfig configures the external item-source adapter.
type SourceConfig struct {
	App           string        `yaml:"app"`
	ScriptTimeout time.Duration `yaml:"script_timeout"`
}

// SyncConfig holds the verify-then-retry tuning knobs. The notes directory
// may sit on an asynchronously syncing filesystem, so writes are verified
// readable after a settle delay and retried on mismatch.
type SyncConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RetryAttempts, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.RetryDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.SettleDelay, validation.Min(time.Duration(0))),
	)
}

// InboxConfig lists drop folders watched for inbound entry files.
type InboxConfig struct {
	Dirs []string `yaml:"dirs"`
}

// ScheduleWindow is a half-open hour range [Start, End) in local time.
type ScheduleWindow struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Validate validates the schedule window.
func (c ScheduleWindow) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Start, validation.Min(0), validation.Max(23)),
		validation.Field(&c.End, validation.Required, validation.Min(1), validation.Max(24)),
	)
}

// Contains reports whether hour falls inside the window.
func (c ScheduleWindow) Contains(hour int) bool {
	return hour >= c.Start && hour < c.End
}

// SectionConfig binds a section key to its marker, render format, source
// list, optional slot bound, and schedule. This table is static
// configuration, not runtime state.
type SectionConfig struct {
	Marker   string     `yaml:"marker"`
	Format   note.Style `yaml:"format"`
	List     string     `yaml:"list"`
	Slots    int        `yaml:"slots"`
	Schedule string     `yaml:"schedule"`
}

// Validate validates the section configuration.
func (c *SectionConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Marker, validation.Required),
		validation.Field(&c.Slots, validation.Min(0), validation.Max(20)),
	); err != nil {
		return err
	}
	if !note.ValidStyle(c.Format) {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

// Bounded reports whether the section has a fixed slot count.
func (c *SectionConfig) Bounded() bool {
	return c.Slots > 0
}

// AlwaysRun reports whether the section bypasses the per-day guard.
func (c *SectionConfig) AlwaysRun() bool {
	return c.Schedule == "" || c.Schedule == ScheduleAlways
}

// ResolveSchedule returns the schedule name whose window contains hour, or
// ScheduleAlways when no window matches.
func (c *Config) ResolveSchedule(hour int) string {
	for name, w := range c.Schedules {
		if name == ScheduleAlways {
			continue
		}
		if w.Contains(hour) {
			return name
		}
	}
	return ScheduleAlways
}

// SectionsForSchedule returns the keys of sections bound to the named
// schedule plus every always-run section.
func (c *Config) SectionsForSchedule(schedule string) []string {
	var keys []string
	for key, s := range c.Sections {
		if s.Schedule == schedule || s.AlwaysRun() {
			keys = append(keys, key)
		}
	}
	return keys
}

// NoteSections returns the static table consumed by the entry surfaces.
func (c *Config) NoteSections() map[string]note.Section {
	out := make(map[string]note.Section, len(c.Sections))
	for key, s := range c.Sections {
		out[key] = note.Section{Marker: s.Marker, Format: s.Format, Slots: s.Slots}
	}
	return out
}

// SyncSections returns the sync targets derived from the section table.
func (c *Config) SyncSections() map[string]syncer.Section {
	out := make(map[string]syncer.Section, len(c.Sections))
	for key, s := range c.Sections {
		out[key] = syncer.Section{
			Section:   note.Section{Marker: s.Marker, Format: s.Format, Slots: s.Slots},
			Key:       key,
			List:      s.List,
			AlwaysRun: s.AlwaysRun(),
		}
	}
	return out
}

// SectionKeys returns every configured section key.
func (c *Config) SectionKeys() []string {
	keys := make([]string, 0, len(c.Sections))
	for key := range c.Sections {
		keys = append(keys, key)
	}
	return keys
}

// NewDefaultConfig returns a new Config mirroring the reference deployment:
// morning intention/priorities/concerns, an always-on daily log, and the
// evening review sections.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notes: NotesConfig{
			Dir:        "./daily",
			FileFormat: storage.DefaultFileFormat,
		},
		State: StateConfig{
			Path: "./daylog.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Source: SourceConfig{
			App:           "Reminders",
			ScriptTimeout: 30 * time.Second,
		},
		Sync: SyncConfig{
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
			SettleDelay:   time.Second,
		},
		Schedules: map[string]ScheduleWindow{
			"morning": {Start: 5, End: 12},
			"evening": {Start: 17, End: 23},
		},
		Sections: map[string]SectionConfig{
			"intention": {
				Marker:   "**Today's Intention:**",
				Format:   note.StyleBlockquote,
				List:     "Intention",
				Schedule: "morning",
			},
			"priorities": {
				Marker:   "**Three Priorities:**",
				Format:   note.StyleCheckboxNumbered,
				List:     "3Priorities",
				Slots:    3,
				Schedule: "morning",
			},
			"concerns": {
				Marker:   "**Today's anxiety/concern:**",
				Format:   note.StyleBlockquote,
				List:     "Concerns",
				Schedule: "morning",
			},
			"log": {
				Marker:   "## 📝 Daily Log",
				Format:   note.StylePlain,
				List:     "Log",
				Schedule: ScheduleAlways,
			},
			"gratitude": {
				Marker:   "**3 things I'm grateful for:**",
				Format:   note.StyleNumbered,
				List:     "Gratitude",
				Schedule: "evening",
			},
			"wins": {
				Marker:   "**One win from today:**",
				Format:   note.StyleBlockquote,
				List:     "Wins",
				Schedule: "evening",
			},
			"whatgotdone": {
				Marker:   "**What got done:**",
				Format:   note.StyleBullet,
				List:     "WhatGotDone",
				Schedule: "evening",
			},
			"whatsstillopen": {
				Marker:   "**What's still open (brain dump):**",
				Format:   note.StyleBullet,
				List:     "StillOpen",
				Schedule: "evening",
			},
			"tomorrowfirstthing": {
				Marker:   "**Tomorrow's first thing:**",
				Format:   note.StyleBullet,
				List:     "TomorrowFirst",
				Schedule: "evening",
			},
		},
	}
}
