package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"docket/internal/reminder"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "docket.db"
	DefaultLogName        = "docket.log"
	AppDirName            = "docket"
	EnvConfigPath         = "DOCKET_CONFIG"

	defaultInterval        = 30 * time.Second
	defaultReminderMinutes = 15
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Add          string `toml:"add"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Toggle       string `toml:"toggle"`
	Delete       string `toml:"delete"`
	Detail       string `toml:"detail"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Edit         string `toml:"edit"`
	Search       string `toml:"search"`
	Subtask      string `toml:"subtask"`
	NextFolder   string `toml:"next_folder"`
	NextFilter   string `toml:"next_filter"`
	NextSort     string `toml:"next_sort"`
	Grab         string `toml:"grab"`
	MoveUp       string `toml:"move_up"`
	MoveDown     string `toml:"move_down"`
	PriorityUp   string `toml:"priority_up"`
	PriorityDown string `toml:"priority_down"`
	DueForward   string `toml:"due_forward"`
	DueBack      string `toml:"due_back"`
	Remind       string `toml:"remind"`
	NewFolder    string `toml:"new_folder"`
	DeleteFolder string `toml:"delete_folder"`
}

type Config struct {
	DBPath           string `toml:"db_path"`
	LogPath          string `toml:"log_path"`
	LogLevel         string `toml:"log_level"`
	DefaultFilter    string `toml:"default_filter"`
	DefaultSort      string `toml:"default_sort"`
	ReminderInterval string `toml:"reminder_interval"`
	ReminderMinutes  int    `toml:"reminder_minutes"`
	Notifications    string `toml:"notifications"`
	Keys             Keymap `toml:"keys"`
}

// ResolveConfigPath picks $DOCKET_CONFIG, then the user config directory,
// then the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.normalize(filepath.Dir(path))
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// normalize replaces unusable values with defaults. Relative paths resolve
// against the config file's directory.
func (c *Config) normalize(dir string) {
	def := defaultConfig(dir)
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	} else if !filepath.IsAbs(c.DBPath) && !strings.HasPrefix(c.DBPath, "file:") {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	} else if !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
	c.LogLevel = oneOf(c.LogLevel, def.LogLevel, "debug", "info", "warn", "error")
	c.DefaultFilter = oneOf(c.DefaultFilter, def.DefaultFilter, "all", "pending", "completed")
	c.DefaultSort = oneOf(c.DefaultSort, def.DefaultSort, "newest", "priority", "due", "alpha", "manual")
	c.Notifications = oneOf(c.Notifications, def.Notifications, "desktop", "off")
	if c.ReminderMinutes <= 0 {
		c.ReminderMinutes = def.ReminderMinutes
	}
	if d, err := time.ParseDuration(c.ReminderInterval); err != nil || d <= 0 {
		c.ReminderInterval = def.ReminderInterval
	}
	c.Keys = c.Keys.withDefaults(def.Keys)
}

func oneOf(v, fallback string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

// Interval returns the reminder tick period. It is clamped to
// reminder.MaxInterval because a task's own lead time can be as short as one
// minute whatever the default is.
func (c Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.ReminderInterval)
	if err != nil || d <= 0 {
		d = defaultInterval
	}
	if d > reminder.MaxInterval {
		d = reminder.MaxInterval
	}
	return d
}

func (k Keymap) withDefaults(def Keymap) Keymap {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&k.Quit, def.Quit)
	fill(&k.Add, def.Add)
	fill(&k.Up, def.Up)
	fill(&k.Down, def.Down)
	fill(&k.Toggle, def.Toggle)
	fill(&k.Delete, def.Delete)
	fill(&k.Detail, def.Detail)
	fill(&k.Confirm, def.Confirm)
	fill(&k.Cancel, def.Cancel)
	fill(&k.Edit, def.Edit)
	fill(&k.Search, def.Search)
	fill(&k.Subtask, def.Subtask)
	fill(&k.NextFolder, def.NextFolder)
	fill(&k.NextFilter, def.NextFilter)
	fill(&k.NextSort, def.NextSort)
	fill(&k.Grab, def.Grab)
	fill(&k.MoveUp, def.MoveUp)
	fill(&k.MoveDown, def.MoveDown)
	fill(&k.PriorityUp, def.PriorityUp)
	fill(&k.PriorityDown, def.PriorityDown)
	fill(&k.DueForward, def.DueForward)
	fill(&k.DueBack, def.DueBack)
	fill(&k.Remind, def.Remind)
	fill(&k.NewFolder, def.NewFolder)
	fill(&k.DeleteFolder, def.DeleteFolder)
	return k
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:           filepath.Join(dir, DefaultDBName),
		LogPath:          filepath.Join(dir, DefaultLogName),
		LogLevel:         "info",
		DefaultFilter:    "all",
		DefaultSort:      "newest",
		ReminderInterval: defaultInterval.String(),
		ReminderMinutes:  defaultReminderMinutes,
		Notifications:    "desktop",
		Keys: Keymap{
			Quit:         "q",
			Add:          "a",
			Up:           "k",
			Down:         "j",
			Toggle:       " ",
			Delete:       "d",
			Detail:       "enter",
			Confirm:      "enter",
			Cancel:       "esc",
			Edit:         "e",
			Search:       "/",
			Subtask:      "s",
			NextFolder:   "tab",
			NextFilter:   "f",
			NextSort:     "o",
			Grab:         "m",
			MoveUp:       "K",
			MoveDown:     "J",
			PriorityUp:   "+",
			PriorityDown: "-",
			DueForward:   "]",
			DueBack:      "[",
			Remind:       "r",
			NewFolder:    "N",
			DeleteFolder: "X",
		},
	}
}
