// Package clientui provides the interactive REPL's terminal
// presentation: themed colored output, a LIST table renderer, and
// command/path completion for the go-prompt-driven shell.
package clientui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// Theme names the color used for each category of REPL output.
type Theme struct {
	Name         string `json:"name"`
	PromptColor  string `json:"promptColor"`
	TextColor    string `json:"textColor"`
	ErrorColor   string `json:"errorColor"`
	SuccessColor string `json:"successColor"`
	InfoColor    string `json:"infoColor"`
}

// ThemeManager loads, saves, and serves the active Theme.
type ThemeManager struct {
	current    Theme
	configPath string
}

// builtinThemes holds every theme name SetTheme accepts. Keeping these
// as data rather than a chain of constructors makes adding a third
// built-in theme a one-line addition.
var builtinThemes = map[string]Theme{
	"dark":  {Name: "dark", PromptColor: "green", TextColor: "white", ErrorColor: "red", SuccessColor: "green", InfoColor: "cyan"},
	"light": {Name: "light", PromptColor: "black", TextColor: "black", ErrorColor: "red", SuccessColor: "green", InfoColor: "blue"},
}

// NewThemeManager loads the saved theme from ~/.goftpcore_theme.json,
// falling back to (and persisting) a default dark theme.
func NewThemeManager() (*ThemeManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("clientui: home directory: %w", err)
	}
	tm := &ThemeManager{
		configPath: filepath.Join(home, ".goftpcore_theme.json"),
		current:    builtinThemes["dark"],
	}
	if err := tm.load(); err != nil {
		if os.IsNotExist(err) {
			if err := tm.save(); err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	return tm, nil
}

func (tm *ThemeManager) load() error {
	data, err := os.ReadFile(tm.configPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &tm.current)
}

func (tm *ThemeManager) save() error {
	data, err := json.MarshalIndent(tm.current, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tm.configPath, data, 0644)
}

// SetTheme switches between the built-in "light" and "dark" themes.
func (tm *ThemeManager) SetTheme(name string) error {
	theme, ok := builtinThemes[name]
	if !ok {
		return fmt.Errorf("clientui: unknown theme %q", name)
	}
	tm.current = theme
	return tm.save()
}

func (tm *ThemeManager) Name() string { return tm.current.Name }

func (tm *ThemeManager) Prompt() *color.Color  { return colorFor(tm.current.PromptColor) }
func (tm *ThemeManager) Text() *color.Color    { return colorFor(tm.current.TextColor) }
func (tm *ThemeManager) ErrorC() *color.Color  { return colorFor(tm.current.ErrorColor) }
func (tm *ThemeManager) Success() *color.Color { return colorFor(tm.current.SuccessColor) }
func (tm *ThemeManager) Info() *color.Color    { return colorFor(tm.current.InfoColor) }

// colorAttrs maps the color names used in a Theme to fatih/color
// foreground attributes. Anything absent here (including an empty or
// unrecognized name) renders in the terminal's default color.
var colorAttrs = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

func colorFor(name string) *color.Color {
	attr, ok := colorAttrs[name]
	if !ok {
		return color.New(color.Reset)
	}
	return color.New(attr)
}
