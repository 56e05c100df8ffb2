// cmd/tools/listener-generator/generator.go
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
)

var listenerNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ListenerData holds data for templates
type ListenerData struct {
	Name        string
	Dir         string
	PackageName string
	TypePrefix  string
	ErrorCode   string
	Description string
}

func newListenerData(name, description string) (ListenerData, error) {
	if !listenerNamePattern.MatchString(name) {
		return ListenerData{}, fmt.Errorf("listener name %q must be kebab-case (e.g., waitlist-export)", name)
	}
	if description == "" {
		description = "handles roster events."
	}

	parts := strings.Split(name, "-")
	prefix := make([]string, len(parts))
	for i, p := range parts {
		prefix[i] = upperFirst(p)
	}

	return ListenerData{
		Name:        name,
		Dir:         name,
		PackageName: strings.ReplaceAll(name, "-", ""),
		TypePrefix:  strings.Join(prefix, ""),
		ErrorCode:   strings.ToUpper(strings.ReplaceAll(name, "-", "_")),
		Description: strings.TrimSuffix(description, "."),
	}, nil
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const configTemplate = `// internal/listeners/{{ .Dir }}/config.go
package {{ .PackageName }}

import (
	"time"

	"activity-signup/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	l := config.GetListenerConfig(cfg, ListenerName)
	return &Config{
		Enabled: l.Enabled,
		Timeout: config.GetDuration(l.Timeout),
	}
}
`

const handlerTemplate = `// internal/listeners/{{ .Dir }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"errors"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"
)

const ListenerName = "{{ .Name }}"

var (
	Err{{ .TypePrefix }}Failed = errors.New("{{ .ErrorCode }}_FAILED")
)

// Handler {{ .Description }}.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"listener": ListenerName}),
	}
}

func (h *Handler) Name() string { return ListenerName }

func (h *Handler) Handle(ctx context.Context, event models.RosterEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.logger.Debug("roster event received", map[string]interface{}{
		"eventId":  event.ID,
		"type":     string(event.Type),
		"activity": event.Activity,
	})
	return nil
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"activity-signup/internal/common/config"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{Listeners: map[string]config.Listener{
		ListenerName: {Enabled: false, Timeout: 750},
	}}

	lc := LoadConfig(cfg)
	assert.False(t, lc.Enabled)
	assert.Equal(t, 750*time.Millisecond, lc.Timeout)
}

func TestHandler_Handle(t *testing.T) {
	h := NewHandler(&Config{Enabled: true, Timeout: time.Second}, logger.NewTestLogger(t))
	assert.Equal(t, ListenerName, h.Name())

	err := h.Handle(context.Background(), models.RosterEvent{
		ID:         "evt-1",
		Type:       models.RosterEventSignup,
		Activity:   "Chess Club",
		Email:      "newstudent@mergington.edu",
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestHandler_CancelledContext(t *testing.T) {
	h := NewHandler(&Config{Enabled: true, Timeout: time.Second}, logger.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, h.Handle(ctx, models.RosterEvent{ID: "evt-2"}), context.Canceled)
}
`

var templates = map[string]string{
	"config.go":       configTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

// generate renders every template into outputDir/<name> and returns the
// written paths in lexical order.
func generate(data ListenerData, outputDir string, force bool) ([]string, error) {
	listenerDir := filepath.Join(outputDir, data.Dir)
	if _, err := os.Stat(listenerDir); err == nil && !force {
		return nil, fmt.Errorf("%s already exists (use --force to overwrite)", listenerDir)
	}
	if err := os.MkdirAll(listenerDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating directory: %w", err)
	}

	filenames := make([]string, 0, len(templates))
	for filename := range templates {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	written := make([]string, 0, len(filenames))
	for _, filename := range filenames {
		tmpl, err := template.New(filename).Parse(templates[filename])
		if err != nil {
			return written, fmt.Errorf("error parsing template %s: %w", filename, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return written, fmt.Errorf("error executing template %s: %w", filename, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return written, fmt.Errorf("generated %s is not valid Go: %w", filename, err)
		}

		path := filepath.Join(listenerDir, filename)
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, fmt.Errorf("error writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func newRootCmd() *cobra.Command {
	var (
		description string
		outputDir   string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "listener-generator <name>",
		Short: "Scaffold a roster event listener package",
		Long: `Scaffold a roster event listener package under internal/listeners.

Example:
  listener-generator waitlist-export --description "exports waitlist changes to the front office"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newListenerData(args[0], description)
			if err != nil {
				return err
			}

			written, err := generate(data, outputDir, force)
			out := cmd.OutOrStdout()
			for _, path := range written {
				fmt.Fprintf(out, "✓ Generated %s\n", path)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n✅ Listener scaffold generated successfully at: %s\n", filepath.Join(outputDir, data.Dir))
			fmt.Fprintf(out, "\nNext steps:\n")
			fmt.Fprintf(out, "  1. Deliver the event in handler.go\n")
			fmt.Fprintf(out, "  2. Extend handler_test.go\n")
			fmt.Fprintf(out, "  3. Register the listener in cmd/signup-server/wiring.go\n")
			fmt.Fprintf(out, "  4. Add listeners.%s to configs/config.yaml\n", data.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "one-line description used in the Handler doc comment")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "internal/listeners", "parent directory for the listener package")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing listener package")
	return cmd
}
