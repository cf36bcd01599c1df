package templating

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/CTAG07/sponsorsync/pkg/sponsors"
)

// FragmentTemplate is the name every fragment template must define.
const FragmentTemplate = "sponsors"

//go:embed templates/sponsors.tmpl.html
var defaultTemplateFS embed.FS

// tierView is what the fragment template sees for each rendered tier.
type tierView struct {
	Name     string
	Tier     sponsors.Tier
	Sponsors []sponsors.Record
}

// fragmentView is the root data passed to the fragment template.
type fragmentView struct {
	Tiers          []tierView
	ContainerClass string
	ImageSize      int
}

// Renderer turns classified sponsor groups into an HTML fragment.
// It owns the parsed fragment template and its configuration.
// All methods are concurrent-safe.
type Renderer struct {
	logger *slog.Logger
	config RenderConfig
	tmpl   *template.Template
	mu     sync.RWMutex
}

// NewRenderer creates a Renderer and performs an initial Refresh to parse
// the configured template, or the embedded default when none is set.
func NewRenderer(logger *slog.Logger, config RenderConfig) (*Renderer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Renderer{
		logger: logger,
		config: config,
	}
	if err := r.Refresh(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetConfig applies a new configuration. A changed TemplatePath only takes
// effect on the next Refresh.
func (r *Renderer) SetConfig(config RenderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = config
}

// GetConfig returns a copy of the current configuration.
func (r *Renderer) GetConfig() RenderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// Refresh (re)parses the fragment template. On failure the previously
// parsed template stays in use.
func (r *Renderer) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		parsed *template.Template
		err    error
	)
	if r.config.TemplatePath != "" {
		r.logger.Info("Loading fragment template", "path", r.config.TemplatePath)
		parsed, err = template.New("").ParseFiles(r.config.TemplatePath)
	} else {
		r.logger.Debug("Loading embedded fragment template")
		parsed, err = template.New("").ParseFS(defaultTemplateFS, "templates/sponsors.tmpl.html")
	}
	if err != nil {
		r.logger.Error("failed to parse fragment template", "error", err)
		return fmt.Errorf("failed to parse fragment template: %w", err)
	}
	if parsed.Lookup(FragmentTemplate) == nil {
		r.logger.Error("fragment template is not defined", "template", FragmentTemplate, "source", r.templateSource())
		return fmt.Errorf("fragment template %q is not defined in %s", FragmentTemplate, r.templateSource())
	}

	r.tmpl = parsed
	return nil
}

func (r *Renderer) templateSource() string {
	if r.config.TemplatePath != "" {
		return r.config.TemplatePath
	}
	return "embedded template"
}

// Execute writes the fragment for groups to w. Tiers are emitted in
// tierOrder (DefaultTierOrder when empty); tiers missing from groups or
// without sponsors are skipped, as are repeats.
func (r *Renderer) Execute(w io.Writer, groups map[sponsors.Tier]sponsors.Group, tierOrder []sponsors.Tier) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view := fragmentView{
		Tiers:          buildTiers(groups, tierOrder),
		ContainerClass: r.config.ContainerClass,
		ImageSize:      r.config.ImageSize,
	}
	if strings.TrimSpace(view.ContainerClass) == "" {
		view.ContainerClass = DefaultConfig().ContainerClass
	}
	return r.tmpl.ExecuteTemplate(w, FragmentTemplate, view)
}

// Render is Execute into a string.
func (r *Renderer) Render(groups map[sponsors.Tier]sponsors.Group, tierOrder []sponsors.Tier) (string, error) {
	var buf bytes.Buffer
	if err := r.Execute(&buf, groups, tierOrder); err != nil {
		return "", fmt.Errorf("failed to render sponsors fragment: %w", err)
	}
	return buf.String(), nil
}

func buildTiers(groups map[sponsors.Tier]sponsors.Group, tierOrder []sponsors.Tier) []tierView {
	if len(tierOrder) == 0 {
		tierOrder = sponsors.DefaultTierOrder()
	}
	tiers := make([]tierView, 0, len(tierOrder))
	rendered := make(map[sponsors.Tier]bool, len(tierOrder))
	for _, tier := range tierOrder {
		if rendered[tier] {
			continue
		}
		group, ok := groups[tier]
		if !ok || len(group.Sponsors) == 0 {
			continue
		}
		rendered[tier] = true
		tiers = append(tiers, tierView{Name: tier.String(), Tier: tier, Sponsors: group.Sponsors})
	}
	return tiers
}
