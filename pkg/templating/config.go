package templating

// RenderConfig holds all configuration options for the fragment renderer.
type RenderConfig struct {
	// TemplatePath points at a template file that replaces the embedded
	// default. It must define a template named "sponsors". Empty means use
	// the default.
	TemplatePath string `json:"template_path"`

	// ContainerClass is the CSS class put on every tier container. Each
	// container also gets "<ContainerClass>-<tier>".
	ContainerClass string `json:"container_class"`

	// ImageSize, when positive, is written as the width and height of every
	// avatar image.
	ImageSize int `json:"image_size"`
}

// DefaultConfig returns a RenderConfig that uses the embedded template.
func DefaultConfig() RenderConfig {
	return RenderConfig{
		TemplatePath:   "",
		ContainerClass: "sponsors",
		ImageSize:      0,
	}
}
