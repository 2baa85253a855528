package report

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/pkg/logger"
)

// Renderer represents a report output strategy.
type Renderer interface {
	// Render writes the report for the given result to w.
	Render(w io.Writer, result *models.AnalysisResult) error
	// Name returns the renderer identifier (e.g., "text", "markdown", "yaml").
	Name() string
	// Description returns a human-readable description of the renderer.
	Description() string
}

// RendererFactory creates instances of report renderers.
type RendererFactory func(log logger.Logger) (Renderer, error)

var (
	rendererRegistry = make(map[string]RendererFactory)
	registryMutex    sync.RWMutex
)

// RegisterRenderer registers a new report renderer factory.
func RegisterRenderer(name string, factory RendererFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("report: RegisterRenderer factory is nil for renderer %q", name))
	}
	if _, dup := rendererRegistry[name]; dup {
		panic(fmt.Sprintf("report: RegisterRenderer called twice for renderer %q", name))
	}
	rendererRegistry[name] = factory
}

// GetRenderer creates an instance of the specified report renderer.
func GetRenderer(name string, log logger.Logger) (Renderer, error) {
	registryMutex.RLock()
	factory, exists := rendererRegistry[name]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown report format: %s", name)
	}

	return factory(log)
}

// ListRenderers returns the sorted names of all registered renderers.
func ListRenderers() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(rendererRegistry))
	for name := range rendererRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterRenderer("text", func(log logger.Logger) (Renderer, error) {
		return NewTextRenderer(log), nil
	})
	RegisterRenderer("markdown", func(log logger.Logger) (Renderer, error) {
		return NewMarkdownRenderer(log)
	})
	RegisterRenderer("yaml", func(log logger.Logger) (Renderer, error) {
		return NewYAMLRenderer(log), nil
	})
}
