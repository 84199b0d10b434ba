package shortcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/kapu/planning-center-groups-go/internal/constants"
)

// ErrUnknownShortcode is returned when a directive is executed for an
// unregistered name.
var ErrUnknownShortcode = errors.New("unknown shortcode")

// Handler renders one directive. Render must return markup even on failure.
type Handler interface {
	Name() string
	Description() string
	Render(ctx context.Context, attrs map[string]string) string
}

// Registry stores directive handlers keyed by lowercase name.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register adds a handler. A later handler with the same name replaces the
// earlier one.
func (r *Registry) Register(handler Handler) {
	if handler == nil {
		return
	}

	name := strings.ToLower(handler.Name())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Execute runs the handler registered for name. A panicking handler is
// recovered and reported as an error.
func (r *Registry) Execute(ctx context.Context, name string, attrs map[string]string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("shortcode registry is nil")
	}

	handler := r.getHandler(name)
	if handler == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownShortcode, name)
	}

	var (
		catcher panics.Catcher
		out     string
	)
	catcher.Try(func() {
		out = handler.Render(ctx, attrs)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return "", fmt.Errorf("shortcode %s panicked: %w", name, recovered.AsError())
	}
	return out, nil
}

// Expand replaces every registered directive in content with its output.
// Unknown directives are left as written and [[name]] unescapes to [name].
func (r *Registry) Expand(ctx context.Context, content string) string {
	tags := Scan(content)
	if len(tags) == 0 {
		return content
	}

	var sb strings.Builder
	last := 0
	for _, tag := range tags {
		sb.WriteString(content[last:tag.Start])
		last = tag.End

		if r.getHandler(tag.Name) == nil {
			sb.WriteString(tag.Raw)
			continue
		}
		if tag.Escaped {
			sb.WriteString(tag.Inner())
			continue
		}

		out, err := r.Execute(ctx, tag.Name, tag.Attrs)
		if err != nil {
			r.logger.Error("Shortcode failed", zap.String("shortcode", tag.Name), zap.Error(err))
			out = constants.Messages.RenderFailed
		}
		sb.WriteString(tag.openExtra)
		sb.WriteString(out)
		sb.WriteString(tag.closeExtra)
	}
	sb.WriteString(content[last:])

	return sb.String()
}

// Names returns the registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

func (r *Registry) getHandler(key string) Handler {
	if r == nil || key == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if handler, ok := r.handlers[strings.ToLower(key)]; ok {
		return handler
	}
	return nil
}
