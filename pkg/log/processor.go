package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

const componentTag = "logger"

// LoggerTagProcessor resolves `fabric:"logger"` and `fabric:"logger:<component>"`
// tags to the registered LoggerService, named after the component when one
// is given.
type LoggerTagProcessor struct{}

func NewLoggerTagProcessor() *LoggerTagProcessor {
	return &LoggerTagProcessor{}
}

// GetPriority places the processor ahead of the default inject processor.
func (ltp *LoggerTagProcessor) GetPriority() int {
	return 50
}

func (ltp *LoggerTagProcessor) CanProcess(value string) bool {
	tag, _, _ := strings.Cut(strings.ToLower(value), ":")
	return tag == componentTag
}

func (ltp *LoggerTagProcessor) Process(ctx context.Context, sc *container.ServiceContainer, field reflect.StructField, value string) (any, error) {
	ok, resolved := sc.ResolveByType(ctx, reflect.TypeOf((*LoggerService)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("no LoggerService registered for '%s'", field.Name)
	}
	root, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("registered logger for '%s' is %T, not a LoggerService", field.Name, resolved)
	}

	_, component, _ := strings.Cut(value, ":")
	if component = strings.TrimSpace(component); component == "" {
		return root, nil
	}
	return root.Named(component), nil
}
