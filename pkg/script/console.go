package script

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// registerConsole routes console.log, console.warn and console.error to log.
func registerConsole(vm *goja.Runtime, log *zap.Logger) {
	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		log.Info(formatArgs(call.Arguments), zap.String("source", "console"))
		return goja.Undefined()
	})
	_ = console.Set("warn", func(call goja.FunctionCall) goja.Value {
		log.Warn(formatArgs(call.Arguments), zap.String("source", "console"))
		return goja.Undefined()
	})
	_ = console.Set("error", func(call goja.FunctionCall) goja.Value {
		log.Error(formatArgs(call.Arguments), zap.String("source", "console"))
		return goja.Undefined()
	})
	_ = vm.Set("console", console)
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
