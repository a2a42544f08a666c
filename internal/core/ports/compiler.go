package ports

import (
	"context"
	"io"

	"go.trai.ch/forge/internal/core/domain"
)

// Compiler wraps the external compiler used for compile categories.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Init runs the configured init command once, in dir.
	Init(ctx context.Context, cfg domain.CompilerConfig, dir string, out io.Writer) error
	// Compile compiles input into output, running in dir.
	Compile(ctx context.Context, cfg domain.CompilerConfig, dir, input, output string, out io.Writer) error
}
