package ports

import (
	"context"

	"go.trai.ch/forge/internal/core/domain"
)

// Transform produces dst from src. The destination directory already exists.
type Transform func(ctx context.Context, src, dst string) error

// PipeSpec describes one pass of files through the copy/transform pipe.
type PipeSpec struct {
	// Root is the project root. Failures name files relative to it.
	Root string
	// Files are absolute source paths.
	Files []string
	// Base is the directory whose relative layout is preserved under DestDir.
	Base string
	// DestDir is the absolute destination directory.
	DestDir string
	// Ext replaces the extension of each destination file when set.
	Ext string
	// Transform is applied to each file. Nil copies the file unchanged.
	Transform Transform
	// Policy decides whether a failed file stops the pass.
	Policy domain.ErrorPolicy
}

// PipeResult reports what a pass did.
type PipeResult struct {
	Written []string
	Skipped []string
	Failed  map[string]error
}

// Pipe streams matched files into their destination.
//
//go:generate mockgen -source=pipe.go -destination=mocks/mock_pipe.go -package=mocks
type Pipe interface {
	// Run processes every file of spec. It returns an error when any file failed.
	Run(ctx context.Context, spec PipeSpec) (PipeResult, error)
}
