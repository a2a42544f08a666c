package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.Pipe = (*Pipe)(nil)

// Pipe copies or transforms files into their destination, preserving their
// layout relative to the spec's base directory.
type Pipe struct{}

// NewPipe creates a new Pipe.
func NewPipe() *Pipe {
	return &Pipe{}
}

// Run processes every file of spec. Under the tolerant policy all files are
// attempted and the failures are joined. Under fail-fast the first failure stops the pass.
func (p *Pipe) Run(ctx context.Context, spec ports.PipeSpec) (ports.PipeResult, error) {
	result := ports.PipeResult{Failed: make(map[string]error)}
	var errs []error

	for _, src := range spec.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dst, err := Destination(spec.Base, spec.DestDir, spec.Ext, src)
		if err == nil {
			var written bool
			written, err = p.process(ctx, spec.Transform, src, dst)
			if err == nil {
				if written {
					result.Written = append(result.Written, dst)
				} else {
					result.Skipped = append(result.Skipped, dst)
				}
				continue
			}
		}

		fileErr := &domain.FileError{Path: displayPath(spec.Root, src), Err: err}
		result.Failed[src] = fileErr
		errs = append(errs, fileErr)
		if spec.Policy == domain.PolicyFailFast {
			break
		}
	}

	switch len(errs) {
	case 0:
		return result, nil
	case 1:
		return result, errs[0]
	default:
		return result, errors.Join(errs...)
	}
}

func (p *Pipe) process(ctx context.Context, transform ports.Transform, src, dst string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return false, err
	}
	if transform != nil {
		return true, transform(ctx, src, dst)
	}
	if sameContent(src, dst) {
		return false, nil
	}
	return true, copyFile(src, dst)
}

// Destination maps src below base to its path below destDir. When ext is set it
// replaces the file's extension.
func Destination(base, destDir, ext, src string) (string, error) {
	rel, err := filepath.Rel(base, src)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.Annotate(domain.ErrInputResolutionFailed, "file", src, "base", base)
	}
	if ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	}
	return filepath.Join(destDir, rel), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // path comes from resolved inputs
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm) //nolint:gosec // inside output root
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func displayPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
