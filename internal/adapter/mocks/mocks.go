// Package mocks provides testify mocks of the adapter interfaces.
package mocks

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"

	"vuec.dev/pkg/vuec/internal/adapter"
	m "vuec.dev/pkg/vuec/internal/model"
)

// MockCompilerAdapter is a mock of adapter.CompilerAdapter.
type MockCompilerAdapter struct {
	mock.Mock
}

// CompileSFC records the call and returns the configured result.
func (c *MockCompilerAdapter) CompileSFC(ctx context.Context, source []byte, req m.CompileRequest) (m.CompileResult, error) {
	args := c.Called(ctx, source, req)
	return args.Get(0).(m.CompileResult), args.Error(1)
}

// Close records the call.
func (c *MockCompilerAdapter) Close(ctx context.Context) error {
	return c.Called(ctx).Error(0)
}

// MockCompilerLoader is a mock of adapter.CompilerLoader.
type MockCompilerLoader struct {
	mock.Mock
}

// Location records the call.
func (l *MockCompilerLoader) Location() string {
	return l.Called().String(0)
}

// Load records the call and returns the configured compiler.
func (l *MockCompilerLoader) Load(ctx context.Context) (adapter.CompilerAdapter, error) {
	args := l.Called(ctx)

	compiler, _ := args.Get(0).(adapter.CompilerAdapter)

	return compiler, args.Error(1)
}

// MockSourceFSAdapter is a mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

// Walk records the call.
func (f *MockSourceFSAdapter) Walk(root m.Path, recursive bool, fn adapter.FilepathWalkFunc) error {
	return f.Called(root, recursive, fn).Error(0)
}

// ReadFile records the call.
func (f *MockSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	args := f.Called(path)

	content, _ := args.Get(0).([]byte)

	return content, args.Error(1)
}

// HashFile records the call.
func (f *MockSourceFSAdapter) HashFile(path m.Path) (string, error) {
	args := f.Called(path)
	return args.String(0), args.Error(1)
}

// FileInfo records the call.
func (f *MockSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	args := f.Called(path)

	info, _ := args.Get(0).(os.FileInfo)

	return info, args.Error(1)
}

// WriteFile records the call.
func (f *MockSourceFSAdapter) WriteFile(path m.Path, content []byte) error {
	return f.Called(path, content).Error(0)
}

// RelPath records the call.
func (f *MockSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	args := f.Called(base, target)
	return args.Get(0).(m.Path), args.Error(1)
}

// JoinPath records the call.
func (f *MockSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return f.Called(elem).Get(0).(m.Path)
}

// AbsPath records the call.
func (f *MockSourceFSAdapter) AbsPath(path m.Path) (m.Path, error) {
	args := f.Called(path)
	return args.Get(0).(m.Path), args.Error(1)
}

// MockManifestStore is a mock of adapter.ManifestStore.
type MockManifestStore struct {
	mock.Mock
}

// LoadManifest records the call.
func (s *MockManifestStore) LoadManifest(dir m.Path) (m.Manifest, error) {
	args := s.Called(dir)
	return args.Get(0).(m.Manifest), args.Error(1)
}

// SaveManifest records the call.
func (s *MockManifestStore) SaveManifest(dir m.Path, manifest m.Manifest) error {
	return s.Called(dir, manifest).Error(0)
}

var (
	_ adapter.CompilerAdapter = (*MockCompilerAdapter)(nil)
	_ adapter.CompilerLoader  = (*MockCompilerLoader)(nil)
	_ adapter.SourceFSAdapter = (*MockSourceFSAdapter)(nil)
	_ adapter.ManifestStore   = (*MockManifestStore)(nil)
)
