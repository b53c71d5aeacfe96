package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}

func TestWriteLocked(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "sub", "out.txt")
	err := WriteLocked(filePath, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.False(t, Exists(filePath+".tmp"))
}

func TestWriteLocked_ErrorKeepsPrevious(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("previous"), 0o644))

	failure := errors.New("boom")
	err := WriteLocked(filePath, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return failure
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure))

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(content))
	assert.False(t, Exists(filePath+".tmp"))
}

func TestWriteLocked_Concurrent(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "out.txt")
	var wg sync.WaitGroup
	for ii := 0; ii < 8; ii++ {
		wg.Add(1)
		go func(ii int) {
			defer wg.Done()
			err := WriteLocked(filePath, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "writer %d", ii)
				return err
			})
			assert.NoError(t, err)
		}(ii)
	}
	wg.Wait()

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Regexp(t, `^writer \d$`, string(content))
}
