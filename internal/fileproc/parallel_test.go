package fileproc

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachFile(t *testing.T) {
	files := []string{"a", "b", "c", "d"}

	results := ForEachFile(files, func(path string) (string, error) {
		return strings.ToUpper(path), nil
	})

	sort.Strings(results)
	assert.Equal(t, []string{"A", "B", "C", "D"}, results)
}

func TestForEachFileEmpty(t *testing.T) {
	results := ForEachFile(nil, func(path string) (int, error) { return 0, nil })
	assert.Nil(t, results)
}

func TestForEachFileSkipsErrors(t *testing.T) {
	files := []string{"ok1", "bad", "ok2"}

	results := ForEachFile(files, func(path string) (string, error) {
		if path == "bad" {
			return "", errors.New("boom")
		}
		return path, nil
	})

	sort.Strings(results)
	assert.Equal(t, []string{"ok1", "ok2"}, results)
}

func TestForEachFileWithProgress(t *testing.T) {
	files := []string{"a", "b", "c"}
	var ticks atomic.Int64

	ForEachFileWithProgress(files, func(path string) (struct{}, error) {
		if path == "b" {
			return struct{}{}, errors.New("boom")
		}
		return struct{}{}, nil
	}, func() { ticks.Add(1) })

	// Progress fires for failures too, so totals line up.
	assert.Equal(t, int64(3), ticks.Load())
}

func TestForEachFileWithErrors(t *testing.T) {
	files := []string{"a", "bad1", "bad2"}

	var mu sync.Mutex
	var failed []string
	ForEachFileWithErrors(files, func(path string) (string, error) {
		if strings.HasPrefix(path, "bad") {
			return "", errors.New("boom")
		}
		return path, nil
	}, func(path string, err error) {
		mu.Lock()
		failed = append(failed, path)
		mu.Unlock()
	})

	sort.Strings(failed)
	assert.Equal(t, []string{"bad1", "bad2"}, failed)
}

func TestForEachFileNWorkerBound(t *testing.T) {
	files := make([]string, 64)
	for i := range files {
		files[i] = "f"
	}

	var active, peak atomic.Int64
	ForEachFileN(files, 4, func(path string) (struct{}, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		active.Add(-1)
		return struct{}{}, nil
	}, nil, nil)

	assert.LessOrEqual(t, peak.Load(), int64(4))
}

func TestProcessingError(t *testing.T) {
	err := ProcessingError{Path: "x.go", Err: errors.New("boom")}
	assert.Equal(t, "x.go: boom", err.Error())
}
