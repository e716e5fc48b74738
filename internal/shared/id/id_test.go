package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	assert.NotEqual(t, gen.Generate().String(), gen.Generate().String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestTypedIDGeneration(t *testing.T) {
	tests := []struct {
		prefix string
		id     string
	}{
		{OperationPrefix, NewOperationID().String()},
		{RequestPrefix, NewRequestID().String()},
		{UserPrefix, NewUserID().String()},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.id, tt.prefix+"_"))
			assert.True(t, IsValid(tt.id))
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NewGenerator().GenerateString()))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("op_not-a-ulid"))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewOperationID().String())

	require.NoError(t, err)
	assert.True(t, ts.After(before))
}

func TestConcurrentGenerationIsUniqueAndSorted(t *testing.T) {
	gen := NewGenerator()
	const workers, per = 8, 200

	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, workers*per)
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				s := gen.GenerateString()
				mu.Lock()
				ids[s] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ids, workers*per)

	seq := []string{gen.GenerateString(), gen.GenerateString(), gen.GenerateString()}
	assert.True(t, sort.StringsAreSorted(seq))
}
