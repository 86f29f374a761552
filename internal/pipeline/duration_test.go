package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDuration(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("mp3"), 0o644))
	log := logger.NewNop()
	ctx := context.Background()

	probed := &fakeEncoder{audioLength: 4.5}
	broken := &fakeEncoder{}

	assert.Equal(t, 4.5, ResolveDuration(ctx, probed, audio, 5, log))
	assert.Equal(t, 5.0, ResolveDuration(ctx, probed, "", 5, log))
	assert.Equal(t, 8.0, ResolveDuration(ctx, probed, filepath.Join(t.TempDir(), "missing.mp3"), 8, log))
	assert.Equal(t, 6.0, ResolveDuration(ctx, broken, audio, 6, log))
	assert.Equal(t, DefaultSlideDuration, ResolveDuration(ctx, broken, audio, 0, log))
	assert.Equal(t, DefaultSlideDuration, ResolveDuration(ctx, broken, "", math.NaN(), log))
	assert.Equal(t, DefaultSlideDuration, ResolveDuration(ctx, broken, "", math.Inf(1), log))
	assert.Equal(t, DefaultSlideDuration, ResolveDuration(ctx, broken, "", -3, log))
}
