package epiatlas

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTrackConfig(t *testing.T) {
	cfg := DefaultTrackConfig()
	assert.Equal(t, []string{"raw", "ctl_raw", "Unique_plusRaw", "gembs_pos"}, cfg.Primary())
	assert.Equal(t, []string{"raw", "ctl_raw", "Unique_plusRaw", "gembs_pos", "pval", "fc", "Unique_minusRaw", "gembs_neg"}, cfg.Accepted())

	assert.True(t, cfg.IsLeader("raw"))
	assert.False(t, cfg.IsLeader("ctl_raw"))
	assert.True(t, cfg.IsStandalone("ctl_raw"))
	assert.False(t, cfg.IsStandalone("pval"))
	assert.False(t, cfg.IsPrimary("pval"))
	assert.Equal(t, []string{"pval", "fc"}, cfg.Followers("raw"))
	assert.Empty(t, cfg.Followers("ctl_raw"))
	assert.Nil(t, cfg.Followers("unknown"))
}

func TestNewTrackConfigErrors(t *testing.T) {
	_, err := NewTrackConfig([]TrackRule{{TrackType: "raw", Leader: true}, {TrackType: "raw"}})
	assert.Error(t, err)

	_, err = NewTrackConfig([]TrackRule{{TrackType: "ctl_raw", Followers: []string{"x"}}})
	assert.Error(t, err)

	_, err = NewTrackConfig([]TrackRule{
		{TrackType: "raw", Followers: []string{"pval"}, Leader: true},
		{TrackType: "pval"},
	})
	assert.Error(t, err)

	_, err = NewTrackConfig([]TrackRule{
		{TrackType: "a", Followers: []string{"x"}, Leader: true},
		{TrackType: "b", Followers: []string{"x"}, Leader: true},
	})
	assert.Error(t, err)

	_, err = NewTrackConfig([]TrackRule{{}})
	assert.Error(t, err)
}

func TestLoadTrackConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tracks.yaml")
	content := `
- track_type: raw
  followers: [fc]
  leader: true
- track_type: ctl_raw
`
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadTrackConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"raw", "ctl_raw", "fc"}, cfg.Accepted())
	assert.True(t, cfg.IsLeader("raw"))
}
