package predict

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf,
		[]string{"m1", "m2"},
		[]string{"b", "a"},
		[][]float64{{0.25, 0.75}, {0.5, 0.5}},
		[]string{"b", "a"},
	)
	require.NoError(t, err)

	expected := "md5sum,True class,Predicted class,a,b\n" +
		"m1,b,a,0.75,0.25\n" +
		"m2,a,b,0.5,0.5\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteTableMismatch(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteTable(&buf, []string{"m1"}, []string{"a"}, nil, []string{"a"}))
	assert.Error(t, WriteTable(&buf, []string{"m1"}, []string{"a"}, [][]float64{{1, 0}}, []string{"a"}))
}

func TestFoldManifestRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "predict")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	rows := []*FoldRow{
		{MD5: "m1", Split: 0, Partition: Training, Label: "a"},
		{MD5: "m2", Split: 0, Partition: Validation, Label: "b"},
		{MD5: "m1", Split: 1, Partition: Validation, Label: "a"},
	}
	path := filepath.Join(dir, "folds.csv")
	require.NoError(t, WriteFoldManifest(path, rows))

	buf, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "md5,split,partition,label\nm1,0,training,a\nm2,0,validation,b\nm1,1,validation,a\n", string(buf))

	read, err := ReadFoldManifest(path)
	require.NoError(t, err)
	assert.Equal(t, rows, read)
}

func TestComputeMetrics(t *testing.T) {
	m, ok := ComputeMetrics([]int{0, 0, 1, 1}, []int{0, 1, 1, 1}, 3)
	require.True(t, ok)
	assert.Equal(t, 4, m.N)
	assert.InDelta(t, 0.75, m.Accuracy, 1e-9)
	// class 0: f1 2/3, class 1: f1 0.8, class 2 absent
	assert.InDelta(t, (2.0/3+0.8)/2, m.MacroF1, 1e-9)

	_, ok = ComputeMetrics(nil, nil, 3)
	assert.False(t, ok)

	_, ok = ComputeMetrics([]int{0}, []int{5}, 3)
	assert.False(t, ok)
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 1, Argmax([]float64{0.1, 0.7, 0.7}))
	assert.Equal(t, -1, Argmax(nil))
}
