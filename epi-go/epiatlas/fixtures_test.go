package epiatlas

import (
	"fmt"
	"testing"

	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-go/signal"
	"github.com/stretchr/testify/require"
)

type testGroup struct {
	uuid   string
	assay  string
	tracks []string
}

func md5Of(uuid, trackType string) string {
	return fmt.Sprintf("%s-%s", uuid, trackType)
}

func buildCatalog(groups []testGroup) (*metadata.Catalog, signal.Store) {
	store := make(signal.Store)
	var records []*metadata.Record
	for i, g := range groups {
		for j, tt := range g.tracks {
			md5 := md5Of(g.uuid, tt)
			records = append(records, &metadata.Record{
				MD5:        md5,
				TrackType:  tt,
				UUID:       g.uuid,
				Categories: map[string]string{"assay": g.assay},
			})
			store[md5] = []float32{float32(i), float32(j)}
		}
	}
	return metadata.New(records...), store
}

func trio(uuid, assay string) testGroup {
	return testGroup{uuid: uuid, assay: assay, tracks: []string{"raw", "pval", "fc"}}
}

func newTestDataset(t *testing.T, groups []testGroup) *TrackDataset {
	catalog, store := buildCatalog(groups)
	td, err := NewTrackDataset(catalog, store, Options{Category: "assay", Oversample: true})
	require.NoError(t, err)
	return td
}
