package epiatlas

import (
	"log"
	"sort"

	"github.com/epiclass/epiatlas/epi-go/metadata"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// Group is a leader file and the follower files of the same physical sample.
type Group struct {
	Leader     string
	LeaderType string
	// Followers and FollowerTypes are in configured follower order; types
	// absent for the sample are skipped.
	Followers     []string
	FollowerTypes []string
}

// GroupMap maps leader md5s to their group.
type GroupMap map[string]Group

// FollowerMD5s returns the md5s of every follower, sorted.
func (g GroupMap) FollowerMD5s() []string {
	var md5s []string
	for _, group := range g {
		md5s = append(md5s, group.Followers...)
	}
	sort.Strings(md5s)
	return md5s
}

// DiscoverGroups groups the records of accepted track types by uuid and
// attaches, to every leader, the followers present for the same uuid. When a
// uuid has several files of one track type the smallest md5 is kept.
func DiscoverGroups(catalog *metadata.Catalog, cfg *TrackConfig) (GroupMap, error) {
	accepted := make(map[string]bool)
	for _, t := range cfg.Accepted() {
		accepted[t] = true
	}

	byUUID := make(map[string]map[string]string)
	var uuids []string
	for _, r := range catalog.Records() {
		if !accepted[r.TrackType] {
			continue
		}
		if r.UUID == "" {
			return nil, errors.Integrity("%s (%s) has no uuid", r.MD5, r.TrackType)
		}
		tracks, ok := byUUID[r.UUID]
		if !ok {
			tracks = make(map[string]string)
			byUUID[r.UUID] = tracks
			uuids = append(uuids, r.UUID)
		}
		if kept, ok := tracks[r.TrackType]; ok {
			log.Printf("warning: uuid %s has several %s files, keeping %s and ignoring %s", r.UUID, r.TrackType, kept, r.MD5)
			continue
		}
		tracks[r.TrackType] = r.MD5
	}

	groups := make(GroupMap)
	for _, uuid := range uuids {
		tracks := byUUID[uuid]
		for _, rule := range cfg.Rules() {
			if !rule.Leader {
				continue
			}
			leader, ok := tracks[rule.TrackType]
			if !ok {
				continue
			}
			g := Group{Leader: leader, LeaderType: rule.TrackType}
			for _, f := range rule.Followers {
				if md5, ok := tracks[f]; ok {
					g.Followers = append(g.Followers, md5)
					g.FollowerTypes = append(g.FollowerTypes, f)
				}
			}
			groups[leader] = g
		}
	}
	return groups, nil
}
