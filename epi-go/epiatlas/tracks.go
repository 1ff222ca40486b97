// Package epiatlas builds cross-validation folds over EpiAtlas signal files.
// Fold membership is decided on one leader track per physical sample; the
// follower tracks of a leader (e.g. pval and fc for raw) always travel with it.
package epiatlas

import (
	"github.com/epiclass/epiatlas/epi-golib/errors"
	"github.com/epiclass/epiatlas/epi-golib/serialization"
)

// TrackRule describes a primary track type and the follower track types
// attached to it, in output order.
type TrackRule struct {
	TrackType string   `json:"track_type" yaml:"track_type"`
	Followers []string `json:"followers" yaml:"followers"`
	Leader    bool     `json:"leader" yaml:"leader"`
}

// DefaultTrackRules is the EpiAtlas track table.
var DefaultTrackRules = []TrackRule{
	{TrackType: "raw", Followers: []string{"pval", "fc"}, Leader: true},
	{TrackType: "ctl_raw"},
	{TrackType: "Unique_plusRaw", Followers: []string{"Unique_minusRaw"}, Leader: true},
	{TrackType: "gembs_pos", Followers: []string{"gembs_neg"}, Leader: true},
}

// TrackConfig indexes a track table.
type TrackConfig struct {
	rules    []TrackRule
	primary  map[string]int
	follower map[string]string
}

// DefaultTrackConfig returns the config of DefaultTrackRules.
func DefaultTrackConfig() *TrackConfig {
	cfg, err := NewTrackConfig(DefaultTrackRules)
	if err != nil {
		panic(err)
	}
	return cfg
}

// NewTrackConfig validates a track table: a track type appears once, either
// as a primary type or as the follower of one leader, and only leaders have
// followers.
func NewTrackConfig(rules []TrackRule) (*TrackConfig, error) {
	cfg := &TrackConfig{
		rules:    rules,
		primary:  make(map[string]int),
		follower: make(map[string]string),
	}
	for i, r := range rules {
		if r.TrackType == "" {
			return nil, errors.Config("track rule %d has no track type", i)
		}
		if _, ok := cfg.primary[r.TrackType]; ok {
			return nil, errors.Config("track type %s configured twice", r.TrackType)
		}
		if !r.Leader && len(r.Followers) > 0 {
			return nil, errors.Config("standalone track type %s cannot have followers", r.TrackType)
		}
		cfg.primary[r.TrackType] = i
	}
	for _, r := range rules {
		for _, f := range r.Followers {
			if _, ok := cfg.primary[f]; ok {
				return nil, errors.Config("follower %s of %s is also a primary track type", f, r.TrackType)
			}
			if other, ok := cfg.follower[f]; ok {
				return nil, errors.Config("follower %s configured for both %s and %s", f, other, r.TrackType)
			}
			cfg.follower[f] = r.TrackType
		}
	}
	return cfg, nil
}

// LoadTrackConfig reads a track table from a .yaml or .json file holding a
// list of rules.
func LoadTrackConfig(path string) (*TrackConfig, error) {
	var rules []TrackRule
	if err := serialization.Decode(path, &rules); err != nil {
		return nil, errors.Wrapf(err, "error loading track table")
	}
	return NewTrackConfig(rules)
}

// Rules returns the track table.
func (c *TrackConfig) Rules() []TrackRule {
	return c.rules
}

// Primary returns the leader and standalone track types, in table order.
func (c *TrackConfig) Primary() []string {
	out := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r.TrackType)
	}
	return out
}

// Accepted returns the primary track types followed by every follower type.
func (c *TrackConfig) Accepted() []string {
	out := c.Primary()
	for _, r := range c.rules {
		out = append(out, r.Followers...)
	}
	return out
}

// IsPrimary returns true for leader and standalone track types.
func (c *TrackConfig) IsPrimary(trackType string) bool {
	_, ok := c.primary[trackType]
	return ok
}

// IsLeader returns true for track types deciding the fold of their followers.
func (c *TrackConfig) IsLeader(trackType string) bool {
	i, ok := c.primary[trackType]
	return ok && c.rules[i].Leader
}

// IsStandalone returns true for primary track types that are not leaders.
func (c *TrackConfig) IsStandalone(trackType string) bool {
	i, ok := c.primary[trackType]
	return ok && !c.rules[i].Leader
}

// Followers returns the follower types of a primary track type, in order.
func (c *TrackConfig) Followers(trackType string) []string {
	i, ok := c.primary[trackType]
	if !ok {
		return nil
	}
	return c.rules[i].Followers
}
