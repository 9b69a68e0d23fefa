package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/coredag/treediff/diff"
	"github.com/coredag/treediff/hash"
	"github.com/coredag/treediff/internal/fixture"
	"github.com/coredag/treediff/rewrite"
)

type TrackerSuite struct {
	suite.Suite
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

// event is one emission reaching the final callback, either a
// correlated rewrite pair or a plain unmatched change.
type event struct {
	destPath string
	srcPath  string
	hasSrc   bool
}

// runRewrite diffs a against b, feeding every change through a
// Tracker built with cfg, and returns every event Emit (and the
// Visitor's immediate plain-change path) ultimately produced.
func runRewrite(src *fixture.MemSource, a, b hash.ObjectID, cfg rewrite.Config) []event {
	d := diff.New(src, 20)
	tracker := rewrite.NewTracker(cfg, src, nil)

	var events []event
	v := rewrite.NewVisitor(diff.FullPath, tracker, func(dest rewrite.Destination) diff.Action {
		events = append(events, event{destPath: string(dest.Location)})
		return diff.Continue
	})

	if err := d.DiffIDs(a, b, v); err != nil {
		panic(err)
	}

	_ = tracker.Emit(func(dest rewrite.Destination, srcP *rewrite.Source) diff.Action {
		e := event{destPath: string(dest.Location)}
		if srcP != nil {
			e.hasSrc = true
			e.srcPath = string(srcP.Location)
		}
		events = append(events, e)
		return diff.Continue
	})

	return events
}

func (s *TrackerSuite) TestIdentityRenameWithLocationTracking() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{{Name: "old", Content: "same bytes"}})
	b := src.Tree([]fixture.Entry{{Name: "new", Content: "same bytes"}})

	events := runRewrite(src, a, b, rewrite.Default())
	s.Len(events, 1)
	s.True(events[0].hasSrc)
	s.Equal("new", events[0].destPath)
	s.Equal("old", events[0].srcPath)
}

// Ambiguous identity rename resolved by stable lexicographic pairing:
// s1,s2,s3 deleted with identical content, b1,b2 added with that same
// content plus z added with different content. s1->b1 and s2->b2 pair
// off (first unemitted match found, in sorted walk order); s3 is left
// as a plain deletion, z as a plain addition.
func (s *TrackerSuite) TestAmbiguousIdentityRenamePairsStably() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{
		{Name: "s1", Content: "shared"},
		{Name: "s2", Content: "shared"},
		{Name: "s3", Content: "shared"},
	})
	b := src.Tree([]fixture.Entry{
		{Name: "b1", Content: "shared"},
		{Name: "b2", Content: "shared"},
		{Name: "z", Content: "different"},
	})

	events := runRewrite(src, a, b, rewrite.Default())

	renamed := 0
	plainAdds := map[string]bool{}
	plainDels := map[string]bool{}
	for _, e := range events {
		if e.hasSrc {
			renamed++
			continue
		}
		switch e.destPath {
		case "b1", "b2", "z":
			plainAdds[e.destPath] = true
		case "s1", "s2", "s3":
			plainDels[e.destPath] = true
		}
	}

	s.Equal(2, renamed)
	s.True(plainAdds["z"])
	s.Len(plainAdds, 1)
	s.Len(plainDels, 1)
}

// Identical content at different paths on both sides produces no
// rewrite and no change at all, since nothing differs between the
// two trees' leaf sets.
func (s *TrackerSuite) TestIdenticalTreesProduceNoRewrite() {
	src := fixture.NewMemSource()
	tree := src.Tree([]fixture.Entry{
		{Name: "p", Content: "same"},
		{Name: "q", Content: "same"},
	})

	events := runRewrite(src, tree, tree, rewrite.Default())
	s.Empty(events)
}

// Rewrite law: similarity below threshold does not pair.
func (s *TrackerSuite) TestSimilarityBelowThresholdDoesNotPair() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{{Name: "old", Content: "line1\nline2\nline3\nline4\n"}})
	b := src.Tree([]fixture.Entry{{Name: "new", Content: "totally different content here\n"}})

	events := runRewrite(src, a, b, rewrite.Default())
	for _, e := range events {
		s.False(e.hasSrc, "expected no similarity match above threshold")
	}
	s.Len(events, 2)
}

// Rewrite law: similarity above threshold pairs as a rename even
// without identical bytes.
func (s *TrackerSuite) TestSimilarityAboveThresholdPairs() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{{Name: "old", Content: "line1\nline2\nline3\nline4\n"}})
	b := src.Tree([]fixture.Entry{{Name: "new", Content: "line1\nline2\nline3\nline4\nline5\n"}})

	events := runRewrite(src, a, b, rewrite.Default())
	s.Len(events, 1)
	s.True(events[0].hasSrc)
	s.Equal("new", events[0].destPath)
	s.Equal("old", events[0].srcPath)
}

// Rewrite law: percentage 1.0 disables the similarity pass entirely,
// falling back to identity-only matching.
func (s *TrackerSuite) TestPercentageOneDisablesSimilarity() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{{Name: "old", Content: "line1\nline2\nline3\n"}})
	b := src.Tree([]fixture.Entry{{Name: "new", Content: "line1\nline2\nline3\nline4\n"}})

	one := float32(1.0)
	cfg := rewrite.Default()
	cfg.Percentage = &one

	events := runRewrite(src, a, b, cfg)
	for _, e := range events {
		s.False(e.hasSrc)
	}
}

// Rewrite law: a candidate-pair count beyond Limit forces
// identity-only matching (Pass B skipped wholesale).
func (s *TrackerSuite) TestLimitSkipsSimilarityPass() {
	src := fixture.NewMemSource()
	var aEntries, bEntries []fixture.Entry
	for i := 0; i < 4; i++ {
		aEntries = append(aEntries, fixture.Entry{Name: string(rune('a' + i)), Content: "line1\nline2\nline3\n"})
	}
	for i := 0; i < 4; i++ {
		bEntries = append(bEntries, fixture.Entry{Name: string(rune('m' + i)), Content: "line1\nline2\nline3\nline4\n"})
	}
	a := src.Tree(aEntries)
	b := src.Tree(bEntries)

	cfg := rewrite.Default()
	cfg.Limit = 1 // 4 adds * 4 dels = 16 > 1, forces identity-only

	events := runRewrite(src, a, b, cfg)
	for _, e := range events {
		s.False(e.hasSrc, "similarity pairing should be suppressed over the candidate limit")
	}
}

// Rewrite law: copy tracking pairs an Addition against a still-live
// (unemitted, non-Deletion) item — here a Modification — rather than
// only against Deletions, and the source stays unemitted so it is
// also separately reported as its own Modification.
func (s *TrackerSuite) TestCopyTrackingUsesLiveSource() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{{Name: "orig", Content: "base\nline2\n"}})
	b := src.Tree([]fixture.Entry{
		{Name: "orig", Content: "shared payload\n"},
		{Name: "copy1", Content: "shared payload\n"},
	})

	cfg := rewrite.Default()
	cfg.Copies = &rewrite.CopyConfig{Source: rewrite.FromSetOfChangedFiles}

	events := runRewrite(src, a, b, cfg)

	var copyEvent, origEvent *event
	for i := range events {
		e := &events[i]
		switch {
		case e.hasSrc && e.destPath == "copy1":
			copyEvent = e
		case !e.hasSrc && e.destPath == "orig":
			origEvent = e
		}
	}

	s.Require().NotNil(copyEvent, "expected copy1 to correlate against a live source")
	s.Equal("orig", copyEvent.srcPath)
	s.Require().NotNil(origEvent, "orig's own Modification must still surface since a copy source is never marked emitted")
}

func (s *TrackerSuite) TestFromMapDisabled() {
	_, ok, err := rewrite.FromMap(map[string]string{"diff.renames": "false"})
	s.NoError(err)
	s.False(ok)
}

func (s *TrackerSuite) TestFromMapCopies() {
	cfg, ok, err := rewrite.FromMap(map[string]string{"diff.renames": "copies", "diff.renameLimit": "250"})
	s.NoError(err)
	s.True(ok)
	s.NotNil(cfg.Copies)
	s.Equal(250, cfg.Limit)
}

func (s *TrackerSuite) TestMergeKeepsDefaultsForZeroValues() {
	cfg, err := rewrite.Merge(rewrite.Config{})
	s.NoError(err)
	s.NotNil(cfg.Percentage)
	s.InDelta(0.5, *cfg.Percentage, 0.0001)
	s.Equal(1000, cfg.Limit)
}
