package diff_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/coredag/treediff/diff"
	"github.com/coredag/treediff/filemode"
	"github.com/coredag/treediff/internal/fixture"
)

type DifferSuite struct {
	suite.Suite
}

func TestDifferSuite(t *testing.T) {
	suite.Run(t, new(DifferSuite))
}

func (s *DifferSuite) TestIdenticalTreesEmitNothing() {
	src := fixture.NewMemSource()
	id := src.Tree([]fixture.Entry{
		{Name: "a", Content: "a"},
		{Name: "dir", Sub: []fixture.Entry{{Name: "c", Content: "c"}}},
	})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FullPath)
	err := d.DiffIDs(id, id, rec)
	s.NoError(err)
	s.Empty(rec.Events)
}

func (s *DifferSuite) TestModificationWithLineInsert() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{{Name: "a", Content: "a\n"}})
	b := src.Tree([]fixture.Entry{{Name: "a", Content: "a\na1\n"}})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FullPath)
	err := d.DiffIDs(a, b, rec)
	s.NoError(err)
	s.Len(rec.Events, 1)
	s.Equal(diff.Modification, rec.Events[0].Change.Kind)
	s.Equal("a", string(rec.Events[0].Location))
}

func (s *DifferSuite) TestPathTrackingFilenameOnly() {
	src := fixture.NewMemSource()
	empty := src.EmptyTree()
	b := src.Tree([]fixture.Entry{
		{Name: "a", Content: "a"},
		{Name: "b", Content: "b"},
		{Name: "d", Content: "d"},
		{Name: "dir", Sub: []fixture.Entry{{Name: "c", Content: "c"}}},
	})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FilenameOnly)
	err := d.DiffIDs(empty, b, rec)
	s.NoError(err)

	got := map[string]bool{}
	for _, e := range rec.Events {
		got[string(e.Location)] = true
	}
	s.Equal(map[string]bool{"a": true, "b": true, "c": true, "d": true}, got)
}

func (s *DifferSuite) TestPathTrackingFullPath() {
	src := fixture.NewMemSource()
	empty := src.EmptyTree()
	b := src.Tree([]fixture.Entry{
		{Name: "a", Content: "a"},
		{Name: "b", Content: "b"},
		{Name: "d", Content: "d"},
		{Name: "dir", Sub: []fixture.Entry{{Name: "c", Content: "c"}}},
	})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FullPath)
	err := d.DiffIDs(empty, b, rec)
	s.NoError(err)

	got := map[string]bool{}
	for _, e := range rec.Events {
		got[string(e.Location)] = true
	}
	s.Equal(map[string]bool{"a": true, "b": true, "d": true, "dir/c": true}, got)
}

func (s *DifferSuite) TestVisitorCancellationStopsEarly() {
	src := fixture.NewMemSource()
	empty := src.EmptyTree()
	b := src.Tree([]fixture.Entry{
		{Name: "a", Content: "a"},
		{Name: "b", Content: "b"},
		{Name: "c", Content: "c"},
	})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FilenameOnly)
	rec.CancelAfter = 2
	err := d.DiffIDs(empty, b, rec)
	s.NoError(err)
	s.Len(rec.Events, 2)
}

func (s *DifferSuite) TestDeletionAndAddition() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{{Name: "a", Content: "x"}})
	b := src.Tree([]fixture.Entry{{Name: "b", Content: "y"}})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FilenameOnly)
	err := d.DiffIDs(a, b, rec)
	s.NoError(err)
	s.Len(rec.Events, 2)

	kinds := map[diff.ChangeKind]int{}
	for _, e := range rec.Events {
		kinds[e.Change.Kind]++
	}
	s.Equal(1, kinds[diff.Deletion])
	s.Equal(1, kinds[diff.Addition])
}

func (s *DifferSuite) TestTreeReplacedByBlob() {
	src := fixture.NewMemSource()
	a := src.Tree([]fixture.Entry{
		{Name: "x", Sub: []fixture.Entry{{Name: "inner", Content: "1"}, {Name: "inner2", Content: "2"}}},
	})
	b := src.Tree([]fixture.Entry{
		{Name: "x", Content: "now a file", Mode: filemode.Blob},
	})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FilenameOnly)
	err := d.DiffIDs(a, b, rec)
	s.NoError(err)

	// two nested deletions (inner, inner2) + one addition (x)
	s.Len(rec.Events, 3)
	kinds := map[diff.ChangeKind]int{}
	for _, e := range rec.Events {
		kinds[e.Change.Kind]++
	}
	s.Equal(2, kinds[diff.Deletion])
	s.Equal(1, kinds[diff.Addition])
}

func (s *DifferSuite) TestNoChangeWhenContentIdentical() {
	// identical-content case also exercised in the rewrite package,
	// which asserts no Rewrite is produced either.
	src := fixture.NewMemSource()
	tree := src.Tree([]fixture.Entry{
		{Name: "p", Content: "same"},
		{Name: "q", Content: "same"},
	})

	d := diff.New(src, 20)
	rec := diff.NewRecorder(diff.FilenameOnly)
	err := d.DiffIDs(tree, tree, rec)
	s.NoError(err)
	s.Empty(rec.Events)
}
