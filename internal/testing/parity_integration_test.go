package harness_test

import (
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/jacoelho/xaml"
	harness "github.com/jacoelho/xaml/internal/testing"
	"github.com/jacoelho/xaml/pkg/catalog"
)

type facadeEngine struct{}

func (facadeEngine) Load(c catalog.Catalog, r io.Reader) (any, error) {
	return xaml.Load(r, xaml.NewLoadOptions().WithCatalog(c))
}

func TestParityFacadeAndStages(t *testing.T) {
	fsys := os.DirFS("testdata")
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		suite, c, err := harness.LoadSuite(fsys, name)
		if err != nil {
			t.Fatalf("LoadSuite(%s) error = %v", name, err)
		}
		for _, tc := range suite.Cases {
			t.Run(tc.Name, func(t *testing.T) {
				diff := harness.Compare(facadeEngine{}, harness.Stages{}, c, tc)
				if !diff.Equal() {
					t.Fatalf("facade and stages disagree:\nfacade: %+v\nstages: %+v", diff.Left, diff.Right)
				}
			})
		}
	}
}

func TestParityDetectsDivergence(t *testing.T) {
	suite, c, err := harness.LoadSuite(os.DirFS("testdata"), "pipeline.yaml")
	if err != nil {
		t.Fatal(err)
	}
	tc := suite.Cases[0]
	tc.Markup = `<Root xmlns="urn:g" Title="x"/>`
	left := harness.RunCase(harness.Stages{}, c, tc)
	tc.Markup = `<Root xmlns="urn:g" Title="y"/>`
	right := harness.RunCase(harness.Stages{}, c, tc)
	if harness.Equivalent(left, right) {
		t.Fatal("Equivalent() = true, want false")
	}
}
