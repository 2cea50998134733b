package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/h3abionet/agvd"
	"github.com/h3abionet/agvd/agvdtest"
	"github.com/h3abionet/agvd/variantid"
)

func TestLoadFixturesServesCSVRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixtures.csv")
	content := "variant_id,african_maf,WAFR_MAF,EAFR_MAF\n" +
		"rs777,0.12,0.15,0.09\n" +
		"1:200:A:G,0.33,,\n"
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	srv := agvdtest.New()
	n, err := loadFixtures(srv, path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("loaded %d fixtures, want 2", n)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := agvd.NewClient(ts.URL, agvdtest.DefaultToken)

	tests := []struct {
		raw      string
		maf      float64
		clusters int
	}{
		{"rs777", 0.12, 2},
		{"1:200:A:G", 0.33, 0},
	}
	for _, test := range tests {
		id, err := variantid.Parse(test.raw)
		if err != nil {
			t.Fatal(err)
		}

		results, err := client.VariantSearch(context.Background(), []variantid.VariantID{id}, agvd.SearchOptions{Threshold: 0.2})
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 {
			t.Fatalf("%s: got %d results, want 1", test.raw, len(results))
		}

		res := results[0]
		if !res.AfricanMAF.Valid || res.AfricanMAF.Float64 != test.maf {
			t.Errorf("%s: African MAF %+v, want %f", test.raw, res.AfricanMAF, test.maf)
		}
		if len(res.Clusters) != test.clusters {
			t.Errorf("%s: got %d clusters, want %d", test.raw, len(res.Clusters), test.clusters)
		}
	}
}

func TestLoadFixturesRejectsHeaderlessColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(path, []byte("id,freq\nrs1,0.5\n"), 0666); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFixtures(agvdtest.New(), path); err == nil {
		t.Error("expected an error for a fixture file without the required columns")
	}
}
