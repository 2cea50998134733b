// agvdmock serves a fake AGVD service over HTTP for offline development: the
// same auth and GraphQL endpoints the real deployment exposes, backed by an
// in-memory fixture table that can be extended from a CSV file.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/interpose/middleware"
	"github.com/justinas/alice"
	"gopkg.in/guregu/null.v3"

	"github.com/h3abionet/agvd"
	"github.com/h3abionet/agvd/agvdtest"
	_ "github.com/h3abionet/agvd/buildinfo/buildinfoprint"
	"github.com/h3abionet/agvd/variantfile"
	"github.com/h3abionet/agvd/variantid"
)

func main() {
	var (
		port     int
		fixtures string
		token    string
		userID   string
		password string
	)

	flag.IntVar(&port, "port", 8432, "Port to listen on.")
	flag.StringVar(&fixtures, "fixtures", "", "Optional CSV of extra fixtures: variant_id, african_maf, and any number of <NAME>_MAF cluster columns.")
	flag.StringVar(&token, "token", agvdtest.DefaultToken, "API token the mock accepts.")
	flag.StringVar(&userID, "user", agvdtest.DefaultUser, "Login name the mock accepts.")
	flag.StringVar(&password, "password", agvdtest.DefaultPassword, "Password for --user.")
	flag.Parse()

	srv := agvdtest.New()
	srv.AllowToken(token)
	srv.AllowLogin(userID, password)

	if fixtures != "" {
		n, err := loadFixtures(srv, fixtures)
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("Loaded %d fixtures from %s\n", n, fixtures)
	}

	handler := alice.New(middleware.GorillaLog()).Then(srv.Handler())

	log.Printf("Mock AGVD listening on :%d\n", port)
	log.Fatalln(http.ListenAndServe(fmt.Sprintf(":%d", port), handler))
}

// loadFixtures adds each row of the CSV to the server, on top of the
// built-in set. Identifiers that parse are stored in their wire form so
// queries in any accepted spelling can find them.
func loadFixtures(srv *agvdtest.Server, path string) (int, error) {
	table, err := variantfile.ReadTable(path)
	if err != nil {
		return 0, err
	}

	type clusterColumn struct {
		name string
		col  int
	}

	idCol, mafCol := -1, -1
	var clusterCols []clusterColumn
	for i, name := range table.Header {
		switch lower := strings.ToLower(strings.TrimSpace(name)); {
		case lower == "variant_id":
			idCol = i
		case lower == "african_maf":
			mafCol = i
		case strings.HasSuffix(lower, "_maf"):
			clusterCols = append(clusterCols, clusterColumn{name: name[:len(name)-len("_maf")], col: i})
		}
	}
	if idCol < 0 || mafCol < 0 {
		return 0, fmt.Errorf("fixture file %s needs variant_id and african_maf columns, got %v", path, table.Header)
	}

	n := 0
	for _, row := range table.Rows {
		if idCol >= len(row) || strings.TrimSpace(row[idCol]) == "" {
			continue
		}

		fixture := agvdtest.Fixture{VariantID: strings.TrimSpace(row[idCol])}
		if id, err := variantid.Parse(fixture.VariantID); err == nil {
			fixture.VariantID = id.WireID()
		}

		if mafCol < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[mafCol]), 64); err == nil {
				fixture.AfricanMAF = null.FloatFrom(v)
			}
		}

		for _, cc := range clusterCols {
			if cc.col >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[cc.col]), 64)
			if err != nil {
				continue
			}
			fixture.Clusters = append(fixture.Clusters, agvd.ClusterMAF{Name: cc.name, MAF: null.FloatFrom(v)})
		}

		srv.Add(fixture)
		n++
	}

	return n, nil
}
