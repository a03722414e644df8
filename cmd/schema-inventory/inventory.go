package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// rawDocuments maps each upstream document to its glob under the raw root.
var rawDocuments = []struct {
	Name string
	Glob string
}{
	{"bootstrap-static", "bootstrap/bootstrap-static.json"},
	{"fixtures", "fixtures/all.json"},
	{"fixtures-gw", "fixtures/gw/*.json"},
	{"event-live", "gw/*/live.json"},
	{"entry", "entry/*/entry.json"},
	{"entry-history", "entry/*/history.json"},
	{"entry-transfers", "entry/*/transfers.json"},
	{"entry-picks", "entry/*/gw/*/picks.json"},
	{"league-standings", "league/*/standings/*.json"},
}

type typeSet map[string]struct{}

type Inventory struct {
	GeneratedAtUTC string     `json:"generated_at_utc"`
	RawRoot        string     `json:"raw_root"`
	Endpoints      []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	Name         string  `json:"name"`
	FilesScanned int     `json:"files_scanned"`
	Fields       []Field `json:"fields"`
	// Mixed lists paths seen with more than one non-null type, e.g. a
	// number that is sometimes sent as a string.
	Mixed []string `json:"mixed,omitempty"`
}

type Field struct {
	Path  string   `json:"path"`
	Types []string `json:"types"`
}

// buildInventory scans up to maxFiles documents per endpoint (0 = all).
// Unreadable files are logged and skipped.
func buildInventory(rawRoot string, maxFiles int, now time.Time, log logrus.FieldLogger) Inventory {
	inv := Inventory{
		GeneratedAtUTC: now.UTC().Format(time.RFC3339),
		RawRoot:        rawRoot,
		Endpoints:      make([]Endpoint, 0, len(rawDocuments)),
	}
	for _, doc := range rawDocuments {
		files, err := filepath.Glob(filepath.Join(rawRoot, filepath.FromSlash(doc.Glob)))
		if err != nil {
			log.WithError(err).WithField("endpoint", doc.Name).Warn("bad glob")
			continue
		}
		sort.Strings(files)
		if maxFiles > 0 && len(files) > maxFiles {
			files = files[:maxFiles]
		}
		if len(files) == 0 {
			log.WithField("endpoint", doc.Name).Debug("no files")
			continue
		}

		schema := make(map[string]typeSet)
		scanned := 0
		for _, f := range files {
			raw, err := os.ReadFile(f)
			if err != nil {
				log.WithError(err).WithField("file", f).Warn("read failed")
				continue
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				log.WithError(err).WithField("file", f).Warn("invalid json")
				continue
			}
			walkSchema(v, "$", schema)
			scanned++
		}
		ep := Endpoint{Name: doc.Name, FilesScanned: scanned}
		ep.Fields, ep.Mixed = summarize(schema)
		inv.Endpoints = append(inv.Endpoints, ep)
	}
	return inv
}

// walkSchema records the JSON type at every path. Every array element is
// visited so type variance across rows is caught.
func walkSchema(v any, path string, schema map[string]typeSet) {
	switch x := v.(type) {
	case map[string]any:
		addType(schema, path, "object")
		for k, child := range x {
			walkSchema(child, path+"."+k, schema)
		}
	case []any:
		addType(schema, path, "array")
		for _, child := range x {
			walkSchema(child, path+"[]", schema)
		}
	case string:
		addType(schema, path, "string")
	case bool:
		addType(schema, path, "bool")
	case float64:
		addType(schema, path, "number")
	case nil:
		addType(schema, path, "null")
	default:
		addType(schema, path, fmt.Sprintf("%T", v))
	}
}

func addType(schema map[string]typeSet, path, typ string) {
	set, ok := schema[path]
	if !ok {
		set = make(typeSet)
		schema[path] = set
	}
	set[typ] = struct{}{}
}

func summarize(schema map[string]typeSet) ([]Field, []string) {
	paths := make([]string, 0, len(schema))
	for p := range schema {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fields := make([]Field, 0, len(paths))
	var mixed []string
	for _, p := range paths {
		types := make([]string, 0, len(schema[p]))
		nonNull := 0
		for t := range schema[p] {
			types = append(types, t)
			if t != "null" {
				nonNull++
			}
		}
		sort.Strings(types)
		fields = append(fields, Field{Path: p, Types: types})
		if nonNull > 1 {
			mixed = append(mixed, p)
		}
	}
	return fields, mixed
}
