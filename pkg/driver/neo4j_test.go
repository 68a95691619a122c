package driver

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/grafo/pkg/types"
)

func TestNeo4jConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  Neo4jConfig
		wantErr bool
	}{
		{"bolt uri", Neo4jConfig{URI: "bolt://localhost:7687"}, false},
		{"bolt+s uri", Neo4jConfig{URI: "bolt+s://example.com:7687"}, false},
		{"neo4j uri", Neo4jConfig{URI: "neo4j://localhost"}, false},
		{"neo4j+ssc uri", Neo4jConfig{URI: "neo4j+ssc://example.com"}, false},
		{"empty uri", Neo4jConfig{}, true},
		{"no scheme", Neo4jConfig{URI: "localhost:7687"}, true},
		{"http scheme", Neo4jConfig{URI: "http://localhost:7474"}, true},
		{"postgres scheme", Neo4jConfig{URI: "postgres://localhost"}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.config.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestNewNeo4jDriverRejectsBadScheme(t *testing.T) {
	t.Parallel()

	_, err := NewNeo4jDriver("http://localhost:7474", "neo4j", "password", "")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewNeo4jDriver() error = %v, want ErrInvalidConfig", err)
	}
}

func TestNewNeo4jDriverDefaultsDatabase(t *testing.T) {
	t.Parallel()

	d, err := NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "")
	if err != nil {
		t.Fatalf("NewNeo4jDriver() error = %v", err)
	}
	if d.database != DefaultDatabase {
		t.Errorf("database = %q, want %q", d.database, DefaultDatabase)
	}
	if d.Provider() != ProviderNeo4j {
		t.Errorf("Provider() = %q, want %q", d.Provider(), ProviderNeo4j)
	}
}

func TestNewNeo4jDriverWithPoolConfig(t *testing.T) {
	t.Parallel()

	d, err := NewNeo4jDriverWithConfig(&Neo4jConfig{
		URI:                   "bolt://localhost:7687",
		Username:              "neo4j",
		Password:              "password",
		MaxConnectionPoolSize: 10,
		ConnectionTimeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewNeo4jDriverWithConfig() error = %v", err)
	}
	if d == nil {
		t.Fatal("NewNeo4jDriverWithConfig() returned nil driver")
	}
}

func TestNodeFromDB(t *testing.T) {
	t.Parallel()

	dbNode := dbtype.Node{
		Id:        11,
		ElementId: "4:abc:11",
		Labels:    []string{"doctor"},
		Props:     map[string]any{"name": "Hermione", "age": int64(64)},
	}

	node := nodeFromDB(dbNode)
	if node.ID != 11 {
		t.Errorf("ID = %d, want 11", node.ID)
	}
	if node.ElementID != "4:abc:11" {
		t.Errorf("ElementID = %q", node.ElementID)
	}
	if len(node.Labels) != 1 || node.Labels[0] != "doctor" {
		t.Errorf("Labels = %v, want [doctor]", node.Labels)
	}
	if node.Props["name"] != "Hermione" {
		t.Errorf("Props[name] = %v", node.Props["name"])
	}
}

func TestRelationshipFromDB(t *testing.T) {
	t.Parallel()

	dbRel := dbtype.Relationship{
		Id:             3,
		ElementId:      "5:abc:3",
		StartId:        1,
		StartElementId: "4:abc:1",
		EndId:          2,
		EndElementId:   "4:abc:2",
		Type:           "TREATS",
		Props:          map[string]any{"since": int64(2012)},
	}

	rel := relationshipFromDB(dbRel)
	if rel.ID != 3 || rel.StartID != 1 || rel.EndID != 2 {
		t.Errorf("identity = (%d, %d, %d), want (3, 1, 2)", rel.ID, rel.StartID, rel.EndID)
	}
	if rel.Type != "TREATS" {
		t.Errorf("Type = %q, want TREATS", rel.Type)
	}
	if rel.Props["since"] != int64(2012) {
		t.Errorf("Props[since] = %v", rel.Props["since"])
	}
}

func TestConvertValueContainers(t *testing.T) {
	t.Parallel()

	dbNode := dbtype.Node{Id: 1, Labels: []string{"x"}, Props: map[string]any{}}

	converted := convertValue([]any{dbNode, int64(2), "three"})
	list, ok := converted.([]any)
	if !ok {
		t.Fatalf("convertValue() = %T, want []any", converted)
	}
	if _, ok := list[0].(types.Node); !ok {
		t.Errorf("list[0] = %T, want types.Node", list[0])
	}
	if list[1] != int64(2) || list[2] != "three" {
		t.Errorf("scalars were altered: %v", list[1:])
	}

	convertedMap := convertValue(map[string]any{"node": dbNode}).(map[string]any)
	if _, ok := convertedMap["node"].(types.Node); !ok {
		t.Errorf("map value = %T, want types.Node", convertedMap["node"])
	}
}

func TestConvertValueTemporal(t *testing.T) {
	t.Parallel()

	moment := time.Date(2021, 4, 5, 0, 0, 0, 0, time.UTC)

	got := convertValue(dbtype.Date(moment))
	converted, ok := got.(time.Time)
	if !ok {
		t.Fatalf("convertValue(Date) = %T, want time.Time", got)
	}
	if converted.Year() != 2021 || converted.Month() != time.April || converted.Day() != 5 {
		t.Errorf("converted date = %v", converted)
	}

	if _, ok := convertValue(dbtype.LocalDateTime(moment)).(time.Time); !ok {
		t.Error("convertValue(LocalDateTime) did not produce time.Time")
	}
}

func TestPathFromDB(t *testing.T) {
	t.Parallel()

	dbPath := dbtype.Path{
		Nodes: []dbtype.Node{
			{Id: 1, Labels: []string{"a"}, Props: map[string]any{}},
			{Id: 2, Labels: []string{"b"}, Props: map[string]any{}},
		},
		Relationships: []dbtype.Relationship{
			{Id: 9, StartId: 1, EndId: 2, Type: "LINKS", Props: map[string]any{}},
		},
	}

	path := pathFromDB(dbPath)
	if len(path.Nodes) != 2 || len(path.Relationships) != 1 {
		t.Fatalf("path sizes = (%d, %d), want (2, 1)", len(path.Nodes), len(path.Relationships))
	}
	if path.Relationships[0].StartID != 1 || path.Relationships[0].EndID != 2 {
		t.Errorf("relationship endpoints = (%d, %d)", path.Relationships[0].StartID, path.Relationships[0].EndID)
	}
}

func TestSummaryFromDBNil(t *testing.T) {
	t.Parallel()

	summary := summaryFromDB(nil)
	if summary == nil {
		t.Fatal("summaryFromDB(nil) = nil, want zero summary")
	}
	if summary.ContainsUpdates() {
		t.Error("zero summary should not report updates")
	}
}

func TestIsMissingProcedure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"generic error", errors.New("connection refused"), false},
		{
			"neo4j procedure not found",
			&db.Neo4jError{Code: "Neo.ClientError.Procedure.ProcedureNotFound", Msg: "no apoc"},
			true,
		},
		{
			"wrapped neo4j error",
			fmt.Errorf("query failed: %w", &db.Neo4jError{Code: "Neo.ClientError.Procedure.ProcedureNotFound", Msg: "x"}),
			true,
		},
		{
			"other neo4j error",
			&db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad cypher"},
			false,
		},
		{"memgraph message", errors.New("there is no procedure named 'apoc.periodic.iterate'"), true},
		{"unknown procedure message", errors.New("Unknown procedure apoc.merge.node"), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsMissingProcedure(tt.err); got != tt.want {
				t.Errorf("IsMissingProcedure() = %v, want %v", got, tt.want)
			}
		})
	}
}
