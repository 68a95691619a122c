package frame

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/grafo/pkg/types"
)

// File names inside a snapshot directory.
const (
	NodesFile         = "nodes.parquet"
	RelationshipsFile = "relationships.parquet"
)

// ParquetNode is the on-disk schema for a node. Labels and properties are
// JSON strings so arbitrary property maps survive the round trip.
type ParquetNode struct {
	ID         int64  `parquet:"id"`
	ElementID  string `parquet:"element_id"`
	Labels     string `parquet:"labels"`     // JSON array
	Properties string `parquet:"properties"` // JSON object
}

// ParquetRelationship is the on-disk schema for a relationship.
type ParquetRelationship struct {
	ID         int64  `parquet:"id"`
	ElementID  string `parquet:"element_id"`
	Type       string `parquet:"type"`
	StartID    int64  `parquet:"start_id"`
	EndID      int64  `parquet:"end_id"`
	Properties string `parquet:"properties"` // JSON object
}

// SnapshotWriter writes a graph snapshot as a pair of Parquet files in a
// directory.
type SnapshotWriter struct {
	baseDir string
}

// NewSnapshotWriter creates the snapshot directory if needed.
func NewSnapshotWriter(baseDir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &SnapshotWriter{baseDir: baseDir}, nil
}

// WriteNodes writes all nodes to nodes.parquet, replacing any previous
// file.
func (w *SnapshotWriter) WriteNodes(nodes []types.Node) error {
	rows := make([]ParquetNode, 0, len(nodes))
	for _, node := range nodes {
		labelsJSON, err := json.Marshal(node.Labels)
		if err != nil {
			return fmt.Errorf("failed to marshal labels for node %d: %w", node.ID, err)
		}
		propsJSON, err := json.Marshal(node.Props)
		if err != nil {
			return fmt.Errorf("failed to marshal properties for node %d: %w", node.ID, err)
		}
		rows = append(rows, ParquetNode{
			ID:         node.ID,
			ElementID:  node.ElementID,
			Labels:     string(labelsJSON),
			Properties: string(propsJSON),
		})
	}
	return parquet.WriteFile(filepath.Join(w.baseDir, NodesFile), rows)
}

// WriteRelationships writes all relationships to relationships.parquet,
// replacing any previous file.
func (w *SnapshotWriter) WriteRelationships(rels []types.Relationship) error {
	rows := make([]ParquetRelationship, 0, len(rels))
	for _, rel := range rels {
		propsJSON, err := json.Marshal(rel.Props)
		if err != nil {
			return fmt.Errorf("failed to marshal properties for relationship %d: %w", rel.ID, err)
		}
		rows = append(rows, ParquetRelationship{
			ID:         rel.ID,
			ElementID:  rel.ElementID,
			Type:       rel.Type,
			StartID:    rel.StartID,
			EndID:      rel.EndID,
			Properties: string(propsJSON),
		})
	}
	return parquet.WriteFile(filepath.Join(w.baseDir, RelationshipsFile), rows)
}

// Snapshot holds a graph read back from a snapshot directory.
type Snapshot struct {
	Nodes         []types.Node
	Relationships []types.Relationship
}

// ReadSnapshot loads the node and relationship files from dir.
func ReadSnapshot(dir string) (*Snapshot, error) {
	nodeRows, err := parquet.ReadFile[ParquetNode](filepath.Join(dir, NodesFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", NodesFile, err)
	}
	relRows, err := parquet.ReadFile[ParquetRelationship](filepath.Join(dir, RelationshipsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", RelationshipsFile, err)
	}

	snapshot := &Snapshot{
		Nodes:         make([]types.Node, 0, len(nodeRows)),
		Relationships: make([]types.Relationship, 0, len(relRows)),
	}

	for _, row := range nodeRows {
		var labels []string
		if row.Labels != "" {
			if err := json.Unmarshal([]byte(row.Labels), &labels); err != nil {
				return nil, fmt.Errorf("failed to decode labels for node %d: %w", row.ID, err)
			}
		}
		var props map[string]any
		if row.Properties != "" {
			if err := json.Unmarshal([]byte(row.Properties), &props); err != nil {
				return nil, fmt.Errorf("failed to decode properties for node %d: %w", row.ID, err)
			}
		}
		snapshot.Nodes = append(snapshot.Nodes, types.Node{
			ID:        row.ID,
			ElementID: row.ElementID,
			Labels:    labels,
			Props:     props,
		})
	}

	for _, row := range relRows {
		var props map[string]any
		if row.Properties != "" {
			if err := json.Unmarshal([]byte(row.Properties), &props); err != nil {
				return nil, fmt.Errorf("failed to decode properties for relationship %d: %w", row.ID, err)
			}
		}
		snapshot.Relationships = append(snapshot.Relationships, types.Relationship{
			ID:        row.ID,
			ElementID: row.ElementID,
			Type:      row.Type,
			StartID:   row.StartID,
			EndID:     row.EndID,
			Props:     props,
		})
	}

	return snapshot, nil
}
