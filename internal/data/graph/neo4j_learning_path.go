package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/neo4jdb"
)

type learningPathGraph struct {
	path     map[string]any
	stages   []map[string]any
	topics   []map[string]any
	contains []map[string]any
	prereqs  []map[string]any
}

// buildLearningPathGraph flattens a path into UNWIND parameter rows. Topic
// nodes are keyed by learning node id so paths that share a topic share the
// node; topics without a node id fall back to their normalized name.
func buildLearningPathGraph(view *learning.PathView, nodeIDs map[string]uuid.UUID, now string) learningPathGraph {
	pathID := view.ID.String()
	g := learningPathGraph{
		path: map[string]any{
			"id":                  pathID,
			"user_id":             view.UserID.String(),
			"role_type":           view.RoleType,
			"seniority":           view.Seniority,
			"domain_focus":        view.DomainFocus,
			"coverage_percentage": view.CoveragePercentage,
			"created_at":          view.CreatedAt.UTC().Format(time.RFC3339Nano),
			"synced_at":           now,
		},
	}

	topicKey := func(name string) string {
		norm := learning.NormalizeName(name)
		if id, ok := nodeIDs[norm]; ok && id != uuid.Nil {
			return id.String()
		}
		return "name:" + norm
	}

	seen := map[string]bool{}
	for _, st := range view.Stages {
		stageID := fmt.Sprintf("%s:%d", pathID, st.StageNumber)
		g.stages = append(g.stages, map[string]any{
			"id":           stageID,
			"path_id":      pathID,
			"stage_number": int64(st.StageNumber),
			"stage_name":   st.StageName,
		})
		for i, t := range st.Topics {
			key := topicKey(t.Name)
			if !seen[key] {
				seen[key] = true
				g.topics = append(g.topics, map[string]any{
					"id":              key,
					"name":            t.Name,
					"normalized_name": learning.NormalizeName(t.Name),
					"synced_at":       now,
				})
			}
			g.contains = append(g.contains, map[string]any{
				"stage_id":   stageID,
				"topic_id":   key,
				"position":   int64(i),
				"priority":   string(t.Priority),
				"tier":       string(t.Tier),
				"covered":    t.Covered,
				"confidence": t.Confidence,
			})
		}
	}

	for _, e := range view.Dependencies {
		g.prereqs = append(g.prereqs, map[string]any{
			"from_id": topicKey(e.FromTopic),
			"to_id":   topicKey(e.ToTopic),
			"reason":  e.Reason,
			"path_id": pathID,
		})
	}
	return g
}

// UpsertLearningPathGraph mirrors a persisted learning path into neo4j. A nil
// client is a no-op.
func UpsertLearningPathGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, view *learning.PathView, nodeIDs map[string]uuid.UUID) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if view == nil || view.ID == uuid.Nil {
		return fmt.Errorf("neo4j learning path sync: missing path")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	g := buildLearningPathGraph(view, nodeIDs, time.Now().UTC().Format(time.RFC3339Nano))

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	for _, stmt := range []string{
		`CREATE CONSTRAINT learning_path_id_unique IF NOT EXISTS FOR (p:LearningPath) REQUIRE p.id IS UNIQUE`,
		`CREATE CONSTRAINT path_topic_id_unique IF NOT EXISTS FOR (t:PathTopic) REQUIRE t.id IS UNIQUE`,
	} {
		if res, err := session.Run(ctx, stmt, nil); err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
		} else {
			_, _ = res.Consume(ctx)
		}
	}

	run := func(tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(tx, `
MERGE (p:LearningPath {id: $path.id})
SET p += $path
`, map[string]any{"path": g.path}); err != nil {
			return nil, err
		}
		if len(g.stages) > 0 {
			if err := run(tx, `
UNWIND $stages AS s
MATCH (p:LearningPath {id: s.path_id})
MERGE (st:PathStage {id: s.id})
SET st += s
MERGE (p)-[:HAS_STAGE]->(st)
`, map[string]any{"stages": g.stages}); err != nil {
				return nil, err
			}
		}
		if len(g.topics) > 0 {
			if err := run(tx, `
UNWIND $topics AS t
MERGE (n:PathTopic {id: t.id})
SET n += t
`, map[string]any{"topics": g.topics}); err != nil {
				return nil, err
			}
		}
		if len(g.contains) > 0 {
			if err := run(tx, `
UNWIND $rels AS r
MATCH (st:PathStage {id: r.stage_id})
MATCH (t:PathTopic {id: r.topic_id})
MERGE (st)-[c:CONTAINS]->(t)
SET c.position = r.position,
    c.priority = r.priority,
    c.tier = r.tier,
    c.covered = r.covered,
    c.confidence = r.confidence
`, map[string]any{"rels": g.contains}); err != nil {
				return nil, err
			}
		}
		if len(g.prereqs) > 0 {
			if err := run(tx, `
UNWIND $rels AS r
MATCH (a:PathTopic {id: r.from_id})
MATCH (b:PathTopic {id: r.to_id})
MERGE (a)-[e:PREREQ_OF {path_id: r.path_id}]->(b)
SET e.reason = r.reason
`, map[string]any{"rels": g.prereqs}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
