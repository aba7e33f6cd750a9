package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"raksha_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
)

// RelationshipService maintains the directed permission-grant graph between
// identities and answers authorization queries against it.
type RelationshipService struct {
	Dynamo DynamoAPI

	now func() time.Time
}

// NewRelationshipService builds a RelationshipService.
func NewRelationshipService(dynamo DynamoAPI) *RelationshipService {
	return &RelationshipService{Dynamo: dynamo, now: time.Now}
}

// Request creates a pending edge from one identity to another. Self-edges are
// invalid; a pending or accepted edge for the same (from, to, category) is a
// conflict. Directionality defaults by category.
func (rs *RelationshipService) Request(ctx context.Context, from, to, relType string, grants models.Grants) (*models.Relationship, error) {
	if from == "" || to == "" || relType == "" {
		return nil, fmt.Errorf("from, to and type are required: %w", models.ErrValidation)
	}
	if from == to {
		return nil, fmt.Errorf("cannot create relationship to self: %w", models.ErrValidation)
	}

	existing, err := rs.findActive(ctx, from, to, relType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("relationship already requested or exists: %w", models.ErrConflict)
	}

	now := rs.now().UTC().Format(time.RFC3339)
	rel := &models.Relationship{
		ID:          uuid.NewString(),
		From:        from,
		To:          to,
		Type:        relType,
		Directional: models.DirectionalByDefault(relType),
		Status:      models.RelationshipPending,
		Grants:      grants,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   from,
	}
	if err := rs.Dynamo.PutItem(ctx, models.RelationshipsTable, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// Respond lets the edge's recipient accept, reject, or revoke. Accept merges
// any newly supplied grants by boolean OR, so grants only ever widen. State
// transitions are enforced: accept/reject require pending, revoke requires
// accepted; anything else is a conflict.
func (rs *RelationshipService) Respond(ctx context.Context, id, responder, action string, grants models.Grants) (*models.Relationship, error) {
	if id == "" || responder == "" || action == "" {
		return nil, fmt.Errorf("relId, to and action are required: %w", models.ErrValidation)
	}
	rel, err := rs.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel.To != responder {
		return nil, fmt.Errorf("only the recipient can respond to this request: %w", models.ErrForbidden)
	}

	switch action {
	case "accept":
		if rel.Status != models.RelationshipPending {
			return nil, fmt.Errorf("cannot accept a %s relationship: %w", rel.Status, models.ErrConflict)
		}
		rel.Status = models.RelationshipAccepted
		rel.Grants = rel.Grants.Merge(grants)
	case "reject":
		if rel.Status != models.RelationshipPending {
			return nil, fmt.Errorf("cannot reject a %s relationship: %w", rel.Status, models.ErrConflict)
		}
		rel.Status = models.RelationshipRejected
	case "revoke":
		if rel.Status != models.RelationshipAccepted {
			return nil, fmt.Errorf("cannot revoke a %s relationship: %w", rel.Status, models.ErrConflict)
		}
		rel.Status = models.RelationshipRevoked
	default:
		return nil, fmt.Errorf("unknown action %q: %w", action, models.ErrValidation)
	}

	rel.UpdatedAt = rs.now().UTC().Format(time.RFC3339)
	if err := rs.Dynamo.PutItem(ctx, models.RelationshipsTable, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// ListForUser returns every edge touching an identity, newest-updated first.
func (rs *RelationshipService) ListForUser(ctx context.Context, user string) ([]models.Relationship, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required: %w", models.ErrValidation)
	}
	rels, err := rs.scan(ctx, func(r models.Relationship) bool {
		return r.From == user || r.To == user
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].UpdatedAt > rels[j].UpdatedAt })
	return rels, nil
}

// AcceptedFor returns accepted edges targeting an identity, for server-side
// notification fan-out.
func (rs *RelationshipService) AcceptedFor(ctx context.Context, user string) ([]models.Relationship, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required: %w", models.ErrValidation)
	}
	return rs.scan(ctx, func(r models.Relationship) bool {
		return r.To == user && r.Status == models.RelationshipAccepted
	})
}

// Delete physically removes an edge. Only one of its two identities may do so.
func (rs *RelationshipService) Delete(ctx context.Context, id, actor string) error {
	if id == "" {
		return fmt.Errorf("id is required: %w", models.ErrValidation)
	}
	rel, err := rs.getByID(ctx, id)
	if err != nil {
		return err
	}
	if actor == "" || (actor != rel.From && actor != rel.To) {
		return fmt.Errorf("actor not allowed to delete this relationship: %w", models.ErrForbidden)
	}
	return rs.Dynamo.DeleteItem(ctx, models.RelationshipsTable, StringKey("id", id))
}

// Authorize reports whether actor may exercise a capability against target.
// An identity always authorizes itself. Otherwise an accepted edge must carry
// the grant: directional edges only in their stated direction, non-directional
// edges in either. Grant expiry metadata is not consulted here.
func (rs *RelationshipService) Authorize(ctx context.Context, actor, capability, target string) (bool, error) {
	if actor == "" || target == "" {
		return false, nil
	}
	if actor == target {
		return true, nil
	}
	rels, err := rs.scan(ctx, func(r models.Relationship) bool {
		if r.Status != models.RelationshipAccepted {
			return false
		}
		return (r.From == actor && r.To == target) || (r.From == target && r.To == actor)
	})
	if err != nil {
		return false, err
	}
	for _, r := range rels {
		if !r.Grants.Has(capability) {
			continue
		}
		if r.From == actor && r.To == target {
			return true, nil
		}
		if !r.Directional {
			return true, nil
		}
	}
	return false, nil
}

func (rs *RelationshipService) getByID(ctx context.Context, id string) (*models.Relationship, error) {
	item, err := rs.Dynamo.GetItem(ctx, models.RelationshipsTable, StringKey("id", id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("relationship %q: %w", id, models.ErrNotFound)
	}
	var rel models.Relationship
	if err := attributevalue.UnmarshalMap(item, &rel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relationship %q: %w", id, err)
	}
	return &rel, nil
}

func (rs *RelationshipService) findActive(ctx context.Context, from, to, relType string) (*models.Relationship, error) {
	rels, err := rs.scan(ctx, func(r models.Relationship) bool {
		return r.From == from && r.To == to && r.Type == relType &&
			(r.Status == models.RelationshipPending || r.Status == models.RelationshipAccepted)
	})
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return &rels[0], nil
}

func (rs *RelationshipService) scan(ctx context.Context, keep func(models.Relationship) bool) ([]models.Relationship, error) {
	items, err := rs.Dynamo.ScanItems(ctx, models.RelationshipsTable)
	if err != nil {
		return nil, err
	}
	var rels []models.Relationship
	for _, item := range items {
		var rel models.Relationship
		if err := attributevalue.UnmarshalMap(item, &rel); err != nil {
			continue
		}
		if keep(rel) {
			rels = append(rels, rel)
		}
	}
	return rels, nil
}
