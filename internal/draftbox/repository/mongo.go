// Package repository implements the draft-box source against MongoDB.
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	draftboxdomain "github.com/JWax21/cleanbox-cron/internal/draftbox/domain"
	"github.com/JWax21/cleanbox-cron/internal/period"
)

const (
	collectionDraftBoxes = "draftboxes"
	collectionCustomers  = "customers"
)

type Params struct {
	fx.In

	Log *zap.Logger
	DB  *mongo.Database
}

type MongoSource struct {
	log        *zap.Logger
	draftboxes *mongo.Collection
	customers  *mongo.Collection
}

func NewMongoSource(p Params) draftboxdomain.Source {
	return &MongoSource{
		log:        p.Log.Named("draftbox.mongo"),
		draftboxes: p.DB.Collection(collectionDraftBoxes),
		customers:  p.DB.Collection(collectionCustomers),
	}
}

func (s *MongoSource) DraftBoxesByPeriod(ctx context.Context, p period.Period) ([]draftboxdomain.DraftBox, error) {
	cur, err := s.draftboxes.Find(ctx, bson.M{"month": int(p)})
	if err != nil {
		return nil, fmt.Errorf("find draftboxes for period %s: %w", p, err)
	}

	var boxes []draftboxdomain.DraftBox
	if err := cur.All(ctx, &boxes); err != nil {
		return nil, fmt.Errorf("decode draftboxes for period %s: %w", p, err)
	}
	s.log.Debug("fetched draft boxes", zap.Stringer("period", p), zap.Int("count", len(boxes)))
	return boxes, nil
}

func (s *MongoSource) CustomersByID(ctx context.Context, ids []string) (map[string]draftboxdomain.Customer, error) {
	resolved := make(map[string]draftboxdomain.Customer, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}

	cur, err := s.customers.Find(ctx, bson.M{"customerID": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}

	var customers []draftboxdomain.Customer
	if err := cur.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}

	for _, customer := range customers {
		// First document wins on duplicate customerIDs.
		if _, ok := resolved[customer.CustomerID]; ok {
			s.log.Warn("duplicate customer document", zap.String("customer_id", customer.CustomerID))
			continue
		}
		resolved[customer.CustomerID] = customer
	}
	return resolved, nil
}
