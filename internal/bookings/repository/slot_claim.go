package repository

import (
	"context"
	"fmt"
	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SlotClaimCollectionName = "Slot_claims"

// SlotClaimRepository stores one document per claimed granule. The unique
// _id makes a second claim on the same granule fail.
type SlotClaimRepository interface {
	Claim(ctx context.Context, claims []*model.SlotClaim) error
	ReleaseByAppointment(ctx context.Context, appointmentID string) (int64, error)
}

type mongoSlotClaimRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewSlotClaimRepository(cfg *config.Config) SlotClaimRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotClaimRepository{
		cfg:        cfg,
		collection: db.Collection(SlotClaimCollectionName),
	}
}

// Claim inserts every claim or fails with ErrSlotTaken on the first granule
// already held. Call it inside a transaction so a partial insert is rolled
// back.
func (r *mongoSlotClaimRepository) Claim(ctx context.Context, claims []*model.SlotClaim) error {
	if len(claims) == 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(claims))
	for _, c := range claims {
		c.CreatedAt = now
		docs = append(docs, c)
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", bookingserrors.ErrSlotTaken, err)
		}
		return fmt.Errorf("failed to insert slot claims: %w", err)
	}
	return nil
}

func (r *mongoSlotClaimRepository) ReleaseByAppointment(ctx context.Context, appointmentID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"appointment_id": appointmentID})
	if err != nil {
		return 0, fmt.Errorf("failed to release slot claims of appointment [%s]: %w", appointmentID, err)
	}
	return result.DeletedCount, nil
}

// ClaimGranule is the width of one claim. Slot starts and durations are whole
// minutes, so minute keys never join two bookings that merely touch.
const ClaimGranule = time.Minute

// ClaimsFor covers [start, end) with minute-aligned claims, flooring start and
// ceiling end. Two bookings share a key exactly when they overlap.
func ClaimsFor(businessID, appointmentID string, start, end time.Time) []*model.SlotClaim {
	first := start.Truncate(ClaimGranule)
	claims := []*model.SlotClaim{}
	for g := first; g.Before(end); g = g.Add(ClaimGranule) {
		claims = append(claims, &model.SlotClaim{
			ID:            model.SlotClaimKey(businessID, g),
			BusinessID:    businessID,
			AppointmentID: appointmentID,
			GranuleStart:  g.UTC(),
		})
	}
	return claims
}
